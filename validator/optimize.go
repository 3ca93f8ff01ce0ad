package validator

import (
	"fmt"
	"sort"

	"github.com/fluxstate/scxml"
	"github.com/fluxstate/scxml/oracle"
)

// Optimize transforms a (structurally valid) raw Document into an
// OptimizedDocument: the id→state map already exists from parsing, so this
// mainly precomputes the transition-by-source index (document order
// preserved) and compiles every transition's `cond` once (spec.md §2, §4.2
// "Optimization produces..."). Parent ids and state kinds are already set
// by the parser; Optimize does not need to re-walk for them, but keeps the
// id map referenced directly so later lookups are O(1).
func Optimize(doc *scxml.Document, o scxml.ConditionOracle) (*scxml.OptimizedDocument, []Diagnostic) {
	if o == nil {
		o = oracle.DefaultOracle{}
	}

	var diags []Diagnostic
	bySource := make(map[string][]*scxml.Transition)

	// stable order: iterate states sorted by Order so transitions across
	// different sources still come out grouped predictably for tests/tools,
	// though the interpreter only relies on per-source and global Order.
	ids := make([]string, 0, len(doc.States))
	for id := range doc.States {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return doc.States[ids[i]].Order < doc.States[ids[j]].Order })

	for _, id := range ids {
		st := doc.States[id]
		for _, t := range st.Transitions {
			if t.Cond != "" {
				compiled, err := o.Compile(t.Cond)
				if err != nil {
					diags = append(diags, Diagnostic{
						Severity: SeverityError, Code: "E112",
						Message:   fmt.Sprintf("transition on %q has invalid condition %q: %v", st.ID, t.Cond, err),
						StateID:   st.ID,
						Attribute: "cond",
					})
					continue
				}
				t.CompiledCond = compiled
			}
			bySource[st.ID] = append(bySource[st.ID], t)
		}
		sort.Slice(bySource[st.ID], func(i, j int) bool {
			return bySource[st.ID][i].Order < bySource[st.ID][j].Order
		})
	}

	return &scxml.OptimizedDocument{
		Initial:             doc.Initial,
		TopLevel:            doc.TopLevel,
		StatesByID:          doc.States,
		DataModel:           doc.DataModel,
		TransitionsBySource: bySource,
	}, diags
}
