package validator

import (
	"context"
	"fmt"

	"github.com/agentflare-ai/go-pipeline"

	"github.com/fluxstate/scxml"
)

// Check is one of the six structural checks of spec.md §4.2. One type per
// check (a check may emit several diagnostic codes), following the
// teacher's semantic_rules.go convention of a dedicated SemanticRule
// implementation per check.
type Check interface {
	Name() string
	Validate(doc *scxml.Document) []Diagnostic
}

// DefaultChecks returns the six checks of spec.md §4.2, run in the order
// the spec lists them.
func DefaultChecks() []Check {
	return []Check{
		&InitialTargetExistsCheck{},
		&StateIDsCheck{},
		&TransitionTargetsCheck{},
		&ReachabilityCheck{},
		&CompoundInitialConsistencyCheck{},
		&InitialPseudoShapeCheck{},
	}
}

// runChecks composes checks into a github.com/agentflare-ai/go-pipeline
// chain — the same fixed-stages-over-a-shared-accumulator shape the
// teacher uses for its own multi-stage processing (openai/streaming.go's
// jsonDecoderStage/createParallelValidatorStage/createToolExecutionStage
// pipeline). The accumulator (W) is *Result; the payload (I) is the raw
// Document, unchanged stage to stage since every check inspects the same
// tree.
func runChecks(ctx context.Context, doc *scxml.Document, checks []Check) Result {
	res := &Result{}
	stages := make([]pipeline.Pipe[context.Context, *Result, *scxml.Document], 0, len(checks))
	for _, c := range checks {
		c := c
		stages = append(stages, func(ctx context.Context, w *Result, input *scxml.Document, next pipeline.Next[context.Context, *Result, *scxml.Document]) error {
			w.Add(c.Validate(input)...)
			return next(ctx, w, input)
		})
	}
	p := pipeline.New(ctx, stages...)
	_ = p.Process(ctx, res, doc)
	return *res
}

// --- 1. Initial target exists --------------------------------------------

type InitialTargetExistsCheck struct{}

func (c *InitialTargetExistsCheck) Name() string { return "initial-target-exists" }

func (c *InitialTargetExistsCheck) Validate(doc *scxml.Document) []Diagnostic {
	if doc.Initial == "" {
		return nil
	}
	st, ok := doc.States[doc.Initial]
	if !ok {
		return []Diagnostic{{
			Severity: SeverityError, Code: "E101",
			Message: fmt.Sprintf("document initial %q does not resolve to any state", doc.Initial),
			StateID: doc.Initial,
		}}
	}
	if st.Parent != "" {
		return []Diagnostic{{
			Severity: SeverityWarning, Code: "W101",
			Message: fmt.Sprintf("document initial %q is not a top-level state", doc.Initial),
			StateID: doc.Initial,
		}}
	}
	return nil
}

// --- 2. State ids unique and non-empty ------------------------------------

type StateIDsCheck struct{}

func (c *StateIDsCheck) Name() string { return "state-ids" }

func (c *StateIDsCheck) Validate(doc *scxml.Document) []Diagnostic {
	var diags []Diagnostic

	// doc.States is keyed by id, so a collision there already collapsed to
	// one entry; doc.DuplicateIDs is the parser's side record of every
	// element that lost that collision, which is what makes a real
	// duplicate (or a second empty id) visible here at all.
	emptyCount := 0
	if _, ok := doc.States[""]; ok {
		emptyCount++
	}
	dupCount := make(map[string]int)
	for _, id := range doc.DuplicateIDs {
		if id == "" {
			emptyCount++
			continue
		}
		dupCount[id]++
	}

	if emptyCount > 0 {
		diags = append(diags, Diagnostic{
			Severity: SeverityError, Code: "E102",
			Message: fmt.Sprintf("%d state(s) have an empty id", emptyCount),
		})
	}
	for id, n := range dupCount {
		diags = append(diags, Diagnostic{
			Severity: SeverityError, Code: "E103",
			Message: fmt.Sprintf("duplicate state id %q (%d extra occurrence(s))", id, n), StateID: id,
		})
	}
	return diags
}

// --- 3. Transition targets resolve ----------------------------------------

type TransitionTargetsCheck struct{}

func (c *TransitionTargetsCheck) Name() string { return "transition-targets" }

func (c *TransitionTargetsCheck) Validate(doc *scxml.Document) []Diagnostic {
	var diags []Diagnostic
	for _, st := range doc.States {
		for _, t := range st.Transitions {
			if t.Target == nil {
				continue
			}
			if _, ok := doc.States[*t.Target]; !ok {
				diags = append(diags, Diagnostic{
					Severity: SeverityError, Code: "E104",
					Message:   fmt.Sprintf("transition on %q targets unknown state %q", st.ID, *t.Target),
					StateID:   st.ID,
					Attribute: "target",
				})
			}
		}
	}
	return diags
}

// --- 4. Reachability -------------------------------------------------------

type ReachabilityCheck struct{}

func (c *ReachabilityCheck) Name() string { return "reachability" }

func (c *ReachabilityCheck) Validate(doc *scxml.Document) []Diagnostic {
	start := doc.Initial
	if start == "" && len(doc.TopLevel) > 0 {
		start = doc.TopLevel[0]
	}
	if start == "" {
		return nil
	}

	reachable := make(map[string]bool)
	var mark func(id string)
	mark = func(id string) {
		if id == "" || reachable[id] {
			return
		}
		st, ok := doc.States[id]
		if !ok {
			return
		}
		reachable[id] = true
		for _, child := range st.Children {
			mark(child)
		}
		for _, t := range st.Transitions {
			if t.Target != nil {
				mark(*t.Target)
			}
		}
	}
	mark(start)

	var diags []Diagnostic
	for id, st := range doc.States {
		if st.Kind == scxml.KindInitial {
			continue
		}
		if !reachable[id] {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning, Code: "W102",
				Message: fmt.Sprintf("state %q is unreachable", id), StateID: id,
			})
		}
	}
	return diags
}

// --- 5. Compound initial consistency ---------------------------------------

type CompoundInitialConsistencyCheck struct{}

func (c *CompoundInitialConsistencyCheck) Name() string { return "compound-initial-consistency" }

func (c *CompoundInitialConsistencyCheck) Validate(doc *scxml.Document) []Diagnostic {
	var diags []Diagnostic
	for _, st := range doc.States {
		hasInitialAttr := st.Initial != ""
		var initialPseudoChild string
		for _, childID := range st.Children {
			if child, ok := doc.States[childID]; ok && child.Kind == scxml.KindInitial {
				initialPseudoChild = childID
			}
		}
		if hasInitialAttr && initialPseudoChild != "" {
			diags = append(diags, Diagnostic{
				Severity: SeverityError, Code: "E105",
				Message:   fmt.Sprintf("state %q declares both an initial attribute and an <initial> pseudo-child", st.ID),
				StateID:   st.ID,
				Attribute: "initial",
			})
			continue
		}
		if hasInitialAttr {
			found := false
			for _, childID := range st.Children {
				if childID == st.Initial {
					found = true
					break
				}
			}
			if !found {
				diags = append(diags, Diagnostic{
					Severity: SeverityError, Code: "E106",
					Message:   fmt.Sprintf("state %q's initial attribute %q is not a direct child", st.ID, st.Initial),
					StateID:   st.ID,
					Attribute: "initial",
				})
			}
		}
	}
	return diags
}

// --- 6. Initial pseudo-state shape -----------------------------------------

type InitialPseudoShapeCheck struct{}

func (c *InitialPseudoShapeCheck) Name() string { return "initial-pseudo-shape" }

func (c *InitialPseudoShapeCheck) Validate(doc *scxml.Document) []Diagnostic {
	var diags []Diagnostic
	byParent := make(map[string][]string)
	for id, st := range doc.States {
		if st.Kind == scxml.KindInitial {
			byParent[st.Parent] = append(byParent[st.Parent], id)
		}
	}
	for parent, pseudos := range byParent {
		if len(pseudos) > 1 {
			diags = append(diags, Diagnostic{
				Severity: SeverityError, Code: "E107",
				Message: fmt.Sprintf("state %q has more than one <initial> child", parent), StateID: parent,
			})
		}
		for _, id := range pseudos {
			st := doc.States[id]
			if len(st.Transitions) != 1 {
				diags = append(diags, Diagnostic{
					Severity: SeverityError, Code: "E108",
					Message: fmt.Sprintf("<initial> pseudo-state of %q must have exactly one transition", parent), StateID: id,
				})
				continue
			}
			t := st.Transitions[0]
			if t.Target == nil {
				diags = append(diags, Diagnostic{
					Severity: SeverityError, Code: "E109",
					Message: fmt.Sprintf("<initial> pseudo-state of %q must have a target", parent), StateID: id,
				})
				continue
			}
			target, ok := doc.States[*t.Target]
			if !ok {
				continue // caught by TransitionTargetsCheck
			}
			if target.Parent != parent {
				diags = append(diags, Diagnostic{
					Severity: SeverityError, Code: "E110",
					Message: fmt.Sprintf("<initial> pseudo-state of %q must target a direct sibling, got %q", parent, target.ID), StateID: id,
				})
			}
			if target.Kind == scxml.KindInitial {
				diags = append(diags, Diagnostic{
					Severity: SeverityError, Code: "E111",
					Message: fmt.Sprintf("<initial> pseudo-state of %q cannot target another initial pseudo-state", parent), StateID: id,
				})
			}
		}
	}
	return diags
}
