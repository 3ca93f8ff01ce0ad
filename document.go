// Package scxml implements the core of a W3C SCXML 1.0 interpreter: the
// document model, the validator/optimizer, the condition oracle contract,
// and (in the interpreter subpackage) the microstep/macrostep engine.
package scxml

// Kind identifies the structural role of a State (SCXML 3.3-3.7).
type Kind string

const (
	KindAtomic  Kind = "atomic"
	KindCompound Kind = "compound"
	KindParallel Kind = "parallel"
	KindFinal    Kind = "final"
	// KindInitial marks the synthetic <initial> pseudo-state child of a
	// compound state. It is never itself entered (see enter() in the
	// interpreter package); only its transition's target is.
	KindInitial Kind = "initial-pseudo"
)

// State is one <state>/<parallel>/<final>/<initial> element of a document.
// Cross references (Parent, Initial, transition targets) are string ids,
// resolved through Document.StatesByID — logical references, not pointers,
// so a Document stays trivially shareable across StateCharts.
type State struct {
	ID    string
	Kind  Kind
	Order int // document-order index, assigned at parse time

	Parent string // empty for top-level states
	// Initial is the id of the direct child to enter first, taken from the
	// `initial` attribute. Empty if unset (the <initial> pseudo-child or
	// the first non-pseudo child is used instead; see §4.6).
	Initial string

	Children    []string // direct child state ids, in document order
	Transitions []*Transition

	OnEntry []Action
	OnExit  []Action
}

// Transition is a <transition> element (SCXML 3.13).
type Transition struct {
	Source string
	Order  int // document-order index, globally monotone across the document

	// Event is the raw `event` attribute, nil for eventless transitions.
	// Matching against a concrete event name follows §4.4.
	Event *string

	// Target is the `target` attribute's state id, nil for a targetless
	// (internal) transition (§4.9: no exit/entry occurs).
	Target *string

	// Cond is the raw `cond` attribute source text, compiled once by the
	// validator into CompiledCond.
	Cond       string
	CompiledCond CompiledCondition
}

// Data is a <data> element of a <datamodel> block (SCXML 5.3). The core
// does not evaluate Expr/Src — that is the host datamodel's job — but
// carries the declaration so a host can consume it, and so the validator
// can statically check a literal JSON Expr against Schema.
type Data struct {
	ID     string
	Expr   string
	Src    string
	Schema string // optional JSON Schema reference, e.g. "file://score.schema.json"
}

// Document is the raw, unvalidated parse result of the parser package.
type Document struct {
	Initial    string // optional; id of the document's initial top-level state
	TopLevel   []string // ids of top-level states, in document order
	States     map[string]*State
	DataModel  []Data

	// DuplicateIDs records every id the parser saw collide with a state
	// already registered in States, in document order of the colliding
	// (second-and-later) element. States is keyed by id, so a collision
	// silently overwrites the earlier element there; this side list is
	// what lets the validator's StateIDsCheck see and flag it (§4.2
	// check 2), since ranging over States itself can never reveal a
	// duplicate key.
	DuplicateIDs []string
}

// OptimizedDocument is produced by validator.Optimize once a Document
// passes all checks (§4.2). It adds the O(1) lookups and precomputed
// indices the interpreter relies on.
type OptimizedDocument struct {
	Initial   string
	TopLevel  []string
	StatesByID map[string]*State
	DataModel []Data

	// TransitionsBySource holds each state's own transitions in document
	// order; a separate copy from State.Transitions so the interpreter can
	// depend on it without caring how the raw tree was built.
	TransitionsBySource map[string][]*Transition
}

// FindState resolves an id, returning (nil, false) if unknown.
func (d *OptimizedDocument) FindState(id string) (*State, bool) {
	s, ok := d.StatesByID[id]
	return s, ok
}

// Ancestors walks parent ids from id up to (and including) the root,
// returning ids ordered from id itself to the outermost ancestor. Used by
// the interpreter's LCCA and active-with-ancestors computations (§4.5.1,
// §4.9). O(depth).
func (d *OptimizedDocument) Ancestors(id string) []string {
	var chain []string
	cur, ok := d.StatesByID[id]
	for ok {
		chain = append(chain, cur.ID)
		if cur.Parent == "" {
			break
		}
		cur, ok = d.StatesByID[cur.Parent]
	}
	return chain
}

// IsDescendant reports whether id is a proper descendant of ancestorID
// (walks parent ids; O(depth)).
func (d *OptimizedDocument) IsDescendant(id, ancestorID string) bool {
	cur, ok := d.StatesByID[id]
	for ok && cur.Parent != "" {
		if cur.Parent == ancestorID {
			return true
		}
		cur, ok = d.StatesByID[cur.Parent]
	}
	return false
}
