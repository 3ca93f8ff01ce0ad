// Package parser builds a raw scxml.Document from an SCXML byte stream.
// The tokenizer itself is external (spec.md §1 treats the raw XML
// tokenizer as an out-of-scope collaborator); this package walks the tree
// produced by github.com/agentflare-ai/go-xmldom, which plays that role
// the way the teacher's validator package already does when it calls
// xmldom.NewDecoderFromBytes(...).Decode().
package parser

import (
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/fluxstate/scxml"
)

// orderCounter assigns the monotonically increasing document-order index
// spec.md §4.1 requires, at "start-tag" time — here, at first visit of an
// element during the depth-first walk.
type orderCounter struct{ next int }

func (c *orderCounter) take() int {
	n := c.next
	c.next++
	return n
}

// Parse decodes xml and returns the raw Document. Unknown elements are
// tolerated and ignored (their children are not walked for state/transition
// purposes), matching spec.md §4.1. No semantic validation happens here —
// that is validator.Validate's job.
func Parse(xml []byte) (*scxml.Document, error) {
	decoder := xmldom.NewDecoderFromBytes(xml)
	dom, err := decoder.Decode()
	if err != nil {
		return nil, &scxml.ParseError{Message: "failed to parse XML", Cause: err}
	}

	root := dom.DocumentElement()
	if root == nil {
		return nil, &scxml.ParseError{Message: "document has no root element"}
	}
	if !strings.EqualFold(string(root.LocalName()), "scxml") {
		return nil, &scxml.ParseError{Message: "root element is not <scxml>"}
	}

	doc := &scxml.Document{
		States: make(map[string]*scxml.State),
	}
	doc.Initial = attr(root, "initial")

	oc := &orderCounter{}
	for _, child := range childElements(root) {
		switch strings.ToLower(string(child.LocalName())) {
		case "state", "parallel", "final":
			id := parseState(doc, child, "", oc)
			doc.TopLevel = append(doc.TopLevel, id)
		case "datamodel":
			doc.DataModel = append(doc.DataModel, parseDataModel(child)...)
		default:
			// tolerated and ignored, per §4.1
		}
	}

	return doc, nil
}

func parseDataModel(el xmldom.Element) []scxml.Data {
	var out []scxml.Data
	for _, d := range childElements(el) {
		if strings.ToLower(string(d.LocalName())) != "data" {
			continue
		}
		out = append(out, scxml.Data{
			ID:     attr(d, "id"),
			Expr:   attr(d, "expr"),
			Src:    attr(d, "src"),
			Schema: attr(d, "schema"),
		})
	}
	return out
}

// parseState recursively builds a State (and its descendants) rooted at
// el, registers it (and them) in doc.States, and returns its id.
func parseState(doc *scxml.Document, el xmldom.Element, parent string, oc *orderCounter) string {
	id := attr(el, "id")
	order := oc.take()

	kind := scxml.KindAtomic
	switch strings.ToLower(string(el.LocalName())) {
	case "parallel":
		kind = scxml.KindParallel
	case "final":
		kind = scxml.KindFinal
	}

	st := &scxml.State{
		ID:      id,
		Kind:    kind,
		Order:   order,
		Parent:  parent,
		Initial: attr(el, "initial"),
	}
	registerState(doc, id, st)

	for _, child := range childElements(el) {
		local := strings.ToLower(string(child.LocalName()))
		switch local {
		case "state", "parallel", "final":
			childID := parseState(doc, child, id, oc)
			st.Children = append(st.Children, childID)
			if kind == scxml.KindAtomic || kind == scxml.KindFinal {
				kind = scxml.KindCompound
				st.Kind = kind
			}
		case "initial":
			childID := parseInitialPseudo(doc, child, id, oc)
			st.Children = append(st.Children, childID)
		case "transition":
			st.Transitions = append(st.Transitions, parseTransition(child, id, oc))
		case "onentry":
			st.OnEntry = append(st.OnEntry, parseActions(child)...)
		case "onexit":
			st.OnExit = append(st.OnExit, parseActions(child)...)
		}
	}

	return id
}

// parseInitialPseudo builds the synthetic <initial> pseudo-state child
// (spec.md §3 — kind initial-pseudo, exactly one transition expected; the
// validator enforces cardinality, the parser just records what's there).
func parseInitialPseudo(doc *scxml.Document, el xmldom.Element, parent string, oc *orderCounter) string {
	order := oc.take()
	id := parent + ".initial"
	st := &scxml.State{
		ID:     id,
		Kind:   scxml.KindInitial,
		Order:  order,
		Parent: parent,
	}
	for _, child := range childElements(el) {
		if strings.ToLower(string(child.LocalName())) == "transition" {
			st.Transitions = append(st.Transitions, parseTransition(child, id, oc))
		}
	}
	registerState(doc, id, st)
	return id
}

// registerState records st under id, noting a collision in
// doc.DuplicateIDs (§4.2 check 2) when an element with that id — including
// the empty id — was already seen. The later element still wins in
// doc.States, same as a plain map write would do, since picking a winner
// is the validator's call to make (it fails the document outright on any
// duplicate or empty id), not the parser's.
func registerState(doc *scxml.Document, id string, st *scxml.State) {
	if _, exists := doc.States[id]; exists {
		doc.DuplicateIDs = append(doc.DuplicateIDs, id)
	}
	doc.States[id] = st
}

func parseTransition(el xmldom.Element, source string, oc *orderCounter) *scxml.Transition {
	t := &scxml.Transition{
		Source: source,
		Order:  oc.take(),
		Cond:   attr(el, "cond"),
	}
	if ev := attr(el, "event"); ev != "" {
		t.Event = &ev
	}
	if tgt := attr(el, "target"); tgt != "" {
		t.Target = &tgt
	}
	return t
}

func parseActions(el xmldom.Element) []scxml.Action {
	var out []scxml.Action
	for _, child := range childElements(el) {
		switch strings.ToLower(string(child.LocalName())) {
		case "raise":
			out = append(out, scxml.RaiseAction{Event: attr(child, "event")})
		case "log":
			out = append(out, scxml.LogAction{Label: attr(child, "label"), Expr: attr(child, "expr")})
		}
	}
	return out
}

// attr returns the named attribute, collapsing the empty string to "" (the
// already-nil-like zero value), per §4.1's "empty-string attributes
// collapse to nil" rule.
func attr(el xmldom.Element, name string) string {
	return strings.TrimSpace(string(el.GetAttribute(xmldom.DOMString(name))))
}

func childElements(el xmldom.Element) []xmldom.Element {
	children := el.Children()
	out := make([]xmldom.Element, 0, children.Length())
	for i := uint(0); i < children.Length(); i++ {
		if c := children.Item(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
