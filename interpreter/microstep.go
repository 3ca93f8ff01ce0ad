package interpreter

import (
	"context"
	"log/slog"

	"github.com/fluxstate/scxml"
)

// candidate pairs an enabled transition with its source's full ancestor
// chain (self included, outermost last), computed once per selection
// round for conflict resolution.
type candidate struct {
	transition *scxml.Transition
	ancestors  []string
}

// selectTransitions implements spec.md §4.5: compute active-with-ancestors,
// look up each one's transitions, filter by event match (§4.4) and
// condition (oracle, nil ⇒ true, error ⇒ false per §4.12), then sort by
// global document order.
func selectTransitions(ctx context.Context, doc *scxml.OptimizedDocument, config scxml.Configuration, eventName string, eventData map[string]any) []candidate {
	active := activeWithAncestors(doc, config)

	var cands []candidate
	for id := range active {
		for _, t := range doc.TransitionsBySource[id] {
			if !t.MatchesEvent(eventName) {
				continue
			}
			if !evalCond(ctx, t, config, eventName, eventData) {
				continue
			}
			cands = append(cands, candidate{transition: t, ancestors: doc.Ancestors(id)})
		}
	}

	insertionSortCandidates(cands)
	return cands
}

func evalCond(ctx context.Context, t *scxml.Transition, config scxml.Configuration, eventName string, eventData map[string]any) bool {
	if t.CompiledCond == nil {
		return true
	}
	ec := scxml.EvalContext{
		In:        func(id string) bool { return config.Has(id) },
		EventName: eventName,
		EventData: eventData,
	}
	ok, err := t.CompiledCond.Eval(ctx, ec)
	if err != nil {
		// ConditionError: absorbed as false, never propagated (§4.12, §7).
		slog.DebugContext(ctx, "condition evaluation failed, treating as false", "source", t.Source, "cond", t.Cond, "error", err)
		return false
	}
	return ok
}

func insertionSortCandidates(cands []candidate) {
	less := func(i, j int) bool { return cands[i].transition.Order < cands[j].transition.Order }
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
}

// resolveConflicts implements spec.md §4.8 in the order it lists:
//  1. descendant priority — if source A is a proper descendant of source
//     B (both candidates), B's transition is dropped;
//  2. per-source document order — keep only the earliest survivor per
//     source;
//  3. cross-region independence falls out for free: nothing here compares
//     candidates whose sources sit in disjoint parallel regions, so both
//     survive and both fire in the same microstep.
//
// cands must already be sorted by document order.
func resolveConflicts(cands []candidate) []*scxml.Transition {
	dropped := make(map[int]bool, len(cands))
	for i, a := range cands {
		for j, b := range cands {
			if i == j || dropped[i] {
				continue
			}
			// a is dropped if its source is a proper ancestor of b's source.
			if isProperAncestor(a.transition.Source, b.ancestors) {
				dropped[i] = true
			}
		}
	}

	// cands is already sorted by document order, so the first
	// non-dropped candidate seen per source is its earliest.
	seenSource := make(map[string]bool)
	out := make([]*scxml.Transition, 0, len(cands))
	for i, c := range cands {
		if dropped[i] {
			continue
		}
		if seenSource[c.transition.Source] {
			continue
		}
		seenSource[c.transition.Source] = true
		out = append(out, c.transition)
	}
	return out
}

// isProperAncestor reports whether candidateSource is a proper ancestor of
// otherAncestors' own source (otherAncestors[0]), i.e. whether
// candidateSource appears anywhere in otherAncestors beyond index 0.
func isProperAncestor(candidateSource string, otherAncestors []string) bool {
	if len(otherAncestors) == 0 || otherAncestors[0] == candidateSource {
		return false
	}
	for _, id := range otherAncestors[1:] {
		if id == candidateSource {
			return true
		}
	}
	return false
}

// exitSet implements spec.md §4.9. The exit domain is LCCA(source,
// target): every currently active leaf that is a descendant of the domain
// is exited. When the domain is an ordinary compound ancestor this is
// exactly source's single active path (compound states have one active
// child at a time); when the domain is a parallel ancestor, every region
// under it that has active descendants is exited together, matching "all
// parallel siblings under the LCCA must be exited together". Ordered by
// reverse document order for teardown (deepest/most-recent first).
func exitSet(doc *scxml.OptimizedDocument, config scxml.Configuration, source, target string) (lccaID string, exits []string) {
	if target == "" {
		return "", nil
	}
	lccaID = lcca(doc, source, target)

	var leaves []string
	for leaf := range config {
		if lccaID == "" || doc.IsDescendant(leaf, lccaID) {
			leaves = append(leaves, leaf)
		}
	}
	sortByOrderDesc(doc, leaves)
	return lccaID, leaves
}

func sortByOrderDesc(doc *scxml.OptimizedDocument, ids []string) {
	less := func(i, j int) bool {
		si, _ := doc.FindState(ids[i])
		sj, _ := doc.FindState(ids[j])
		oi, oj := -1, -1
		if si != nil {
			oi = si.Order
		}
		if sj != nil {
			oj = sj.Order
		}
		return oi > oj
	}
	insertionSort(ids, less)
}
