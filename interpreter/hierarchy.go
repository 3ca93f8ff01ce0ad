package interpreter

import "github.com/fluxstate/scxml"

// activeWithAncestors computes spec.md §4.5.1: the configuration ∪ every
// ancestor reachable by walking parent ids from each leaf. Property 4 of
// spec.md §8 ("active_with_ancestors = ⋃ᵢ parent_chain(leafᵢ)") is this
// function by definition.
func activeWithAncestors(doc *scxml.OptimizedDocument, config scxml.Configuration) map[string]struct{} {
	out := make(map[string]struct{})
	for leaf := range config {
		for _, id := range doc.Ancestors(leaf) {
			out[id] = struct{}{}
		}
	}
	return out
}

// lcca computes the Least Common Compound Ancestor of source and target
// (spec.md §4.9 step 1 / DESIGN NOTES): mark source's ancestors, then walk
// target's ancestors until a marked state is hit. O(depth).
func lcca(doc *scxml.OptimizedDocument, source, target string) string {
	marked := make(map[string]struct{})
	for _, id := range doc.Ancestors(source) {
		marked[id] = struct{}{}
	}
	for _, id := range doc.Ancestors(target) {
		if _, ok := marked[id]; ok {
			return id
		}
	}
	return ""
}

// enter implements spec.md §4.6: it returns the ordered leaf ids to add to
// the configuration when stateID is entered.
func enter(doc *scxml.OptimizedDocument, stateID string) []string {
	st, ok := doc.FindState(stateID)
	if !ok {
		return nil
	}
	switch st.Kind {
	case scxml.KindAtomic, scxml.KindFinal:
		return []string{st.ID}
	case scxml.KindInitial:
		// Not itself entered; its transition target is entered instead
		// during the parent's compound descent (see initialChild below).
		return nil
	case scxml.KindParallel:
		var out []string
		for _, childID := range st.Children {
			if child, ok := doc.FindState(childID); ok && child.Kind == scxml.KindInitial {
				continue
			}
			out = append(out, enter(doc, childID)...)
		}
		return out
	case scxml.KindCompound:
		childID := initialChild(doc, st)
		if childID == "" {
			return nil
		}
		return enter(doc, childID)
	}
	return nil
}

// initialChild resolves which child a compound state descends into first:
// the `initial` attribute if present, else the <initial> pseudo-child's
// transition target if present, else the first non-initial-pseudo child.
func initialChild(doc *scxml.OptimizedDocument, st *scxml.State) string {
	if st.Initial != "" {
		return st.Initial
	}
	for _, childID := range st.Children {
		child, ok := doc.FindState(childID)
		if !ok || child.Kind != scxml.KindInitial {
			continue
		}
		if len(child.Transitions) == 1 && child.Transitions[0].Target != nil {
			return *child.Transitions[0].Target
		}
		return ""
	}
	for _, childID := range st.Children {
		if child, ok := doc.FindState(childID); ok && child.Kind != scxml.KindInitial {
			return childID
		}
	}
	return ""
}

// entryStates implements spec.md §4.10: starting from lccaID, descend
// toward targetID, entering every intermediate compound ancestor not
// already active, entering every child subtree of any newly-entered
// parallel ancestor, then enter(target). Ordered by document order.
func entryStates(doc *scxml.OptimizedDocument, config scxml.Configuration, lccaID, targetID string) []string {
	path := pathFromLCCA(doc, lccaID, targetID)

	active := activeWithAncestors(doc, config)

	var leaves []string
	seen := make(map[string]struct{})
	add := func(ids []string) {
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				leaves = append(leaves, id)
			}
		}
	}

	for i, id := range path {
		st, ok := doc.FindState(id)
		if !ok {
			continue
		}
		isLast := i == len(path)-1
		if !isLast {
			// intermediate compound/parallel ancestor: nothing to add
			// itself (ancestors aren't leaves), but a parallel ancestor
			// newly entered must have every region entered, not just the
			// one on path toward target.
			if st.Kind == scxml.KindParallel {
				if _, alreadyActive := active[id]; !alreadyActive {
					add(enter(doc, id))
				}
			}
			continue
		}
		add(enter(doc, id))
	}

	return sortByOrder(doc, leaves)
}

// pathFromLCCA returns the chain of state ids from (but not including)
// lccaID down to targetID, inclusive of targetID. If lccaID is "", the
// whole ancestor chain of targetID is returned (no common ancestor case).
func pathFromLCCA(doc *scxml.OptimizedDocument, lccaID, targetID string) []string {
	chain := doc.Ancestors(targetID) // targetID ... outermost
	// reverse to outermost ... targetID
	rev := make([]string, len(chain))
	for i, id := range chain {
		rev[len(chain)-1-i] = id
	}
	if lccaID == "" {
		return rev
	}
	for i, id := range rev {
		if id == lccaID {
			return rev[i+1:]
		}
	}
	return rev
}

func sortByOrder(doc *scxml.OptimizedDocument, ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sortStates(doc, out)
	return out
}

func sortStates(doc *scxml.OptimizedDocument, ids []string) {
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
		return oi < oj
	}
	insertionSort(ids, less)
}

// insertionSort is used instead of sort.Slice for these small (typically
// single-digit) id lists; it keeps entry/exit ordering deterministic
// without pulling sort.Slice's reflection-based comparator into a hot
// path that runs once per microstep.
func insertionSort(ids []string, less func(i, j int) bool) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
