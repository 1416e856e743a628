package store

import (
	"cmp"
	"slices"
	"sync"
)

// node is the untyped vertex shared by writable and derived stores.
type node struct {
	rank int

	mu         sync.Mutex
	dependents []*node

	// recompute refreshes a derived value from its sources; nil for writables.
	recompute func()
	notify    func()
}

func (n *node) addDependent(d *node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if slices.Contains(n.dependents, d) {
		return
	}
	n.dependents = append(n.dependents, d)
}

func (n *node) removeDependent(d *node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dependents = slices.DeleteFunc(n.dependents, func(candidate *node) bool {
		return candidate == d
	})
}

func (n *node) snapshotDependents() []*node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.dependents)
}

// downstream collects every transitive dependent of n, ordered by rank. Ties
// keep discovery order so siblings settle in the order they were attached.
func (n *node) downstream() []*node {
	seen := map[*node]struct{}{}
	var out []*node
	queue := n.snapshotDependents()
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := seen[next]; ok {
			continue
		}
		seen[next] = struct{}{}
		out = append(out, next)
		queue = append(queue, next.snapshotDependents()...)
	}
	slices.SortStableFunc(out, func(a, b *node) int {
		return cmp.Compare(a.rank, b.rank)
	})
	return out
}

// propagate settles every dependent before any subscriber runs, then notifies
// n followed by its dependents in rank order.
func (n *node) propagate() {
	order := n.downstream()
	for _, dependent := range order {
		if dependent.recompute != nil {
			dependent.recompute()
		}
	}
	n.notify()
	for _, dependent := range order {
		dependent.notify()
	}
}

func rankAbove(sources []*node) int {
	rank := 0
	for _, source := range sources {
		rank = max(rank, source.rank)
	}
	return rank + 1
}
