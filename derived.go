package store

import "sync"

// Derived is a read-only store recomputed from its sources.
type Derived[T any] struct {
	cfg     storeConfig
	node    *node
	sources []*node
	compute func() T
	subs    subscriberList[T]

	mu     sync.Mutex
	value  T
	closed bool
}

// Derive builds a store whose value is combine applied to the current values
// of sources. The value is computed immediately and again every time any
// source changes. combine must be cheap and free of side effects: it may run
// more often than strictly necessary.
func Derive[S, T any](sources []Readable[S], combine func([]S) T, opts ...Option) (*Derived[T], error) {
	if combine == nil {
		return nil, ErrNilCombine
	}
	nodes, err := sourceNodes(sources)
	if err != nil {
		return nil, err
	}
	inputs := append([]Readable[S](nil), sources...)
	return newDerived(nodes, func() T {
		values := make([]S, len(inputs))
		for i, source := range inputs {
			values[i] = source.Get()
		}
		return combine(values)
	}, opts), nil
}

// Derive1 derives from a single source.
func Derive1[A, T any](a Readable[A], fn func(A) T, opts ...Option) (*Derived[T], error) {
	if fn == nil {
		return nil, ErrNilCombine
	}
	nodes, err := sourceNodes([]Readable[A]{a})
	if err != nil {
		return nil, err
	}
	return newDerived(nodes, func() T {
		return fn(a.Get())
	}, opts), nil
}

// Derive2 derives from two sources of different types.
func Derive2[A, B, T any](a Readable[A], b Readable[B], fn func(A, B) T, opts ...Option) (*Derived[T], error) {
	if fn == nil {
		return nil, ErrNilCombine
	}
	first, err := sourceNodes([]Readable[A]{a})
	if err != nil {
		return nil, err
	}
	second, err := sourceNodes([]Readable[B]{b})
	if err != nil {
		return nil, err
	}
	return newDerived(append(first, second...), func() T {
		return fn(a.Get(), b.Get())
	}, opts), nil
}

func sourceNodes[S any](sources []Readable[S]) ([]*node, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	nodes := make([]*node, 0, len(sources))
	for _, source := range sources {
		if source == nil {
			return nil, ErrNilSource
		}
		n := source.graphNode()
		if n == nil {
			return nil, ErrNilSource
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func newDerived[T any](sources []*node, compute func() T, opts []Option) *Derived[T] {
	d := &Derived[T]{
		cfg:     applyOptions(opts),
		sources: sources,
		compute: compute,
	}
	d.node = &node{
		rank:      rankAbove(sources),
		recompute: d.recompute,
		notify:    d.notify,
	}
	d.value = compute()
	for _, source := range sources {
		source.addDependent(d.node)
	}
	return d
}

// Name returns the label configured through WithName.
func (d *Derived[T]) Name() string {
	return d.cfg.name
}

// Get returns the most recently computed value.
func (d *Derived[T]) Get() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Subscribe registers fn and replays the current value immediately.
func (d *Derived[T]) Subscribe(fn func(T)) func() {
	return d.subs.subscribe(fn, d.Get)
}

// Close detaches d from its sources. The last computed value stays readable.
func (d *Derived[T]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	for _, source := range d.sources {
		source.removeDependent(d.node)
	}
}

func (d *Derived[T]) recompute() {
	value := d.compute()
	d.mu.Lock()
	d.value = value
	d.mu.Unlock()
}

func (d *Derived[T]) notify() {
	d.subs.deliver(d.Get())
}

func (d *Derived[T]) graphNode() *node {
	if d == nil {
		return nil
	}
	return d.node
}
