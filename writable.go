package store

import "sync"

// Readable is the read side of a store. Implementations live in this package
// only; graphNode ties every readable into the dependency graph.
type Readable[T any] interface {
	// Get returns the current value without blocking on subscribers.
	Get() T
	// Subscribe registers fn, invokes it once with the current value and
	// returns a function that removes the subscription.
	Subscribe(fn func(T)) (unsubscribe func())

	graphNode() *node
}

// Writable is a mutable observable value.
type Writable[T any] struct {
	cfg  storeConfig
	node *node
	subs subscriberList[T]

	mu        sync.Mutex
	value     T
	notifying bool
	pending   bool
}

// New creates a writable store seeded with initial.
func New[T any](initial T, opts ...Option) *Writable[T] {
	w := &Writable[T]{
		cfg:   applyOptions(opts),
		value: initial,
	}
	w.node = &node{notify: w.notify}
	return w
}

// Name returns the label configured through WithName.
func (w *Writable[T]) Name() string {
	return w.cfg.name
}

// Get returns the current value.
func (w *Writable[T]) Get() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Set replaces the value, settles dependents and notifies subscribers in
// subscription order before returning. Calls made while this store is already
// notifying are folded into one more pass carrying the latest value.
func (w *Writable[T]) Set(value T) {
	w.mu.Lock()
	if w.cfg.dedupe && sameValue(w.value, value) {
		w.mu.Unlock()
		return
	}
	w.value = value
	if w.notifying {
		w.pending = true
		w.mu.Unlock()
		return
	}
	w.notifying = true
	w.mu.Unlock()

	for {
		w.node.propagate()

		w.mu.Lock()
		if !w.pending {
			w.notifying = false
			w.mu.Unlock()
			return
		}
		w.pending = false
		w.mu.Unlock()
	}
}

// Update sets the value to fn applied to the current value.
func (w *Writable[T]) Update(fn func(T) T) {
	if fn == nil {
		return
	}
	w.Set(fn(w.Get()))
}

// Subscribe registers fn and replays the current value immediately.
func (w *Writable[T]) Subscribe(fn func(T)) func() {
	return w.subs.subscribe(fn, w.Get)
}

// Readonly returns a view of w without the mutators.
func (w *Writable[T]) Readonly() Readable[T] {
	return readonly[T]{source: w}
}

func (w *Writable[T]) notify() {
	w.subs.deliver(w.Get())
}

func (w *Writable[T]) graphNode() *node {
	if w == nil {
		return nil
	}
	return w.node
}

type readonly[T any] struct {
	source *Writable[T]
}

func (r readonly[T]) Get() T {
	return r.source.Get()
}

func (r readonly[T]) Subscribe(fn func(T)) func() {
	return r.source.Subscribe(fn)
}

func (r readonly[T]) graphNode() *node {
	return r.source.graphNode()
}
