package store

// Cloned returns a view of r that hands every reader its own copy of the
// value. Use it to expose values holding slices or maps without letting
// callers edit the store's state in place.
func Cloned[T any](r Readable[T], clone func(T) T) Readable[T] {
	if clone == nil {
		return r
	}
	return cloned[T]{source: r, clone: clone}
}

type cloned[T any] struct {
	source Readable[T]
	clone  func(T) T
}

func (c cloned[T]) Get() T {
	return c.clone(c.source.Get())
}

func (c cloned[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return c.source.Subscribe(nil)
	}
	return c.source.Subscribe(func(value T) {
		fn(c.clone(value))
	})
}

func (c cloned[T]) graphNode() *node {
	return c.source.graphNode()
}
