package store

import "reflect"

// Option configures a store at construction time.
type Option func(*storeConfig)

type storeConfig struct {
	name   string
	dedupe bool
}

// WithName labels the store. The name is surfaced through Name and is useful
// when logging from subscribers.
func WithName(name string) Option {
	return func(cfg *storeConfig) {
		cfg.name = name
	}
}

// WithDedupe skips Set calls whose value equals the current one. Only scalar
// values (numbers, strings, bools, pointers) are compared; composite values
// always notify.
func WithDedupe() Option {
	return func(cfg *storeConfig) {
		cfg.dedupe = true
	}
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func sameValue[T any](a, b T) bool {
	left, right := any(a), any(b)
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	lt, rt := reflect.TypeOf(left), reflect.TypeOf(right)
	if lt != rt {
		return false
	}
	switch lt.Kind() {
	case reflect.Struct, reflect.Array, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return false
	}
	return left == right
}
