package store

import "errors"

var (
	// ErrNoSources indicates a derived store was requested without sources.
	ErrNoSources = errors.New("store: derived store requires at least one source")
	// ErrNilSource indicates one of the supplied sources is nil.
	ErrNilSource = errors.New("store: derived store source must not be nil")
	// ErrNilCombine indicates the combine function is missing.
	ErrNilCombine = errors.New("store: derived store requires a combine function")
)
