// Package preference models the platform color-scheme signal ("prefers dark")
// as an injected port so the theme state never probes its environment.
package preference

import (
	"slices"
	"strings"
	"sync"
)

// Signal reports the platform color-scheme preference and its changes.
type Signal interface {
	// PrefersDark returns the current preference. ok is false when the
	// platform exposes no preference.
	PrefersDark() (dark bool, ok bool)
	// Watch registers fn for preference changes and returns a stop function.
	Watch(fn func(dark bool)) (stop func())
}

// Absent is the Signal of hosts without a color-scheme preference.
type Absent struct{}

// PrefersDark implements Signal.
func (Absent) PrefersDark() (bool, bool) { return false, false }

// Watch implements Signal.
func (Absent) Watch(func(bool)) func() { return func() {} }

// Manual is a host-driven Signal. Hosts that receive preference events from
// their own platform bridge call Set; tests use it to script OS changes.
type Manual struct {
	mu       sync.Mutex
	dark     bool
	known    bool
	nextID   int
	watchers map[int]func(bool)
	order    []int
}

// NewManual returns a Manual signal reporting dark.
func NewManual(dark bool) *Manual {
	return &Manual{dark: dark, known: true, watchers: map[int]func(bool){}}
}

// PrefersDark implements Signal.
func (m *Manual) PrefersDark() (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dark, m.known
}

// Watch implements Signal.
func (m *Manual) Watch(fn func(bool)) func() {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	if m.watchers == nil {
		m.watchers = map[int]func(bool){}
	}
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	m.order = append(m.order, id)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.order = slices.DeleteFunc(m.order, func(candidate int) bool { return candidate == id })
			m.mu.Unlock()
		})
	}
}

// Set records the new preference and notifies watchers in registration order.
func (m *Manual) Set(dark bool) {
	m.mu.Lock()
	m.dark = dark
	m.known = true
	var fns []func(bool)
	for _, id := range m.order {
		if fn, ok := m.watchers[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(dark)
	}
}

// Watchers returns the number of active watchers.
func (m *Manual) Watchers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers)
}

// ParseScheme maps a textual color scheme ("dark", "light", "prefer-dark",
// "prefer-light") to a preference. ok is false for anything else.
func ParseScheme(raw string) (dark bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dark", "prefer-dark":
		return true, true
	case "light", "prefer-light":
		return false, true
	default:
		return false, false
	}
}
