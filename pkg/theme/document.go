package theme

import "sync"

// Default presentation names.
const (
	DefaultAttribute = "theme"
	DefaultDarkClass = "theme-dark"
)

// Document receives the presentation side effects of a theme change: an
// attribute on the root element and a class on the body that is active only
// when dark.
type Document interface {
	SetAttribute(name, value string)
	ToggleClass(name string, on bool)
}

// NoopDocument discards presentation updates.
type NoopDocument struct{}

func (NoopDocument) SetAttribute(string, string) {}

func (NoopDocument) ToggleClass(string, bool) {}

// MemoryDocument records presentation updates.
type MemoryDocument struct {
	mu         sync.Mutex
	attributes map[string]string
	classes    map[string]bool
	writes     int
}

// NewMemoryDocument returns an empty MemoryDocument.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		attributes: map[string]string{},
		classes:    map[string]bool{},
	}
}

func (d *MemoryDocument) SetAttribute(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attributes == nil {
		d.attributes = map[string]string{}
	}
	d.attributes[name] = value
	d.writes++
}

func (d *MemoryDocument) ToggleClass(name string, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.classes == nil {
		d.classes = map[string]bool{}
	}
	if on {
		d.classes[name] = true
	} else {
		delete(d.classes, name)
	}
	d.writes++
}

// Attribute returns the recorded attribute value.
func (d *MemoryDocument) Attribute(name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, ok := d.attributes[name]
	return value, ok
}

// HasClass reports whether class is active.
func (d *MemoryDocument) HasClass(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classes[name]
}

// Writes counts SetAttribute and ToggleClass calls.
func (d *MemoryDocument) Writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}
