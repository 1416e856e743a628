// Package theme holds the light/dark preference and reconciles it with an
// explicit stored pin and the platform color-scheme signal.
//
// Resolution order is explicit pin, then platform preference, then light.
// Only Toggle and Set pin. Platform changes are adopted while unpinned and
// are never persisted, so an unpinned theme keeps following the platform
// across restarts.
package theme

// Theme is a color scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is used when neither a pin nor a platform preference exists.
const Default = Light

// Parse accepts the literal strings "light" and "dark".
func Parse(raw string) (Theme, bool) {
	switch Theme(raw) {
	case Light, Dark:
		return Theme(raw), true
	default:
		return "", false
	}
}

// FromDark maps a "prefers dark" flag to a Theme.
func FromDark(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}

// IsDark reports whether t is Dark.
func (t Theme) IsDark() bool {
	return t == Dark
}

// Flip returns the opposite theme.
func (t Theme) Flip() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string {
	return string(t)
}
