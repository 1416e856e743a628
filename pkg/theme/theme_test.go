package theme

import "testing"

func TestParseAcceptsOnlyLiteralThemes(t *testing.T) {
	cases := map[string]bool{
		"light": true,
		"dark":  true,
		"Dark":  false,
		" dark": false,
		"":      false,
		"auto":  false,
	}
	for raw, want := range cases {
		_, ok := Parse(raw)
		if ok != want {
			t.Fatalf("Parse(%q) ok = %v, want %v", raw, ok, want)
		}
	}
}

func TestThemeHelpers(t *testing.T) {
	if Light.Flip() != Dark || Dark.Flip() != Light {
		t.Fatalf("Flip should alternate")
	}
	if FromDark(true) != Dark || FromDark(false) != Light {
		t.Fatalf("FromDark mismatch")
	}
	if !Dark.IsDark() || Light.IsDark() {
		t.Fatalf("IsDark mismatch")
	}
}
