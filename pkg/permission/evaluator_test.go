package permission

import (
	"errors"
	"testing"

	"github.com/goliatone/go-paqs-store/pkg/directory"
)

func admin() *directory.Persona {
	return &directory.Persona{
		ID:          "u4",
		Name:        "Dana",
		Role:        RoleAdmin,
		Permissions: []string{View, Update, Create, Assign},
		IsAdmin:     true,
	}
}

func viewer() *directory.Persona {
	return &directory.Persona{ID: "u1", Name: "Ana", Role: RoleViewer, Permissions: []string{View}}
}

func TestExprEvaluatorAllows(t *testing.T) {
	evaluator := NewExprEvaluator()

	cases := []struct {
		rule    string
		persona *directory.Persona
		want    bool
	}{
		{rule: `isAdmin`, persona: admin(), want: true},
		{rule: `isAdmin`, persona: viewer(), want: false},
		{rule: `hasPermission("view") && role == "Viewer"`, persona: viewer(), want: true},
		{rule: `"assign" in permissions`, persona: viewer(), want: false},
		{rule: `id == "u4" || hasPermission("create")`, persona: admin(), want: true},
		{rule: `hasPermission("view")`, persona: nil, want: false},
	}
	for _, tc := range cases {
		got, err := evaluator.Allows(tc.persona, tc.rule)
		if err != nil {
			t.Fatalf("Allows(%q): %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Allows(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestExprEvaluatorRejectsBadRules(t *testing.T) {
	evaluator := NewExprEvaluator()

	if err := evaluator.Compile(""); !errors.Is(err, ErrEmptyRule) {
		t.Fatalf("expected ErrEmptyRule, got %v", err)
	}
	err := evaluator.Compile(`role +`)
	var ruleErr *RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected RuleError, got %v", err)
	}
	if ruleErr.Engine != EngineExpr || ruleErr.Rule != `role +` {
		t.Fatalf("unexpected rule error fields: %+v", ruleErr)
	}
	if err := evaluator.Compile(`name`); err == nil {
		t.Fatalf("expected non-boolean rule to fail compilation")
	}
}

func TestExprEvaluatorUsesProgramCache(t *testing.T) {
	cache := NewMemoryCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))

	if _, err := evaluator.Allows(admin(), `isAdmin`); err != nil {
		t.Fatalf("Allows: %v", err)
	}
	if _, ok := cache.Get(EngineExpr + ":isAdmin"); !ok {
		t.Fatalf("expected compiled program to be cached")
	}
	if got, err := evaluator.Allows(viewer(), `isAdmin`); err != nil || got {
		t.Fatalf("cached program should evaluate per persona, got %v, %v", got, err)
	}
}

func TestCELEvaluatorAllows(t *testing.T) {
	evaluator := NewCELEvaluator(CELWithProgramCache(NewMemoryCache()))

	cases := []struct {
		rule    string
		persona *directory.Persona
		want    bool
	}{
		{rule: `isAdmin`, persona: admin(), want: true},
		{rule: `'update' in permissions`, persona: viewer(), want: false},
		{rule: `role == 'Viewer' && 'view' in permissions`, persona: viewer(), want: true},
		{rule: `size(permissions) >= 4`, persona: admin(), want: true},
		{rule: `'view' in permissions`, persona: nil, want: false},
	}
	for _, tc := range cases {
		got, err := evaluator.Allows(tc.persona, tc.rule)
		if err != nil {
			t.Fatalf("Allows(%q): %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Allows(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestCELEvaluatorTypeChecksRules(t *testing.T) {
	evaluator := NewCELEvaluator()

	if err := evaluator.Compile(`name`); !errors.Is(err, ErrNonBoolean) {
		t.Fatalf("expected ErrNonBoolean, got %v", err)
	}
	if err := evaluator.Compile(`unknown == 1`); err == nil {
		t.Fatalf("expected undeclared variable to fail")
	}
	if err := evaluator.Compile(`isAdmin || role == 'Admin'`); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestNewEvaluatorSelectsEngine(t *testing.T) {
	for _, engine := range []string{"", EngineExpr, EngineCEL} {
		evaluator, err := NewEvaluator(engine, nil)
		if err != nil {
			t.Fatalf("NewEvaluator(%q): %v", engine, err)
		}
		want := engine
		if want == "" {
			want = EngineExpr
		}
		if evaluator.Engine() != want {
			t.Fatalf("NewEvaluator(%q).Engine() = %q", engine, evaluator.Engine())
		}
	}
	if _, err := NewEvaluator("lua", nil); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
	if !JSAvailable() {
		if _, err := NewEvaluator(EngineJS, nil); !errors.Is(err, ErrNoEvaluator) {
			t.Fatalf("expected js engine to be unavailable, got %v", err)
		}
	}
}
