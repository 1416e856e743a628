package permission

import (
	"slices"
	"testing"
)

func TestPolicyFallsBackToHasPermission(t *testing.T) {
	policy, err := NewPolicy(nil)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if !policy.Can(viewer(), View) {
		t.Fatalf("viewer should be able to view")
	}
	if policy.Can(viewer(), Update) {
		t.Fatalf("viewer should not be able to update")
	}
	if policy.Can(nil, View) {
		t.Fatalf("absent persona should be denied")
	}
	if err := policy.Register("delete", "isAdmin"); err == nil {
		t.Fatalf("expected registering without an evaluator to fail")
	}
}

func TestPolicyEvaluatesRegisteredRules(t *testing.T) {
	var events []EvaluationEvent
	policy, err := NewPolicy(NewExprEvaluator(),
		WithRules(map[string]string{
			"manage-users": `isAdmin && hasPermission("assign")`,
			"edit":         `hasPermission("update") || isAdmin`,
		}),
		WithEvaluationLogger(EvaluationLoggerFunc(func(event EvaluationEvent) {
			events = append(events, event)
		})),
	)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if got := policy.Actions(); !slices.Equal(got, []string{"edit", "manage-users"}) {
		t.Fatalf("unexpected actions %v", got)
	}
	if !policy.Can(admin(), "manage-users") {
		t.Fatalf("admin should manage users")
	}
	if policy.Can(viewer(), "edit") {
		t.Fatalf("viewer should not edit")
	}
	if !policy.Can(viewer(), View) {
		t.Fatalf("unruled actions should fall back to permission membership")
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 evaluation events, got %d", len(events))
	}
	if events[0].Action != "manage-users" || !events[0].Allowed || events[0].Engine != EngineExpr {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].PersonaID != "u1" || events[1].Allowed {
		t.Fatalf("unexpected second event %+v", events[1])
	}
}

func TestPolicyRejectsInvalidRules(t *testing.T) {
	if _, err := NewPolicy(NewCELEvaluator(), WithRules(map[string]string{"edit": "role"})); err == nil {
		t.Fatalf("expected non-boolean CEL rule to be rejected")
	}
	policy, err := NewPolicy(NewExprEvaluator())
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if err := policy.Register("", "isAdmin"); err == nil {
		t.Fatalf("expected empty action to be rejected")
	}
	if err := policy.Register("edit", "isAdmin &&"); err == nil {
		t.Fatalf("expected syntax error")
	}
	if _, ok := policy.Rule("edit"); ok {
		t.Fatalf("failed registration must not bind a rule")
	}
}
