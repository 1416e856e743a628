package permission

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/goliatone/go-paqs-store/pkg/directory"
)

// EvaluationEvent describes one rule evaluation made by a Policy.
type EvaluationEvent struct {
	Engine    string
	Action    string
	Rule      string
	PersonaID string
	Allowed   bool
	Duration  time.Duration
	Err       error
}

// EvaluationLogger records policy evaluations.
type EvaluationLogger interface {
	LogEvaluation(EvaluationEvent)
}

// EvaluationLoggerFunc adapts a function to EvaluationLogger.
type EvaluationLoggerFunc func(EvaluationEvent)

// LogEvaluation implements EvaluationLogger.
func (f EvaluationLoggerFunc) LogEvaluation(event EvaluationEvent) {
	if f != nil {
		f(event)
	}
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithLogger sets the structured logger used for evaluation failures.
func WithLogger(logger *slog.Logger) PolicyOption {
	return func(p *Policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEvaluationLogger receives every rule evaluation.
func WithEvaluationLogger(logger EvaluationLogger) PolicyOption {
	return func(p *Policy) {
		p.evaluations = logger
	}
}

// WithRules registers action rules at construction. Invalid rules surface
// from NewPolicy.
func WithRules(rules map[string]string) PolicyOption {
	return func(p *Policy) {
		for action, rule := range rules {
			p.pending[action] = rule
		}
	}
}

// Policy maps actions to rule expressions. Actions without a rule fall back
// to HasPermission with the action as the permission name, so a Policy with
// no rules behaves exactly like HasPermission.
type Policy struct {
	mu          sync.RWMutex
	evaluator   Evaluator
	rules       map[string]string
	pending     map[string]string
	logger      *slog.Logger
	evaluations EvaluationLogger
}

// NewPolicy builds a Policy around evaluator. A nil evaluator is allowed as
// long as no rules are registered.
func NewPolicy(evaluator Evaluator, opts ...PolicyOption) (*Policy, error) {
	p := &Policy{
		evaluator: evaluator,
		rules:     map[string]string{},
		pending:   map[string]string{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	for _, action := range slices.Sorted(maps.Keys(p.pending)) {
		if err := p.Register(action, p.pending[action]); err != nil {
			return nil, err
		}
	}
	p.pending = nil
	return p, nil
}

// Register compiles rule and binds it to action, replacing any previous rule.
func (p *Policy) Register(action, rule string) error {
	if action == "" {
		return fmt.Errorf("permission: action must not be empty")
	}
	if p.evaluator == nil {
		return fmt.Errorf("%w: cannot register rule for %q", ErrNoEvaluator, action)
	}
	if err := p.evaluator.Compile(rule); err != nil {
		return fmt.Errorf("permission: register %q: %w", action, err)
	}
	p.mu.Lock()
	p.rules[action] = rule
	p.mu.Unlock()
	return nil
}

// Rule returns the rule bound to action, if any.
func (p *Policy) Rule(action string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rule, ok := p.rules[action]
	return rule, ok
}

// Actions lists actions with a registered rule, sorted.
func (p *Policy) Actions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.rules))
}

// Can reports whether persona may perform action. A nil persona may do
// nothing. Evaluation errors are logged and deny.
func (p *Policy) Can(persona *directory.Persona, action string) bool {
	if persona == nil {
		return false
	}
	rule, ok := p.Rule(action)
	if !ok {
		return HasPermission(persona, action)
	}
	start := time.Now()
	allowed, err := p.evaluator.Allows(persona, rule)
	if p.evaluations != nil {
		p.evaluations.LogEvaluation(EvaluationEvent{
			Engine:    p.evaluator.Engine(),
			Action:    action,
			Rule:      rule,
			PersonaID: persona.ID,
			Allowed:   allowed && err == nil,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	if err != nil {
		p.logger.Warn("permission rule failed",
			"action", action,
			"engine", p.evaluator.Engine(),
			"persona", persona.ID,
			"error", err,
		)
		return false
	}
	return allowed
}
