package permission

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-paqs-store/pkg/directory"
)

var (
	// ErrEmptyRule indicates an empty rule expression.
	ErrEmptyRule = errors.New("permission: rule must not be empty")
	// ErrNonBoolean indicates a rule produced something other than a bool.
	ErrNonBoolean = errors.New("permission: rule did not produce a boolean")
	// ErrNoEvaluator indicates the requested engine is not available.
	ErrNoEvaluator = errors.New("permission: evaluator not available")
)

// Evaluator runs rule expressions against a persona. Rules see the variables
// id, name, role, permissions and isAdmin. The expr and JS engines also
// expose hasPermission(name); CEL rules use `'name' in permissions`.
type Evaluator interface {
	Engine() string
	Compile(rule string) error
	Allows(persona *directory.Persona, rule string) (bool, error)
}

// ProgramCache stores compiled programs keyed by engine and rule.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryCache is a concurrency-safe ProgramCache.
type MemoryCache struct {
	programs sync.Map
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *MemoryCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

// RuleError carries the engine and rule alongside the failure.
type RuleError struct {
	Engine string
	Rule   string
	Err    error
}

func (e *RuleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("permission: %s rule %q: %v", e.Engine, e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapRuleError(engine, rule string, err error) error {
	if err == nil {
		return nil
	}
	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return err
	}
	return &RuleError{Engine: engine, Rule: rule, Err: err}
}

// ruleEnv is the variable set shared by every engine.
type ruleEnv struct {
	ID          string
	Name        string
	Role        string
	Permissions []string
	IsAdmin     bool
}

func newRuleEnv(persona *directory.Persona) ruleEnv {
	if persona == nil {
		return ruleEnv{Permissions: []string{}}
	}
	permissions := persona.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return ruleEnv{
		ID:          persona.ID,
		Name:        persona.Name,
		Role:        persona.Role,
		Permissions: permissions,
		IsAdmin:     persona.IsAdmin,
	}
}

func (e ruleEnv) has(name string) bool {
	return slices.Contains(e.Permissions, name)
}

func (e ruleEnv) variables() map[string]any {
	return map[string]any{
		"id":          e.ID,
		"name":        e.Name,
		"role":        e.Role,
		"permissions": e.Permissions,
		"isAdmin":     e.IsAdmin,
	}
}

func asBool(engine, rule string, value any) (bool, error) {
	allowed, ok := value.(bool)
	if !ok {
		return false, wrapRuleError(engine, rule, fmt.Errorf("%w: got %T", ErrNonBoolean, value))
	}
	return allowed, nil
}

// EngineJS names the goja engine, available with the js_eval build tag.
const EngineJS = "js"

// NewEvaluator builds the evaluator registered under engine. An empty engine
// selects expr.
func NewEvaluator(engine string, cache ProgramCache) (Evaluator, error) {
	switch engine {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache)), nil
	case EngineJS:
		if evaluator := NewJSEvaluator(JSWithProgramCache(cache)); evaluator != nil {
			return evaluator, nil
		}
		return nil, fmt.Errorf("%w: %s requires the js_eval build tag", ErrNoEvaluator, engine)
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoEvaluator, engine)
	}
}
