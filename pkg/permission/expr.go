package permission

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-paqs-store/pkg/directory"
)

// EngineExpr names the expr-lang engine.
const EngineExpr = "expr"

// ExprOption configures the expr evaluator.
type ExprOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

type exprEvaluator struct {
	cache ProgramCache
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Engine() string {
	return EngineExpr
}

func (e *exprEvaluator) Compile(rule string) error {
	_, err := e.loadOrCompile(rule)
	return err
}

func (e *exprEvaluator) Allows(persona *directory.Persona, rule string) (bool, error) {
	program, err := e.loadOrCompile(rule)
	if err != nil {
		return false, err
	}
	result, err := exprlang.Run(program, exprEnvironment(newRuleEnv(persona)))
	if err != nil {
		return false, wrapRuleError(EngineExpr, rule, err)
	}
	return asBool(EngineExpr, rule, result)
}

func (e *exprEvaluator) loadOrCompile(rule string) (*exprvm.Program, error) {
	if rule == "" {
		return nil, wrapRuleError(EngineExpr, rule, ErrEmptyRule)
	}
	key := EngineExpr + ":" + rule
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(rule,
		exprlang.Env(exprEnvironment(newRuleEnv(nil))),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, wrapRuleError(EngineExpr, rule, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func exprEnvironment(env ruleEnv) map[string]any {
	vars := env.variables()
	vars["hasPermission"] = env.has
	return vars
}
