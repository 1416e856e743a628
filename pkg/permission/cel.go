package permission

import (
	celgo "github.com/google/cel-go/cel"

	"github.com/goliatone/go-paqs-store/pkg/directory"
)

// EngineCEL names the cel-go engine.
const EngineCEL = "cel"

// CELOption configures the CEL evaluator.
type CELOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

type celEvaluator struct {
	env   *celgo.Env
	err   error
	cache ProgramCache
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Variables are
// declared with concrete types so rules are type checked at compile time.
func NewCELEvaluator(opts ...CELOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.env, e.err = celgo.NewEnv(
		celgo.Variable("id", celgo.StringType),
		celgo.Variable("name", celgo.StringType),
		celgo.Variable("role", celgo.StringType),
		celgo.Variable("permissions", celgo.ListType(celgo.StringType)),
		celgo.Variable("isAdmin", celgo.BoolType),
	)
	return e
}

func (e *celEvaluator) Engine() string {
	return EngineCEL
}

func (e *celEvaluator) Compile(rule string) error {
	_, err := e.loadOrCompile(rule)
	return err
}

func (e *celEvaluator) Allows(persona *directory.Persona, rule string) (bool, error) {
	program, err := e.loadOrCompile(rule)
	if err != nil {
		return false, err
	}
	out, _, err := program.Eval(newRuleEnv(persona).variables())
	if err != nil {
		return false, wrapRuleError(EngineCEL, rule, err)
	}
	return asBool(EngineCEL, rule, out.Value())
}

func (e *celEvaluator) loadOrCompile(rule string) (celgo.Program, error) {
	if rule == "" {
		return nil, wrapRuleError(EngineCEL, rule, ErrEmptyRule)
	}
	if e.err != nil {
		return nil, wrapRuleError(EngineCEL, rule, e.err)
	}
	key := EngineCEL + ":" + rule
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}
	ast, issues := e.env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, wrapRuleError(EngineCEL, rule, issues.Err())
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, wrapRuleError(EngineCEL, rule, ErrNonBoolean)
	}
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, wrapRuleError(EngineCEL, rule, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}
