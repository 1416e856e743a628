//go:build js_eval

package permission

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/goliatone/go-paqs-store/pkg/directory"
)

// JSOption configures the JavaScript evaluator.
type JSOption func(*jsEvaluator)

// JSWithProgramCache wires a ProgramCache into the JavaScript evaluator.
func JSWithProgramCache(cache ProgramCache) JSOption {
	return func(e *jsEvaluator) {
		e.cache = cache
	}
}

type jsEvaluator struct {
	cache ProgramCache
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime.
func NewJSEvaluator(opts ...JSOption) Evaluator {
	e := &jsEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// JSAvailable reports whether the binary was built with the js_eval tag.
func JSAvailable() bool {
	return true
}

func (e *jsEvaluator) Engine() string {
	return EngineJS
}

func (e *jsEvaluator) Compile(rule string) error {
	_, err := e.loadOrCompile(rule)
	return err
}

func (e *jsEvaluator) Allows(persona *directory.Persona, rule string) (bool, error) {
	program, err := e.loadOrCompile(rule)
	if err != nil {
		return false, err
	}
	env := newRuleEnv(persona)
	vm := goja.New()
	for key, value := range env.variables() {
		if err := vm.Set(key, value); err != nil {
			return false, wrapRuleError(EngineJS, rule, err)
		}
	}
	if err := vm.Set("hasPermission", env.has); err != nil {
		return false, wrapRuleError(EngineJS, rule, err)
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return false, wrapRuleError(EngineJS, rule, err)
	}
	return asBool(EngineJS, rule, value.Export())
}

func (e *jsEvaluator) loadOrCompile(rule string) (*goja.Program, error) {
	if rule == "" {
		return nil, wrapRuleError(EngineJS, rule, ErrEmptyRule)
	}
	key := EngineJS + ":" + rule
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", rule), false)
	if err != nil {
		return nil, wrapRuleError(EngineJS, rule, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}
