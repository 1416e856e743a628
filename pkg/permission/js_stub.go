//go:build !js_eval

package permission

// JSOption configures the JavaScript evaluator.
type JSOption func(any)

// JSWithProgramCache is a no-op without the js_eval build tag.
func JSWithProgramCache(ProgramCache) JSOption {
	return func(any) {}
}

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag.
func NewJSEvaluator(...JSOption) Evaluator {
	return nil
}

// JSAvailable reports whether the binary was built with the js_eval tag.
func JSAvailable() bool {
	return false
}
