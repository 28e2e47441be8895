package filter

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression  string
	program     *vm.Program
	helperFuncs map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Record fields are unknown until evaluation
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{
		expression:  expression,
		program:     program,
		helperFuncs: c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, f)
	}

	return f, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Match evaluates the filter against a decoded JSON record. Records that
// make the program fail at runtime do not match.
func (f *exprFilter) Match(record any) bool {
	result, err := expr.Run(f.program, f.runtimeEnvironment(record))
	if err != nil {
		return false
	}

	// AsBool guarantees the type
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// runtimeEnvironment exposes the fields of an object record as variables.
// Any other record is reachable as value.
func (f *exprFilter) runtimeEnvironment(record any) map[string]any {
	fields, _ := record.(map[string]any)

	env := make(map[string]any, len(fields)+len(f.helperFuncs)+3)
	maps.Copy(env, fields)
	maps.Copy(env, f.helperFuncs)

	env["value"] = record
	env["record"] = record
	env["present"] = createPresentFunc(fields)

	return env
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)

	// Case-insensitive string helpers. Plain contains, startsWith and
	// endsWith are operators in expr and lower/upper are builtins.
	funcs["icontains"] = func(str, substr any) bool {
		return strings.Contains(strings.ToLower(toString(str)), strings.ToLower(toString(substr)))
	}
	funcs["iprefix"] = func(str, prefix any) bool {
		return strings.HasPrefix(strings.ToLower(toString(str)), strings.ToLower(toString(prefix)))
	}
	funcs["isuffix"] = func(str, suffix any) bool {
		return strings.HasSuffix(strings.ToLower(toString(str)), strings.ToLower(toString(suffix)))
	}
	funcs["iequals"] = func(a, b any) bool {
		return strings.EqualFold(toString(a), toString(b))
	}

	// Replaced per record at runtime
	funcs["present"] = createPresentFunc(nil)

	return funcs
}

// createPresentFunc reports whether a record carries a non-null field
func createPresentFunc(fields map[string]any) func(string) bool {
	return func(name string) bool {
		v, ok := fields[name]
		return ok && v != nil
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}
