package filter

import (
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/umzug/umzug"
)

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables caching of compiled filters
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*Filter](size)
		}
	}
}

// WithPresets makes named expressions available to CompileNamed
func WithPresets(presets map[string]string) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.presets, presets)
	}
}

// Compiler compiles filter expressions
type Compiler struct {
	cache   *lruCache[*Filter]
	presets map[string]string
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{presets: map[string]string{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles an expression into a Filter
func (c *Compiler) Compile(expression string) (*Filter, error) {
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

	program, err := expr.Compile(expression,
		expr.Env(environment(Record{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{expression: expression, program: program}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// CompileNamed compiles a preset by name
func (c *Compiler) CompileNamed(name string) (*Filter, error) {
	expression, ok := c.presets[name]
	if !ok {
		return nil, &CompilationError{
			Expression: name,
			Reason:     "preset not found",
		}
	}
	return c.Compile(expression)
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against a record. Evaluation errors count as no match.
func (f *Filter) Match(r Record) bool {
	result, err := expr.Run(f.program, environment(r))
	if err != nil {
		return false
	}
	// Result is guaranteed to be bool due to AsBool() during compilation
	return result.(bool)
}

// environment builds the expression environment for a record
func environment(r Record) map[string]any {
	return map[string]any{
		"Kind":     r.Kind,
		"ID":       r.ID,
		"Title":    r.Title,
		"Priority": r.Priority,
		"Amount":   r.Amount,
		"Box":      r.Box,
		"Item":     r.Item,
		"Packings": r.Packings,

		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"urgent": func(threshold string) bool {
			return isAtLeast(r.Priority, threshold)
		},
	}
}

// isAtLeast reports whether priority is as urgent as threshold or more
func isAtLeast(priority, threshold string) bool {
	p, err := umzug.ParsePriority(priority)
	if err != nil {
		return false
	}
	t, err := umzug.ParsePriority(threshold)
	if err != nil {
		return false
	}
	return slices.Index(umzug.Priorities, p) <= slices.Index(umzug.Priorities, t)
}
