package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/webbrowser/packages/builtin"
)

// {{expr}} or ${NAME}; a bare $NAME is not expanded
var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}|\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// WarnFunc is called for every reference that cannot be resolved
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{name}} references with captured values or
// variables, {{fn(args)}} with builtin functions, and ${NAME} / {{$NAME}}
// references with the process environment. Captures take precedence over
// variables.
type Resolver struct {
	variables map[string]any
	captures  map[string]any
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.variables[name] = value
}

// SetCaptures records values extracted from a response
func (r *Resolver) SetCaptures(values map[string]any) {
	for k, v := range values {
		r.captures[k] = v
	}
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	if v, ok := r.captures[name]; ok {
		return v, true
	}
	if v, ok := r.variables[name]; ok {
		return v, true
	}
	return nil, false
}

// Resolve expands every reference in input. Unresolved references are left
// in place and reported through the warn function.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		if strings.HasPrefix(match, "${") {
			name := match[2 : len(match)-1]
			if val, ok := r.GetVariable(name); ok {
				return fmt.Sprintf("%v", val)
			}
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			r.warn("unresolved environment variable: %s", name)
			return match
		}

		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			if val, ok := os.LookupEnv(expr[1:]); ok {
				return val
			}
			r.warn("unresolved environment variable: %s", expr)
			return match
		}

		if val, ok := r.GetVariable(expr); ok {
			return fmt.Sprintf("%v", val)
		}

		if val, ok, err := r.funcs.Call(expr); ok {
			if err != nil {
				r.warn("%v", err)
				return match
			}
			return val
		}

		r.warn("unresolved variable: %s", expr)
		return match
	})
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}
