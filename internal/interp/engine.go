package interp

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenRe matches one {{expression}} token. Expressions cannot contain
// braces, so a non-greedy character class is enough.
var tokenRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// helperCallRe matches a helper invocation: an identifier followed by a
// parenthesized argument list.
var helperCallRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\((.*)\)$`)

// numberRe matches a numeric literal argument.
var numberRe = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Engine expands {{expr}} tokens in template strings against a data context.
// It is stateless between calls and safe for reuse.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine backed by the given registry; a nil registry
// gets the built-ins.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Engine{registry: registry}
}

// Registry exposes the engine's helper registry for user registration.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Interpolate replaces every {{expression}} token in input with its
// stringified result. Failures degrade: a missing path becomes an empty
// string and an unknown helper becomes an empty string with a recorded
// warning. Interpolation never aborts mid-document.
func (e *Engine) Interpolate(input string, data map[string]interface{}) (string, []string) {
	if !strings.Contains(input, "{{") {
		return input, nil
	}
	var warnings []string
	out := tokenRe.ReplaceAllStringFunc(input, func(token string) string {
		expr := strings.TrimSpace(tokenRe.FindStringSubmatch(token)[1])
		if expr == "" {
			return ""
		}
		value, warns := e.eval(expr, data)
		warnings = append(warnings, warns...)
		return Stringify(value)
	})
	return out, warnings
}

// HasTokens reports whether s contains at least one {{expr}} token.
func HasTokens(s string) bool {
	return tokenRe.MatchString(s)
}

// eval evaluates a single expression: either a helper invocation or a bare
// variable path.
func (e *Engine) eval(expr string, data map[string]interface{}) (interface{}, []string) {
	if m := helperCallRe.FindStringSubmatch(expr); m != nil {
		return e.evalHelper(m[1], m[2], data)
	}
	return Lookup(data, expr), nil
}

func (e *Engine) evalHelper(name, rawArgs string, data map[string]interface{}) (interface{}, []string) {
	helper, ok := e.registry.Lookup(name)
	if !ok {
		return "", []string{"unknown helper \"" + name + "\""}
	}
	var args []interface{}
	for _, raw := range splitArgs(rawArgs) {
		args = append(args, e.evalArg(raw, data))
	}
	return helper(args), nil
}

// evalArg applies the argument grammar: quoted strings, numeric literals
// and true/false/null are literals; any other bare token is a variable path.
func (e *Engine) evalArg(raw string, data map[string]interface{}) interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
			return unescape(raw[1:len(raw)-1], rune(raw[0]))
		}
	}
	if numberRe.MatchString(raw) {
		f, _ := strconv.ParseFloat(raw, 64)
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	return Lookup(data, raw)
}

// splitArgs splits a comma-separated argument list, respecting quotes.
func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var (
		args    []string
		current strings.Builder
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0 && r == '\\':
			current.WriteRune(r)
			escaped = true
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			current.WriteRune(r)
			quote = r
		case r == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	args = append(args, strings.TrimSpace(current.String()))
	return args
}

func unescape(s string, quote rune) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			if r != quote && r != '\\' {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}

// Lookup resolves a dotted path against nested maps (and slice indexes for
// numeric segments). A missing path yields nil, never an error.
func Lookup(data map[string]interface{}, path string) interface{} {
	if data == nil || path == "" {
		return nil
	}
	var current interface{} = data
	for _, segment := range strings.Split(path, ".") {
		switch container := current.(type) {
		case map[string]interface{}:
			v, ok := container[segment]
			if !ok {
				return nil
			}
			current = v
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(container) {
				return nil
			}
			current = container[idx]
		default:
			return nil
		}
	}
	return current
}
