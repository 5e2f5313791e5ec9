package script

import "fmt"

// Values maps parameter names to supplied values. Values are either strings
// or booleans (flag parameters accept boolean true or the literal "true").
type Values map[string]any

// Copy returns a shallow copy of the values map.
func (v Values) Copy() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String renders a value the way it would appear on the command line.
func valueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// truthy reports whether a supplied value contributes a value parameter.
// Empty strings, false, and nil contribute nothing.
func truthy(v any) bool {
	switch val := v.(type) {
	case string:
		return val != ""
	case bool:
		return val
	case nil:
		return false
	default:
		return true
	}
}

// flagEnabled reports whether a flag-only parameter is switched on. Only
// boolean true and the literal text "true" count; anything else is off.
func flagEnabled(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	default:
		return false
	}
}

// RedactedValues returns a copy of values with every secret parameter's value
// replaced by SecretPlaceholder. The returned map always has the same key set
// as the input.
func (c *Config) RedactedValues(values Values) Values {
	out := values.Copy()
	for i := range c.Parameters {
		p := &c.Parameters[i]
		if !p.Secret {
			continue
		}
		if _, ok := out[p.Name]; ok {
			out[p.Name] = SecretPlaceholder
		}
	}
	return out
}

// SecretValues returns the literal string values of every secret parameter
// that was supplied, for masking occurrences in output streams.
func (c *Config) SecretValues(values Values) []string {
	var secrets []string
	for i := range c.Parameters {
		p := &c.Parameters[i]
		if !p.Secret {
			continue
		}
		v, ok := values[p.Name]
		if !ok {
			continue
		}
		if s := valueString(v); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}
