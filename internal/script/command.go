package script

import "strings"

// BuildArgs turns supplied parameter values into an argument vector. It is
// pure and deterministic: parameters contribute in config-declared order and
// the same (config, values) pair always yields the same vector.
//
// Per-parameter rules:
//   - constant: the config default is used, whatever the caller supplied
//   - flag-only (NoValue): contributes its token iff the value is boolean
//     true or the literal "true"
//   - value-taking: contributes (token, value) iff the value is truthy; the
//     token is omitted when the parameter has none (positional argument);
//     unsupplied parameters fall back to a non-empty default
//   - missing optional parameters without a default contribute nothing
func BuildArgs(cfg *Config, values Values) []string {
	var args []string

	for i := range cfg.Parameters {
		p := &cfg.Parameters[i]

		value, supplied := values[p.Name]
		if p.Constant {
			value, supplied = p.Default, true
		}
		if !supplied && !p.NoValue && p.Default != "" {
			value, supplied = p.Default, true
		}
		if !supplied {
			continue
		}

		if p.NoValue {
			if flagEnabled(value) {
				args = append(args, p.Param)
			}
			continue
		}

		if !truthy(value) {
			continue
		}
		if p.Param != "" {
			args = append(args, p.Param)
		}
		args = append(args, valueString(value))
	}

	return args
}

// BuildCommand returns the full argument vector including the resolved
// executable path.
func BuildCommand(cfg *Config, values Values) ([]string, error) {
	path, err := cfg.CommandPath()
	if err != nil {
		return nil, err
	}
	return append([]string{path}, BuildArgs(cfg, values)...), nil
}

// SecureCommand renders the command line with secret parameter values masked,
// suitable for audit logging.
func SecureCommand(cfg *Config, values Values) (string, error) {
	command, err := BuildCommand(cfg, cfg.RedactedValues(values))
	if err != nil {
		return "", err
	}
	return strings.Join(command, " "), nil
}
