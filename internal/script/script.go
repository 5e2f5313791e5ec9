// Package script defines the script configuration data model consumed by the
// execution engine: script descriptions, their parameters, supplied parameter
// values, and the pure command builder that turns both into an argument vector.
package script

import (
	"errors"
	"fmt"
	"path/filepath"
)

// SecretPlaceholder replaces secret parameter values in redacted views.
const SecretPlaceholder = "******"

// Sentinel errors for script operations.
var (
	ErrNotFound     = errors.New("script not found")
	ErrNoScriptPath = errors.New("script has no executable path")
)

// Parameter describes a single script parameter.
type Parameter struct {
	// Name is the unique parameter name used as the key in supplied values.
	Name string `yaml:"name" validate:"required"`

	// Param is the CLI flag token (e.g. "--verbose"). Empty for positional
	// value parameters.
	Param string `yaml:"param"`

	// NoValue marks a flag-only parameter: it contributes its token and
	// nothing else when the supplied value is true.
	NoValue bool `yaml:"no_value"`

	// Constant marks a parameter whose value is always Default, regardless
	// of what the caller supplied.
	Constant bool `yaml:"constant"`

	// Default is the value used for constant parameters and for value
	// parameters with no supplied value.
	Default string `yaml:"default"`

	// Secret marks a parameter whose value must never appear in redacted
	// output, logs shared with alert destinations, or the secure command.
	Secret bool `yaml:"secret"`

	// Description is shown when prompting for the parameter.
	Description string `yaml:"description"`

	// DependsOn lists parameter names whose validated values this parameter
	// needs to compute its own allowed values. Validation itself happens at
	// the external boundary; the engine only carries the declaration.
	DependsOn []string `yaml:"depends_on"`
}

// Config is an immutable description of an executable script. It is loaded
// externally (see Loader) and treated as read-only by the engine.
type Config struct {
	// Name uniquely identifies the script.
	Name string `yaml:"name" validate:"required"`

	// ScriptPath is the executable path, absolute or relative to WorkingDir.
	ScriptPath string `yaml:"script_path" validate:"required"`

	// WorkingDir is the working directory for the launched process.
	WorkingDir string `yaml:"working_directory"`

	// RequiresTerminal requests the PTY-backed launch strategy. Falls back
	// to the pipe strategy on platforms without PTY support.
	RequiresTerminal bool `yaml:"requires_terminal"`

	// BashFormatting enables decoding of terminal style escape sequences in
	// the script's output. When false, raw text passes through unchanged.
	BashFormatting bool `yaml:"bash_formatting"`

	// Parameters in declaration order. Order is significant: the command
	// builder emits arguments in this order.
	Parameters []Parameter `yaml:"parameters" validate:"dive"`

	// DownloadableFiles lists path patterns the script may produce. Entries
	// may reference parameter values as ${name} and may contain globs; an
	// entry wrapped in '#' is a regular expression matched against the
	// execution output.
	DownloadableFiles []string `yaml:"downloadable_files"`

	// AllowedUsers is the access-control list. Empty means everyone. The
	// engine does not enforce it; the caller consults it as a capability
	// check before starting an execution.
	AllowedUsers []string `yaml:"allowed_users"`
}

// Parameter returns the parameter with the given name, or nil.
func (c *Config) Parameter(name string) *Parameter {
	for i := range c.Parameters {
		if c.Parameters[i].Name == name {
			return &c.Parameters[i]
		}
	}
	return nil
}

// CommandPath resolves the script's executable path against its working
// directory.
func (c *Config) CommandPath() (string, error) {
	if c.ScriptPath == "" {
		return "", ErrNoScriptPath
	}
	if filepath.IsAbs(c.ScriptPath) || c.WorkingDir == "" {
		return c.ScriptPath, nil
	}
	return filepath.Join(c.WorkingDir, c.ScriptPath), nil
}

// AllowsUser reports whether the audit identity passes the script's ACL.
func (c *Config) AllowsUser(identity string) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, u := range c.AllowedUsers {
		if u == identity {
			return true
		}
	}
	return false
}

// Validate performs minimal structural validation of a loaded config.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("script name is required")
	}
	if c.ScriptPath == "" {
		return ErrNoScriptPath
	}
	seen := make(map[string]struct{}, len(c.Parameters))
	for i := range c.Parameters {
		p := &c.Parameters[i]
		if p.Name == "" {
			return fmt.Errorf("script %q: parameter %d has no name", c.Name, i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("script %q: duplicate parameter %q", c.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}
