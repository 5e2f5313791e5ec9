package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmgilman/scriptdeck/internal/names"
	"github.com/jmgilman/scriptdeck/internal/script"
)

func requireEngine(ctx context.Context) (*Engine, error) {
	e := EngineFromContext(ctx)
	if e == nil {
		return nil, errors.New("configuration not loaded, see warnings above")
	}
	return e, nil
}

// resolveOwner returns the audit identity for a new execution: the explicit
// override, then the configured default, then a generated name.
func resolveOwner(ctx context.Context, override string) string {
	if override != "" {
		return override
	}
	if cfg := ConfigFromContext(ctx); cfg != nil && cfg.Default.Owner != "" {
		return cfg.Default.Owner
	}
	return names.Generate()
}

// parseParamFlags turns repeated name=value flags into parameter values,
// rejecting names the script does not declare. Flag parameters accept
// name=true / name=false.
func parseParamFlags(cfg *script.Config, raw []string) (script.Values, error) {
	values := make(script.Values, len(raw))
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("malformed parameter %q, expected name=value", item)
		}

		p := cfg.Parameter(name)
		if p == nil {
			return nil, fmt.Errorf("script %q has no parameter %q", cfg.Name, name)
		}

		if p.NoValue {
			values[name] = value == "true"
			continue
		}
		values[name] = value
	}
	return values, nil
}
