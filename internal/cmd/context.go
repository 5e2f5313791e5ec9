package cmd

import (
	"context"
	"log/slog"

	"github.com/jmgilman/scriptdeck/internal/alert"
	"github.com/jmgilman/scriptdeck/internal/config"
	"github.com/jmgilman/scriptdeck/internal/execution"
	"github.com/jmgilman/scriptdeck/internal/logging"
	"github.com/jmgilman/scriptdeck/internal/script"
)

type contextKey string

const (
	configKey contextKey = "config"
	loaderKey contextKey = "loader"
	engineKey contextKey = "engine"
)

// Engine bundles the wired execution stack shared by subcommands.
type Engine struct {
	Scripts    *script.Loader
	Registry   *execution.Registry
	Paths      *logging.PathManager
	Dispatcher *alert.Dispatcher
	Logger     *slog.Logger
}

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext retrieves the config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithLoader adds the config loader to the context.
func WithLoader(ctx context.Context, loader *config.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the config loader from context.
func LoaderFromContext(ctx context.Context) *config.Loader {
	loader, ok := ctx.Value(loaderKey).(*config.Loader)
	if !ok {
		return nil
	}
	return loader
}

// WithEngine adds the execution engine to the context.
func WithEngine(ctx context.Context, e *Engine) context.Context {
	return context.WithValue(ctx, engineKey, e)
}

// EngineFromContext retrieves the execution engine from context.
func EngineFromContext(ctx context.Context) *Engine {
	e, ok := ctx.Value(engineKey).(*Engine)
	if !ok {
		return nil
	}
	return e
}
