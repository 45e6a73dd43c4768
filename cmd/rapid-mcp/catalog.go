package main

import (
	"context"

	"github.com/macjunkins/rapid-mcp-server/internal/config"
	"github.com/macjunkins/rapid-mcp-server/internal/loader"
	"github.com/macjunkins/rapid-mcp-server/internal/registry"
)

// loadSettings resolves configuration for a subcommand: the --config flag
// when set, otherwise the usual file search, then environment overrides.
// Both runServe and the catalog subcommands go through here so precedence
// lives in a single place.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// commandsDir picks the catalog directory: an explicit positional argument
// wins over the configured commands_dir.
func commandsDir(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.CommandsDir
}

// buildCatalog loads the command directory and compiles the registry with
// the configured capabilities. The loader result is returned even on error
// so callers can surface lint warnings from the files that did load.
func buildCatalog(ctx context.Context, dir string, cfg *config.Config) (*loader.Result, *registry.Registry, error) {
	res, err := loader.Dir(ctx, dir)
	if err != nil {
		return res, nil, err
	}
	reg, err := registry.New(res.Definitions, registry.Options{
		EnforcePatterns: cfg.Capabilities.EnforcePatterns,
	})
	if err != nil {
		return res, nil, err
	}
	return res, reg, nil
}
