// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment overrides, applied on top of whatever file loaded.
const (
	EnvCommandsDir = "RAPID_MCP_COMMANDS_DIR"
	EnvGHBinary    = "RAPID_MCP_GH_BINARY"
)

// GlobalConfigDir returns the directory for global rapid-mcp configuration.
// It uses $XDG_CONFIG_HOME/rapid-mcp if set, otherwise ~/.config/rapid-mcp.
func GlobalConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rapid-mcp")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rapid-mcp")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), FileName)
}

// Load resolves the effective configuration: defaults, then the config
// file, then environment overrides. With an explicit path the file must
// exist; otherwise Load falls back from ./rapid-mcp.toml to the global
// file to plain defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, required := path, path != ""
	if file == "" {
		file = firstExisting(FileName, GlobalConfigPath())
	}

	if file != "" {
		if err := decodeFile(file, cfg); err != nil {
			if !required && errors.Is(err, fs.ErrNotExist) {
				err = nil
			}
			if err != nil {
				return nil, fmt.Errorf("loading config %s: %w", file, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// decodeFile reads TOML into cfg. Keys the schema does not know are an
// error: a misspelled toggle silently doing nothing is worse than a
// startup failure.
func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvCommandsDir); v != "" {
		cfg.CommandsDir = v
	}
	if v := os.Getenv(EnvGHBinary); v != "" {
		cfg.GH.Binary = v
	}
}
