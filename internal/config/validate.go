package config

import (
	"fmt"
	"strings"
)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.CommandsDir == "" {
		errs = append(errs, "commands_dir: must not be empty")
	}

	if cfg.GH.Binary == "" {
		errs = append(errs, "gh.binary: must not be empty")
	}

	if cfg.GH.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("gh.timeout_seconds: must be non-negative, got %d", cfg.GH.TimeoutSeconds))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
