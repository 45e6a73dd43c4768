// Package config handles rapid-mcp.toml configuration files.
package config

// Config represents the contents of a rapid-mcp.toml file.
type Config struct {
	// CommandsDir is the directory of YAML command definitions.
	CommandsDir string `toml:"commands_dir"`

	Capabilities Capabilities `toml:"capabilities"`
	GH           GH           `toml:"gh"`
}

// Capabilities toggles optional server behavior that is off in a stock
// build.
type Capabilities struct {
	// EnforcePatterns compiles parameter pattern rules and rejects
	// non-matching arguments. Off, patterns are documentation only.
	EnforcePatterns bool `toml:"enforce_patterns"`
}

// GH holds settings for the gh executor.
type GH struct {
	// Binary is the gh executable name or path.
	Binary string `toml:"binary"`
	// TimeoutSeconds bounds one gh invocation. Zero disables the bound.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// FileName is the expected config file name in the working directory.
const FileName = "rapid-mcp.toml"

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		CommandsDir: "commands",
		GH: GH{
			Binary:         "gh",
			TimeoutSeconds: 30,
		},
	}
}
