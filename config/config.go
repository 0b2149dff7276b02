// Package config loads qanta.yaml, the settings shared by the qanta
// command's run, REPL and watch modes.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Natives     NativesConfig     `yaml:"natives"`
	REPL        REPLConfig        `yaml:"repl"`
	Watch       WatchConfig       `yaml:"watch"`

	// Path is the file the configuration was read from, empty when the
	// defaults are in use.
	Path string `yaml:"-"`
}

// InterpreterConfig controls evaluation.
type InterpreterConfig struct {
	MaxCallDepth int  `yaml:"max_call_depth"`
	TraceScopes  bool `yaml:"trace_scopes"` // log every variable read with its scope distance
}

// NativesConfig controls the native function table.
type NativesConfig struct {
	Locale   string   `yaml:"locale"`   // BCP 47 tag, e.g. "en-GB", "de"
	Disabled []string `yaml:"disabled"` // natives left out of the global environment
}

// REPLConfig controls the interactive prompt.
type REPLConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Interpreter: InterpreterConfig{
			MaxCallDepth: 1000,
		},
		Natives: NativesConfig{
			Locale: "en-US",
		},
		REPL: REPLConfig{
			Prompt: "> ",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
	}
}
