package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by resolveConfigPath when no default location
// holds a config file.
var ErrNotFound = errors.New("no config file found")

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults when none exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path. The path is empty when the defaults are in use.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), "", nil
	}
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, getenv)
	if err != nil {
		return nil, "", err
	}
	cfg.Path = absPath

	// history_file is relative to the config file, like every other path
	if h := cfg.REPL.HistoryFile; h != "" && !filepath.IsAbs(h) && !strings.HasPrefix(h, "~/") {
		cfg.REPL.HistoryFile = filepath.Join(filepath.Dir(absPath), h)
	}

	return cfg, absPath, nil
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid value in cfg.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Interpreter.MaxCallDepth < 1 {
		errs = append(errs, fmt.Sprintf("interpreter.max_call_depth must be at least 1, got %d", cfg.Interpreter.MaxCallDepth))
	}
	if cfg.Natives.Locale != "" {
		if _, err := language.Parse(strings.ReplaceAll(cfg.Natives.Locale, "_", "-")); err != nil {
			errs = append(errs, fmt.Sprintf("natives.locale %q is not a valid language tag", cfg.Natives.Locale))
		}
	}
	for _, name := range cfg.Natives.Disabled {
		if name == "print" {
			errs = append(errs, "natives.disabled cannot include print")
		}
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("watch.debounce cannot be negative, got %s", cfg.Watch.Debounce))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// resolveConfigPath finds the config file to load, in order: the explicit
// path, QANTA_CONFIG, ./qanta.yaml, ~/.config/qanta/qanta.yaml.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("QANTA_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("QANTA_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("qanta.yaml"); err == nil {
		return "qanta.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "qanta", "qanta.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", ErrNotFound
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if value := getenv(string(parts[1])); value != "" {
			return []byte(value)
		}
		return parts[2]
	})
}
