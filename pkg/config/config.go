package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/check-circular-import/pkg/logging"
	"github.com/ritzau/check-circular-import/pkg/output"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. CHECK_CIRCULAR_IMPORT_FORMAT=json.
	EnvPrefix = "CHECK_CIRCULAR_IMPORT_"
	// FileName is the optional per-project config file.
	FileName = ".check-circular-import.toml"
	// PyprojectSection is the pyproject.toml table holding settings.
	PyprojectSection = "tool.check-circular-import"
)

// Config holds all configuration for the application
type Config struct {
	Ignore       []string `koanf:"ignore"`
	Format       string   `koanf:"format"`
	JSON         bool     `koanf:"json"`
	IncludeGraph bool     `koanf:"include-graph"`
	Watch        bool     `koanf:"watch"`
	NoColor      bool     `koanf:"no-color"`
	Verbosity    string   `koanf:"verbosity"`
	VerboseCnt   int      `koanf:"verbose"`
	LogFormat    string   `koanf:"log-format"`
	ConfigFile   string   `koanf:"config"`
}

// RegisterFlags defines the flags Load reads. Flag names are the koanf keys.
func RegisterFlags(f *pflag.FlagSet) {
	f.StringSlice("ignore", nil, "additional directory names or patterns to ignore (repeatable, comma separated)")
	f.String("format", string(output.FormatText), "report format: text, json or yaml")
	f.Bool("json", false, "output results as JSON (same as --format json)")
	f.Bool("include-graph", false, "include the dependency graph in json and yaml reports")
	f.Bool("watch", false, "re-run the analysis when Python files change")
	f.Bool("no-color", false, "disable colored output")
	f.CountP("verbose", "v", "show progress information (-vv for debug logs)")
	f.String("verbosity", "", "log level: trace, debug, info, warn or error")
	f.String("log-format", "text", "log format: text or json")
	f.String("config", "", "path to a TOML config file")
}

// Load loads configuration for the project at root from defaults, config
// files, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet, root string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"ignore":        []string{},
		"format":        string(output.FormatText),
		"json":          false,
		"include-graph": false,
		"watch":         false,
		"no-color":      false,
		"verbosity":     "",
		"verbose":       0,
		"log-format":    "text",
		"config":        "",
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config files. Implicit files are optional, an explicit one is not.
	if err := loadPyproject(k, filepath.Join(root, "pyproject.toml")); err != nil {
		return nil, err
	}
	if err := loadOptional(k, filepath.Join(root, FileName)); err != nil {
		return nil, err
	}
	if explicit := explicitConfig(f); explicit != "" {
		if err := k.Load(file.Provider(explicit), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", explicit, err)
		}
	}

	// 3. Environment Variables
	// Prefix: CHECK_CIRCULAR_IMPORT_ (e.g., CHECK_CIRCULAR_IMPORT_INCLUDE_GRAPH=true)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A comma separated env value arrives as one string
	cfg.Ignore = splitList(cfg.Ignore)

	return &cfg, nil
}

// OutputFormat returns the report format. --json wins over --format.
func (c *Config) OutputFormat() (output.Format, error) {
	if c.JSON {
		return output.FormatJSON, nil
	}
	return output.ParseFormat(c.Format)
}

// LogLevel returns the log level: --verbosity by name if set, otherwise
// WARN lowered one step per -v.
func (c *Config) LogLevel() (slog.Level, error) {
	if c.Verbosity != "" {
		return logging.ParseLevel(c.Verbosity)
	}
	switch {
	case c.VerboseCnt >= 3:
		return logging.LevelTrace, nil
	case c.VerboseCnt == 2:
		return slog.LevelDebug, nil
	case c.VerboseCnt == 1:
		return slog.LevelInfo, nil
	}
	return slog.LevelWarn, nil
}

// Verbose reports whether at least one -v was given.
func (c *Config) Verbose() bool {
	return c.VerboseCnt > 0
}

func loadOptional(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	logging.Debug("loaded config file", "path", path)
	return nil
}

// loadPyproject merges the [tool.check-circular-import] table of a
// pyproject.toml, if there is one.
func loadPyproject(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	pk := koanf.New(".")
	if err := pk.Load(file.Provider(path), toml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if !pk.Exists(PyprojectSection) {
		return nil
	}
	if err := k.Merge(pk.Cut(PyprojectSection)); err != nil {
		return fmt.Errorf("failed to merge %s: %w", path, err)
	}
	logging.Debug("loaded pyproject settings", "path", path)
	return nil
}

// explicitConfig returns the --config path, or the env equivalent. Config
// files load before env and flags, so it has to be read ahead of them.
func explicitConfig(f *pflag.FlagSet) string {
	if f != nil {
		if fl := f.Lookup("config"); fl != nil && fl.Changed {
			return fl.Value.String()
		}
	}
	return os.Getenv(EnvPrefix + "CONFIG")
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
