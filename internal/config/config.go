// Package config loads sqlgen settings.
//
// Sources are applied in rising order of precedence: built-in defaults, a YAML
// file (--config, or sqlgen.yaml / sqlgen.yml in the working directory),
// SQLGEN_* environment variables, and command-line flags that were set
// explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/coregx/sqlgen/internal/cache"
	"github.com/coregx/sqlgen/internal/dialects"
	"github.com/coregx/sqlgen/internal/logger"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SQLGEN_"

// Defaults.
const (
	DefaultDialect  = "mssql"
	DefaultLogLevel = "warn"
	DefaultOutput   = OutputText
)

// Output formats.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// DefaultFiles are looked up in the working directory when no file is given.
var DefaultFiles = []string{"sqlgen.yaml", "sqlgen.yml"}

// ErrInvalidConfig is returned when a loaded setting is unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the generator and CLI settings.
type Config struct {
	Dialect         string   `koanf:"dialect"`
	Quote           bool     `koanf:"quote"`
	LogLevel        string   `koanf:"log_level"`
	Output          string   `koanf:"output"`
	SensitiveParams []string `koanf:"sensitive_params"`
	CacheCapacity   int      `koanf:"cache_capacity"`

	// File is the configuration file that was read, if any.
	File string `koanf:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dialect:       DefaultDialect,
		LogLevel:      DefaultLogLevel,
		Output:        DefaultOutput,
		CacheCapacity: cache.DefaultCapacity,
	}
}

// findConfigFile returns explicit, or the first default file that exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads the configuration. flags may be nil; only flags the user set
// override lower sources, and flag names map to keys with '-' replaced by '_'.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"dialect":        def.Dialect,
		"quote":          def.Quote,
		"log_level":      def.LogLevel,
		"output":         def.Output,
		"cache_capacity": def.CacheCapacity,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: SQLGEN_LOG_LEVEL -> log_level. Lists are comma-separated.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "sensitive_params" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Dialect = strings.ToLower(strings.TrimSpace(cfg.Dialect))
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := dialects.GetDialect(c.Dialect); err != nil {
		return fmt.Errorf("%w: dialect: %w", ErrInvalidConfig, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Output {
	case OutputText, OutputYAML:
	default:
		return fmt.Errorf("%w: output must be %s or %s, got %q", ErrInvalidConfig, OutputText, OutputYAML, c.Output)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("%w: cache_capacity must be positive, got %d", ErrInvalidConfig, c.CacheCapacity)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
