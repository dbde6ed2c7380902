// Package config loads csvload's process configuration.
//
// Precedence (highest to lowest): changed CLI flags > CSVLOAD_* environment
// variables > config file > defaults. A .env file, when present, is loaded into
// the process environment first, so it feeds both CSVLOAD_* and PG* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"csvload/internal/storage"
)

const (
	// EnvPrefix prefixes every environment override. Nested keys use a double
	// underscore: CSVLOAD_STORAGE__DSN -> storage.dsn.
	EnvPrefix = "CSVLOAD_"

	DefaultTable       = "csv_data"
	DefaultStorageKind = "postgres"
	DefaultSampleLimit = 100
	DefaultJob         = "csvload"
)

// Config is the full process configuration.
type Config struct {
	Source  SourceConfig  `koanf:"source"`
	Parser  ParserConfig  `koanf:"parser"`
	Storage StorageConfig `koanf:"storage"`
	Load    LoadConfig    `koanf:"load"`
	Metrics MetricsConfig `koanf:"metrics"`
	Verbose bool          `koanf:"verbose"`
}

// SourceConfig names the input: a file path, an http(s) URL, or "-" for stdin.
type SourceConfig struct {
	Path string `koanf:"path"`
}

// ParserConfig carries free-form CSV reader options (header, comma,
// encoding, lazy_quotes). See Options for the typed accessors.
type ParserConfig struct {
	Options Options `koanf:"options"`
}

// StorageConfig selects the destination backend and table.
type StorageConfig struct {
	Kind  string `koanf:"kind"`
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table"`
}

// LoadConfig tunes the loader.
type LoadConfig struct {
	SampleLimit int `koanf:"sample_limit"`
}

// MetricsConfig selects the metrics backend ("none" or "datadog").
type MetricsConfig struct {
	Backend string `koanf:"backend"`
	Job     string `koanf:"job"`
	Tags    string `koanf:"tags"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"storage.kind":               DefaultStorageKind,
		"storage.table":              DefaultTable,
		"load.sample_limit":          DefaultSampleLimit,
		"parser.options.header":      "auto",
		"parser.options.comma":       ",",
		"parser.options.encoding":    "utf-8",
		"parser.options.lazy_quotes": false,
		"metrics.backend":            "none",
		"metrics.job":                DefaultJob,
		"verbose":                    false,
	}
}

// flagKeys maps CLI flag names onto config keys. Flags not listed here
// (e.g. --config) never reach the config tree.
var flagKeys = map[string]string{
	"table":           "storage.table",
	"storage":         "storage.kind",
	"dsn":             "storage.dsn",
	"sample-limit":    "load.sample_limit",
	"header":          "parser.options.header",
	"comma":           "parser.options.comma",
	"encoding":        "parser.options.encoding",
	"lazy-quotes":     "parser.options.lazy_quotes",
	"metrics-backend": "metrics.backend",
	"verbose":         "verbose",
}

// LoadDotEnv loads path (default ".env") into the process environment without
// overriding variables that are already set. A missing default file is not an
// error; a missing explicit file is.
func LoadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from defaults, cfgFile (optional, YAML or JSON), the
// environment and the changed flags in flags (may be nil).
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Parser.Options == nil {
		cfg.Parser.Options = Options{}
	}
	return &cfg, nil
}

// ResolveDSN fills an empty postgres DSN from the PG* variables read through
// getenv (see PostgresDSNFromEnv). Other kinds and explicit DSNs are left
// alone. Commands that never connect skip it.
func (c *Config) ResolveDSN(getenv func(string) string) error {
	if storage.NormalizeKind(c.Storage.Kind) != "postgres" || strings.TrimSpace(c.Storage.DSN) != "" {
		return nil
	}
	dsn, err := PostgresDSNFromEnv(getenv)
	if err != nil {
		return err
	}
	c.Storage.DSN = dsn
	return nil
}
