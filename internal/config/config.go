// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied by Load when a value is left unset.
const (
	DefaultInputDir       = "./input"
	DefaultOutputDir      = "./output"
	DefaultCacheFile      = "./cache/cache.json"
	DefaultScraperTimeout = 30 * time.Second
	DefaultTMDBBaseURL    = "https://api.themoviedb.org"
	DefaultTMDBCacheTTL   = 24 * time.Hour
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "auto"
)

// Config is the root configuration structure.
type Config struct {
	Paths   PathsConfig   `toml:"paths"`
	Scraper ScraperConfig `toml:"scraper"`
	TMDB    TMDBConfig    `toml:"tmdb"`
	Log     LogConfig     `toml:"log"`
}

type PathsConfig struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
	Cache  string `toml:"cache"`
}

type ScraperConfig struct {
	// UserAgent overrides the browser-like default when set.
	UserAgent string        `toml:"user_agent"`
	Timeout   time.Duration `toml:"timeout"`
}

// TMDBConfig enables IMDb backfill through the TMDB API. Backfill is off
// while APIKey is empty.
type TMDBConfig struct {
	APIKey   string        `toml:"api_key"`
	BaseURL  string        `toml:"base_url"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // auto, text or json
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file. An empty path yields the
// defaults. Unresolved environment variables and validation failures are
// reported together as a *ConfigError.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return &cfg, nil
}

// LoadOrDefault loads path, or the defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Paths.Input == "" {
		c.Paths.Input = DefaultInputDir
	}
	if c.Paths.Output == "" {
		c.Paths.Output = DefaultOutputDir
	}
	if c.Paths.Cache == "" {
		c.Paths.Cache = DefaultCacheFile
	}
	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = DefaultScraperTimeout
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = DefaultTMDBBaseURL
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = DefaultTMDBCacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolved references are left in place and reported in missing. For the
// :- and :? forms an empty value counts as unset.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
