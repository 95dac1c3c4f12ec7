package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/filmids/internal/config"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "filmids",
	Short: "Add TMDB and IMDb ids to Letterboxd exports",
	Long: `filmids - add TMDB and IMDb ids to Letterboxd exports

Reads a Letterboxd CSV export from the input directory, looks up each film's
TMDB and IMDb identifiers, and writes an enriched copy to the output directory.
Resolved ids are cached so later runs only look up new films.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("filmids {{.Version}}\n")
}

// loadConfig resolves the config file and builds the logger. An explicit
// --config path must exist; a discovered one may be absent.
func loadConfig() (*config.Config, *slog.Logger, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return nil, nil, err
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger := newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}
	return cfg, logger, nil
}
