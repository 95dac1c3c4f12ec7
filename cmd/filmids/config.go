package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/filmids/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default config file",
	Long:  "Writes a commented default config to [path], or to $XDG_CONFIG_HOME/filmids/config.toml when no path is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates TOML syntax, settings and environment variable substitution without running an export.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	out := cmd.OutOrStdout()
	if path == "" {
		_, _ = fmt.Fprintln(out, "No config file found; using defaults.")
		return nil
	}
	_, _ = fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			printConfigErrors(out, cfgErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	_, _ = fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.TMDB.APIKey != "" {
		cfg.TMDB.APIKey = "********"
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), cfg)
	}
	return cfg.Encode(cmd.OutOrStdout())
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		_, _ = fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			_, _ = fmt.Fprintf(w, "  - %s\n", m)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		_, _ = fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			_, _ = fmt.Fprintf(w, "  - %s\n", err)
		}
		_, _ = fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	_, _ = fmt.Fprintln(w, "Configuration Summary:")
	_, _ = fmt.Fprintf(w, "  Input:    %s\n", cfg.Paths.Input)
	_, _ = fmt.Fprintf(w, "  Output:   %s\n", cfg.Paths.Output)
	_, _ = fmt.Fprintf(w, "  Cache:    %s\n", cfg.Paths.Cache)
	_, _ = fmt.Fprintf(w, "  Timeout:  %s\n", cfg.Scraper.Timeout)

	backfill := "off"
	if cfg.TMDB.APIKey != "" {
		backfill = "on (" + cfg.TMDB.BaseURL + ")"
	}
	_, _ = fmt.Fprintf(w, "  TMDB:     %s\n", backfill)
	_, _ = fmt.Fprintf(w, "  Logging:  %s, %s\n", cfg.Log.Level, cfg.Log.Format)
}
