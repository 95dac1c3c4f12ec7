package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/filmids/internal/config"
	"github.com/vmunix/filmids/internal/enrich"
	"github.com/vmunix/filmids/internal/letterboxd"
	"github.com/vmunix/filmids/internal/tmdb"
)

// Bare-word switches accepted after the file name, e.g. "filmids enrich diary.csv diary".
const (
	wordCompatible   = "imdb"
	wordRatingBase10 = "b10"
	wordDiary        = "diary"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <file.csv> [imdb] [b10] [diary]",
	Short: "Add TMDB and IMDb ids to an export",
	Long: `Read <input>/<file.csv>, resolve every film and write <output>/<file.csv>.

Switches may be given as flags or as bare words after the file name:
  imdb   relabel headers for IMDb list import
  b10    convert 5-star ratings to a 10-point scale
  diary  use cached ids only; required for diary.csv

Examples:
  filmids enrich watched.csv
  filmids enrich ratings.csv --imdb --b10
  filmids enrich diary.csv diary`,
	Args: cobra.RangeArgs(1, 4),
	RunE: runEnrichCmd,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().Bool("imdb", false, "Relabel headers for IMDb list import")
	enrichCmd.Flags().Bool("b10", false, "Convert ratings to a 10-point scale")
	enrichCmd.Flags().Bool("diary", false, "Use cached ids only (required for diary.csv)")
}

// parseEnrichArgs merges positional bare words with flag values.
func parseEnrichArgs(args []string, compatible, base10, diary bool) (enrich.RunOptions, error) {
	if len(args) == 0 {
		return enrich.RunOptions{}, enrich.ErrNoFileName
	}
	opts := enrich.RunOptions{
		FileName:     args[0],
		Compatible:   compatible,
		RatingBase10: base10,
		Diary:        diary,
	}
	for _, word := range args[1:] {
		switch word {
		case wordCompatible:
			opts.Compatible = true
		case wordRatingBase10:
			opts.RatingBase10 = true
		case wordDiary:
			opts.Diary = true
		default:
			return enrich.RunOptions{}, fmt.Errorf("unknown option %q (want %s, %s or %s)", word, wordCompatible, wordRatingBase10, wordDiary)
		}
	}
	return opts, nil
}

func runEnrichCmd(cmd *cobra.Command, args []string) error {
	compatible, _ := cmd.Flags().GetBool("imdb")
	base10, _ := cmd.Flags().GetBool("b10")
	diary, _ := cmd.Flags().GetBool("diary")

	opts, err := parseEnrichArgs(args, compatible, base10, diary)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := enrich.NewPipeline(enrich.Paths{
		InputDir:  cfg.Paths.Input,
		OutputDir: cfg.Paths.Output,
		CacheFile: cfg.Paths.Cache,
	}, newLookupClient(cfg, logger), logger)

	sum, err := pipeline.Run(ctx, opts)
	if errors.Is(err, enrich.ErrDiaryFlagRequired) {
		logger.Warn("diary.csv repeats films from your other exports; rerun with the diary switch",
			"file", opts.FileName,
			"example", "filmids enrich "+opts.FileName+" diary",
		)
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printSummaryJSON(out, sum)
	}
	printSummary(out, sum)
	return nil
}

// newLookupClient builds the page scraper, with TMDB backfill when an API
// key is configured.
func newLookupClient(cfg *config.Config, logger *slog.Logger) *letterboxd.Client {
	hc := &http.Client{Timeout: cfg.Scraper.Timeout}

	opts := []letterboxd.Option{
		letterboxd.WithHTTPClient(hc),
		letterboxd.WithUserAgent(cfg.Scraper.UserAgent),
		letterboxd.WithLogger(logger),
	}
	if cfg.TMDB.APIKey != "" {
		tc := tmdb.NewClient(cfg.TMDB.APIKey,
			tmdb.WithBaseURL(cfg.TMDB.BaseURL),
			tmdb.WithCacheTTL(cfg.TMDB.CacheTTL),
			tmdb.WithHTTPClient(hc),
		)
		opts = append(opts, letterboxd.WithIMDbSource(tc))
		logger.Debug("tmdb backfill enabled", "base_url", cfg.TMDB.BaseURL)
	}
	return letterboxd.NewClient(opts...)
}

var summaryOutcomes = []enrich.Outcome{
	enrich.OutcomeTrusted,
	enrich.OutcomeRepaired,
	enrich.OutcomeScraped,
	enrich.OutcomeSkipped,
}

func printSummary(w io.Writer, sum *enrich.Summary) {
	rows := make([][]string, 0, len(summaryOutcomes)+1)
	for _, o := range summaryOutcomes {
		rows = append(rows, []string{o.String(), strconv.Itoa(sum.Outcomes[o])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(sum.Rows)})

	_, _ = fmt.Fprintln(w, renderTable([]string{"Outcome", "Rows"}, rows, []columnAlignment{alignLeft, alignRight}))
	_, _ = fmt.Fprintf(w, "Output: %s\n", sum.OutputPath)
	if sum.CachePersisted {
		_, _ = fmt.Fprintf(w, "Cache:  %s\n", sum.CachePath)
	} else {
		_, _ = fmt.Fprintf(w, "Cache:  %s (read only)\n", sum.CachePath)
	}
}

type summaryJSON struct {
	RunID          string         `json:"run_id"`
	Input          string         `json:"input"`
	Output         string         `json:"output"`
	Cache          string         `json:"cache"`
	Rows           int            `json:"rows"`
	Outcomes       map[string]int `json:"outcomes"`
	CachePersisted bool           `json:"cache_persisted"`
	DurationMS     int64          `json:"duration_ms"`
}

func printSummaryJSON(w io.Writer, sum *enrich.Summary) error {
	outcomes := make(map[string]int, len(summaryOutcomes))
	for _, o := range summaryOutcomes {
		outcomes[o.String()] = sum.Outcomes[o]
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaryJSON{
		RunID:          sum.RunID,
		Input:          sum.InputPath,
		Output:         sum.OutputPath,
		Cache:          sum.CachePath,
		Rows:           sum.Rows,
		Outcomes:       outcomes,
		CachePersisted: sum.CachePersisted,
		DurationMS:     sum.Duration.Milliseconds(),
	})
}
