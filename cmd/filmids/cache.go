package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/filmids/internal/idcache"
	"github.com/vmunix/filmids/pkg/filmid"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the id cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached films in file order",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheSearchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Find cached films by title",
	Long: `Rank cached films by how closely their name matches <title>.

Matching ignores case, accents, punctuation and leading articles.

Examples:
  filmids cache search "the matrix"
  filmids cache search amelie --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCacheSearch,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheSearchCmd)

	cacheListCmd.Flags().Int("limit", 0, "Maximum entries to show (0 for all)")
	cacheSearchCmd.Flags().Int("limit", 10, "Maximum matches to show (0 for all)")
}

// cacheRow is one cache entry as shown to the user.
type cacheRow struct {
	Name      string  `json:"name"`
	Year      string  `json:"year"`
	ShortCode string  `json:"short_code,omitempty"`
	Kind      string  `json:"kind,omitempty"`
	TmdbID    string  `json:"tmdb_id,omitempty"`
	ImdbID    string  `json:"imdb_id,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Match     string  `json:"match,omitempty"`
}

func newCacheRow(e idcache.Entry) cacheRow {
	k, _ := idcache.ParseKey(e.Key)
	ids := e.IDs()
	return cacheRow{
		Name:      k.Name,
		Year:      k.Year,
		ShortCode: k.ShortCode,
		Kind:      ids.Kind,
		TmdbID:    ids.TmdbID,
		ImdbID:    ids.ImdbID,
	}
}

func runCacheList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openCache()
	if err != nil {
		return err
	}

	entries := store.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	rows := make([]cacheRow, len(entries))
	for i, e := range entries {
		rows[i] = newCacheRow(e)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, rows)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintf(out, "Cache %s is empty\n", store.Path())
		return nil
	}
	printCacheTable(out, rows, false)
	_, _ = fmt.Fprintf(out, "%d of %d entries\n", len(rows), store.Len())
	return nil
}

func runCacheSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	store, err := openCache()
	if err != nil {
		return err
	}

	results := store.Search(query, limit)
	rows := make([]cacheRow, len(results))
	for i, r := range results {
		rows[i] = newCacheRow(r.Entry)
		rows[i].Score = r.Score
		rows[i].Match = r.Confidence.String()
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, rows)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintf(out, "No cached films match %q\n", query)
		return nil
	}
	printCacheTable(out, rows, true)
	return nil
}

func openCache() (*idcache.Store, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := idcache.Load(cfg.Paths.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	return store, nil
}

func printCacheTable(w io.Writer, rows []cacheRow, withScore bool) {
	headers := []string{"Name", "Year", "Code", "Type", "TMDB", "IMDb"}
	aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft}
	if withScore {
		headers = append(headers, "Score", "Match")
		aligns = append(aligns, alignRight, alignLeft)
	}

	data := make([][]string, len(rows))
	for i, r := range rows {
		line := []string{r.Name, r.Year, r.ShortCode, displayKind(r.Kind), r.TmdbID, r.ImdbID}
		if withScore {
			line = append(line, fmt.Sprintf("%.2f", r.Score), r.Match)
		}
		data[i] = line
	}
	_, _ = fmt.Fprintln(w, renderTable(headers, data, aligns))
}

// displayKind labels the stored kind; unresolved entries stay blank here
// rather than showing the export's "TV Series" fallback.
func displayKind(kind string) string {
	if kind == "" {
		return ""
	}
	return filmid.IDs{Kind: kind}.DisplayKind()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
