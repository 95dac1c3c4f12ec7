package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/filmids/internal/fileutil"
	"github.com/vmunix/filmids/internal/filmcsv"
	"github.com/vmunix/filmids/internal/idcache"
)

// DiaryFileName is the diary export. Its entries repeat films already
// resolved through the other exports, so it must run in diary mode.
const DiaryFileName = "diary.csv"

var (
	// ErrDiaryFlagRequired is returned when diary.csv is run without diary mode.
	ErrDiaryFlagRequired = errors.New("diary.csv must be processed in diary mode")

	// ErrNoFileName is returned when no input file was named.
	ErrNoFileName = errors.New("no input file name")
)

// RunOptions are the switches for one run, built once from the command line.
type RunOptions struct {
	FileName     string
	Compatible   bool // relabel output headers for IMDb import
	RatingBase10 bool
	Diary        bool
}

// Validate checks the options before any file is touched.
func (o RunOptions) Validate() error {
	if o.FileName == "" {
		return ErrNoFileName
	}
	if filepath.Base(o.FileName) == DiaryFileName && !o.Diary {
		return ErrDiaryFlagRequired
	}
	return nil
}

// Paths locates the run's files.
type Paths struct {
	InputDir  string
	OutputDir string
	CacheFile string
}

// Summary describes a completed run.
type Summary struct {
	RunID          string
	InputPath      string
	OutputPath     string
	CachePath      string
	Rows           int
	Outcomes       map[Outcome]int
	CachePersisted bool
	Duration       time.Duration
}

// Pipeline reads an export, resolves every row and writes the enriched copy.
type Pipeline struct {
	paths  Paths
	lookup Lookuper
	log    *slog.Logger
	now    func() time.Time
}

// NewPipeline creates a pipeline.
func NewPipeline(paths Paths, lookup Lookuper, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		paths:  paths,
		lookup: lookup,
		log:    log,
		now:    time.Now,
	}
}

// Run processes opts.FileName. Rows are resolved one at a time in input
// order. The cache is persisted (outside diary mode) and the output written
// only after every row has been resolved; any earlier error leaves both
// untouched.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := p.now()
	sum := &Summary{
		RunID:      uuid.NewString(),
		InputPath:  filepath.Join(p.paths.InputDir, opts.FileName),
		OutputPath: filepath.Join(p.paths.OutputDir, opts.FileName),
		CachePath:  p.paths.CacheFile,
		Outcomes:   make(map[Outcome]int),
	}
	log := p.log.With("run_id", sum.RunID, "file", opts.FileName)
	log.Info("processing export", "input", sum.InputPath, "diary", opts.Diary, "compatible", opts.Compatible, "rating_base10", opts.RatingBase10)

	data, err := os.ReadFile(sum.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	rows, err := filmcsv.Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", sum.InputPath, err)
	}

	store, err := idcache.Load(p.paths.CacheFile, log)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	resolver := NewResolver(store, p.lookup, ResolveOptions{
		RatingBase10: opts.RatingBase10,
		Diary:        opts.Diary,
	}, log)

	enriched := make([]filmcsv.Row, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("interrupted after %d of %d rows: %w", i, len(rows), err)
		}

		out, outcome := resolver.Resolve(ctx, row)
		enriched = append(enriched, out)
		sum.Outcomes[outcome]++

		log.Info("processed film",
			"row", i+1,
			"name", out.Text(FieldName),
			"year", out.Text(FieldYear),
			"kind", out.Text(FieldTmdbIDType),
			"tmdb_id", out.Text(FieldTmdbID),
			"imdb_id", out.Text(FieldImdbID),
			"outcome", outcome.String(),
		)
	}
	sum.Rows = len(enriched)

	if !opts.Diary {
		if err := store.Persist(); err != nil {
			return nil, fmt.Errorf("persist cache: %w", err)
		}
		sum.CachePersisted = true
	}

	text, err := filmcsv.Encode(enriched, filmcsv.EncodeOptions{Compatible: opts.Compatible})
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sum.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(sum.OutputPath, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	sum.Duration = p.now().Sub(start)
	log.Info("export done", "output", sum.OutputPath, "rows", sum.Rows, "cache_persisted", sum.CachePersisted, "duration", sum.Duration)
	return sum, nil
}
