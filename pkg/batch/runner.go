package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/igorlobovc/claimsift/pkg/logging"
	"github.com/igorlobovc/claimsift/pkg/overrides"
	"github.com/igorlobovc/claimsift/pkg/scoring"
	"github.com/igorlobovc/claimsift/pkg/usage"
)

// DefaultConcurrency is the default number of concurrent workers.
const DefaultConcurrency = 4

// RunnerConfig configures a batch scoring run.
type RunnerConfig struct {
	// Concurrency is the number of worker goroutines.
	Concurrency int

	// SourceTag identifies the supplier batch in events and summaries.
	SourceTag string

	// Promote applies the entity override promotion pass after scoring.
	Promote bool

	// NoiseControls applies per-entity coevidence and cap filters to the
	// final row set.
	NoiseControls bool
}

// FileError records an error for a specific input file.
type FileError struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// RunResult is the aggregate outcome of one scoring run.
type RunResult struct {
	RunID      string `json:"run_id"`
	SourceTag  string `json:"source_tag"`
	TotalFiles int    `json:"total_files"`
	TotalRows  int    `json:"total_rows"`

	TierCounts    map[scoring.Tier]int `json:"tier_counts"`
	PromotedCount int                  `json:"promoted_count"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Success     bool      `json:"success"`

	FailedFiles []FileError `json:"failed_files"`

	// Rows holds every scored row across all inputs, grouped by file in
	// input order. Not serialized with the summary.
	Rows []*scoring.ScoredRow `json:"-"`
}

// Runner scores batches of supplier files.
type Runner struct {
	cfg       RunnerConfig
	extractor *usage.Extractor
	scorer    *scoring.Scorer
	engine    *overrides.Engine
	publisher *Publisher
	metrics   *Metrics
	logger    logging.Logger

	progress *Progress
	mu       sync.Mutex
}

// NewRunner creates a batch runner. The override engine, publisher, and
// metrics may each be nil to disable that concern.
func NewRunner(
	extractor *usage.Extractor,
	scorer *scoring.Scorer,
	engine *overrides.Engine,
	publisher *Publisher,
	metrics *Metrics,
	logger logging.Logger,
	cfg RunnerConfig,
) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Runner{
		cfg:       cfg,
		extractor: extractor,
		scorer:    scorer,
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With(logging.F("component", "batch_runner")),
	}
}

// Run scores all supplier CSV files at the given path (file or directory)
// and returns the aggregated result. Individual file failures are recorded
// and skipped; the run itself fails only when nothing could be processed.
func (r *Runner) Run(ctx context.Context, path string) (*RunResult, error) {
	files, err := r.discoverFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	runID := uuid.New().String()
	result := &RunResult{
		RunID:      runID,
		SourceTag:  r.cfg.SourceTag,
		TotalFiles: len(files),
		TierCounts: make(map[scoring.Tier]int),
		StartedAt:  time.Now(),
	}

	if len(files) == 0 {
		result.CompletedAt = time.Now()
		result.Success = true
		return result, nil
	}

	ctx = context.WithValue(ctx, logging.RunIDKey, runID)
	logger := r.logger.WithContext(ctx)
	logger.Info("Starting scoring run",
		logging.F("files", len(files)),
		logging.F("concurrency", r.cfg.Concurrency),
	)

	r.progress = NewProgress(len(files))
	r.progress.Start()

	fileRows := make([][]*scoring.ScoredRow, len(files))
	if r.cfg.Concurrency == 1 {
		r.runSequential(ctx, files, fileRows, result)
	} else {
		r.runParallel(ctx, files, fileRows, result)
	}

	for _, rows := range fileRows {
		result.Rows = append(result.Rows, rows...)
	}

	if r.engine != nil {
		r.engine.Annotate(result.Rows)
		if r.cfg.Promote {
			result.PromotedCount = overrides.Promote(result.Rows)
		}
		if r.cfg.NoiseControls {
			result.Rows = r.engine.ApplyNoiseControls(result.Rows)
		}
	}

	for _, sr := range result.Rows {
		result.TierCounts[sr.Result.Tier]++
	}
	result.TotalRows = len(result.Rows)
	result.CompletedAt = time.Now()
	result.Success = len(result.FailedFiles) < len(files)

	r.metrics.ObserveRun(result)
	r.progress.Complete(result.Success)

	if err := r.publisher.PublishRunCompleted(ctx, RunCompletedEvent{
		RunID:        runID,
		SourceTag:    r.cfg.SourceTag,
		TotalFiles:   result.TotalFiles,
		TotalRows:    result.TotalRows,
		GoldCount:    result.TierCounts[scoring.TierGold],
		SilverCount:  result.TierCounts[scoring.TierSilver],
		BronzeCount:  result.TierCounts[scoring.TierBronze],
		NoMatchCount: result.TierCounts[scoring.TierNoMatch],
		Promoted:     result.PromotedCount,
		FailedFiles:  len(result.FailedFiles),
		StartedAt:    result.StartedAt,
		CompletedAt:  result.CompletedAt,
		Success:      result.Success,
	}); err != nil {
		logger.Warn("Failed to publish completion event", logging.Err(err))
	}

	logger.Info("Scoring run finished",
		logging.F("rows", result.TotalRows),
		logging.F("gold", result.TierCounts[scoring.TierGold]),
		logging.F("silver", result.TierCounts[scoring.TierSilver]),
		logging.F("bronze", result.TierCounts[scoring.TierBronze]),
		logging.F("no_match", result.TierCounts[scoring.TierNoMatch]),
		logging.F("failed_files", len(result.FailedFiles)),
	)

	return result, nil
}

// Progress returns the current progress tracker.
func (r *Runner) Progress() *Progress {
	return r.progress
}

// discoverFiles finds all .csv files at the given path.
func (r *Runner) discoverFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if strings.HasSuffix(strings.ToLower(path), ".csv") {
			absPath, err := filepath.Abs(path)
			if err != nil {
				return nil, err
			}
			return []string{absPath}, nil
		}
		return nil, fmt.Errorf("file is not a .csv file: %s", path)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".csv") {
			absPath, err := filepath.Abs(p)
			if err != nil {
				return err
			}
			files = append(files, absPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// runSequential processes files one at a time.
func (r *Runner) runSequential(ctx context.Context, files []string, fileRows [][]*scoring.ScoredRow, result *RunResult) {
	for i, file := range files {
		if ctx.Err() != nil {
			r.progress.Cancel()
			return
		}
		r.progress.SetCurrentFile(file)
		rows, err := r.scoreFile(ctx, file)
		r.recordOutcome(i, file, rows, err, fileRows, result)
	}
}

// runParallel processes files using a worker pool.
func (r *Runner) runParallel(ctx context.Context, files []string, fileRows [][]*scoring.ScoredRow, result *RunResult) {
	type job struct {
		index int
		file  string
	}
	type outcome struct {
		index int
		file  string
		rows  []*scoring.ScoredRow
		err   error
	}

	jobsCh := make(chan job, len(files))
	resultsCh := make(chan outcome, len(files))

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobsCh {
				if ctx.Err() != nil {
					resultsCh <- outcome{index: j.index, file: j.file, err: ctx.Err()}
					continue
				}
				r.progress.SetCurrentFile(j.file)
				rows, err := r.scoreFile(ctx, j.file)
				resultsCh <- outcome{index: j.index, file: j.file, rows: rows, err: err}
			}
		}()
	}

	for i, file := range files {
		jobsCh <- job{index: i, file: file}
	}
	close(jobsCh)

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	for o := range resultsCh {
		r.recordOutcome(o.index, o.file, o.rows, o.err, fileRows, result)
	}
}

// scoreFile extracts and scores all rows of one supplier file.
func (r *Runner) scoreFile(ctx context.Context, file string) ([]*scoring.ScoredRow, error) {
	raw, err := usage.ReadRawCSV(file)
	if err != nil {
		return nil, err
	}

	rows, err := r.extractor.Extract(raw, filepath.Base(file), "")
	if err != nil {
		return nil, err
	}

	scored := make([]*scoring.ScoredRow, 0, len(rows))
	for i := range rows {
		scored = append(scored, &scoring.ScoredRow{
			Row:    rows[i],
			Result: r.scorer.ScoreRow(&rows[i]),
		})
	}
	return scored, nil
}

// recordOutcome merges one file outcome into the shared result.
func (r *Runner) recordOutcome(index int, file string, rows []*scoring.ScoredRow, err error, fileRows [][]*scoring.ScoredRow, result *RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		result.FailedFiles = append(result.FailedFiles, FileError{
			FilePath: file,
			Error:    err.Error(),
		})
		r.progress.RecordFailed()
		r.logger.Warn("Failed to process file",
			logging.F("file", file),
			logging.Err(err),
		)
		return
	}

	fileRows[index] = rows
	r.progress.RecordFile(len(rows))
}
