package batch

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igorlobovc/claimsift/pkg/logging"
	"github.com/igorlobovc/claimsift/pkg/scoring"
)

// RunStore persists completed run summaries to the scoring_runs table.
type RunStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRunStore creates a run store.
func NewRunStore(pool *pgxpool.Pool, logger logging.Logger) *RunStore {
	return &RunStore{
		pool:   pool,
		logger: logger.With(logging.F("component", "run_store")),
	}
}

// RecordRun inserts one run summary.
func (s *RunStore) RecordRun(ctx context.Context, result *RunResult) error {
	query := `
		INSERT INTO scoring_runs (
			run_id, source_tag, total_files, total_rows,
			gold_count, silver_count, bronze_count, no_match_count,
			promoted_count, started_at, completed_at, success
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if _, err := s.pool.Exec(ctx, query,
		result.RunID, result.SourceTag, result.TotalFiles, result.TotalRows,
		result.TierCounts[scoring.TierGold],
		result.TierCounts[scoring.TierSilver],
		result.TierCounts[scoring.TierBronze],
		result.TierCounts[scoring.TierNoMatch],
		result.PromotedCount, result.StartedAt, result.CompletedAt, result.Success,
	); err != nil {
		s.logger.Error("Failed to record run", logging.Err(err), logging.F("run_id", result.RunID))
		return fmt.Errorf("record run: %w", err)
	}

	s.logger.Debug("Recorded run", logging.F("run_id", result.RunID))
	return nil
}
