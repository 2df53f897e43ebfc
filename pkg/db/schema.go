package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL creates the tables claimsift persists: the reference truth
// catalog and the scoring-run ledger.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS reference_truth (
    id              BIGSERIAL PRIMARY KEY,
    title_raw       TEXT NOT NULL,
    title_norm      TEXT NOT NULL,
    isrc            TEXT NOT NULL DEFAULT '',
    iswc            TEXT NOT NULL DEFAULT '',
    evidence_tokens TEXT NOT NULL DEFAULT '',
    source          TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (title_norm, source)
);

CREATE INDEX IF NOT EXISTS idx_reference_truth_title_norm ON reference_truth (title_norm);
CREATE INDEX IF NOT EXISTS idx_reference_truth_isrc ON reference_truth (isrc) WHERE isrc <> '';
CREATE INDEX IF NOT EXISTS idx_reference_truth_iswc ON reference_truth (iswc) WHERE iswc <> '';

CREATE TABLE IF NOT EXISTS scoring_runs (
    run_id        TEXT PRIMARY KEY,
    source_tag    TEXT NOT NULL DEFAULT '',
    total_files   INTEGER NOT NULL,
    total_rows    INTEGER NOT NULL,
    gold_count    INTEGER NOT NULL,
    silver_count  INTEGER NOT NULL,
    bronze_count  INTEGER NOT NULL,
    no_match_count INTEGER NOT NULL,
    promoted_count INTEGER NOT NULL,
    started_at    TIMESTAMPTZ NOT NULL,
    completed_at  TIMESTAMPTZ NOT NULL,
    success       BOOLEAN NOT NULL
);
`

// EnsureSchema creates the claimsift tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("pool is nil")
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
