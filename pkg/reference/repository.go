package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igorlobovc/claimsift/pkg/logging"
)

// Repository provides database operations for the reference truth table.
type Repository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRepository creates a new reference truth repository.
func NewRepository(pool *pgxpool.Pool, logger logging.Logger) *Repository {
	return &Repository{
		pool:   pool,
		logger: logger.With(logging.F("component", "reference_repository")),
	}
}

// LoadAll fetches every reference truth entry, in insertion order. Insertion
// order matters: scorer tie-breaks on first-indexed entry.
func (r *Repository) LoadAll(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT title_raw, title_norm, isrc, iswc, evidence_tokens, source
		FROM reference_truth
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reference truth: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TitleRaw, &e.TitleNorm, &e.ISRC, &e.ISWC, &e.EvidenceTokens, &e.Source); err != nil {
			return nil, fmt.Errorf("scan reference entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference truth: %w", err)
	}

	r.logger.Debug("Loaded reference truth", logging.F("entries", len(entries)))
	return entries, nil
}

// UpsertEntry inserts or updates one reference truth entry keyed by
// normalized title + source.
func (r *Repository) UpsertEntry(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO reference_truth (
			title_raw, title_norm, isrc, iswc, evidence_tokens, source,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (title_norm, source) DO UPDATE SET
			title_raw = EXCLUDED.title_raw,
			isrc = EXCLUDED.isrc,
			iswc = EXCLUDED.iswc,
			evidence_tokens = EXCLUDED.evidence_tokens,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query,
		e.TitleRaw, e.TitleNorm, e.ISRC, e.ISWC, e.EvidenceTokens, e.Source,
	); err != nil {
		r.logger.Error("Failed to upsert reference entry",
			logging.Err(err),
			logging.F("title_norm", e.TitleNorm))
		return fmt.Errorf("upsert reference entry: %w", err)
	}
	return nil
}

// UpsertBatch upserts entries inside one transaction.
func (r *Repository) UpsertBatch(ctx context.Context, entries []Entry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin reference upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reference_truth (
			title_raw, title_norm, isrc, iswc, evidence_tokens, source,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (title_norm, source) DO UPDATE SET
			title_raw = EXCLUDED.title_raw,
			isrc = EXCLUDED.isrc,
			iswc = EXCLUDED.iswc,
			evidence_tokens = EXCLUDED.evidence_tokens,
			updated_at = NOW()
	`

	for i := range entries {
		e := &entries[i]
		if _, err := tx.Exec(ctx, query,
			e.TitleRaw, e.TitleNorm, e.ISRC, e.ISWC, e.EvidenceTokens, e.Source,
		); err != nil {
			return fmt.Errorf("upsert reference entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reference upsert: %w", err)
	}

	r.logger.Info("Upserted reference truth batch", logging.F("entries", len(entries)))
	return nil
}

// CountBySource returns entry counts grouped by provenance source tag.
func (r *Repository) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT source, COUNT(*)
		FROM reference_truth
		GROUP BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("count reference truth: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		counts[source] = n
	}
	return counts, rows.Err()
}
