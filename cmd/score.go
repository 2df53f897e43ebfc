package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/batch"
	"github.com/igorlobovc/claimsift/pkg/db"
	"github.com/igorlobovc/claimsift/pkg/logging"
	"github.com/igorlobovc/claimsift/pkg/overrides"
	"github.com/igorlobovc/claimsift/pkg/reference"
	"github.com/igorlobovc/claimsift/pkg/scoring"
	"github.com/igorlobovc/claimsift/pkg/usage"
)

// Score command flags.
var (
	scoreReference   string
	scoreSynonyms    string
	scoreScoring     string
	scoreOverrides   string
	scoreOut         string
	scoreSummary     string
	scoreSourceTag   string
	scoreConcurrency int
	scorePromote     bool
	scoreNoise       bool
	scoreUseDB       bool
)

// ScoreCommandDeps holds the dependencies for the score command.
type ScoreCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)

	// LoadReference overrides reference loading, used by tests.
	LoadReference func(ctx context.Context, cfg *config.CLIConfig, logger logging.Logger) ([]reference.Entry, error)
}

// DefaultScoreDeps returns the default dependencies for production use.
func DefaultScoreDeps() *ScoreCommandDeps {
	return &ScoreCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewScoreCommand creates the score command.
func NewScoreCommand(deps *ScoreCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultScoreDeps()
	}

	cmd := &cobra.Command{
		Use:   "score <input-csv-or-dir>",
		Short: "Score supplier usage rows against the reference truth",
		Long: `Score supplier usage rows against the reference truth catalog.

Every input row gets a confidence tier (Gold, Silver, Bronze, NoMatch) with
the evidence flags behind the decision. Rows that cannot be matched safely
abstain rather than guess.

Examples:
  # Score one supplier file against a reference CSV
  claimsift score relatorio.csv --reference truth.csv --out scored.csv

  # Score a directory with entity override promotion
  claimsift score ./fornecedores --reference truth.csv \
    --overrides entities.csv --promote --out scored.csv --summary run.json

  # Load the reference truth from Postgres
  claimsift score relatorio.csv --reference-db --out scored.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, deps, args[0])
		},
	}

	cmd.Flags().StringVar(&scoreReference, "reference", "", "Reference truth CSV path")
	cmd.Flags().BoolVar(&scoreUseDB, "reference-db", false, "Load reference truth from Postgres")
	cmd.Flags().StringVar(&scoreSynonyms, "synonyms", "", "Header synonym table YAML")
	cmd.Flags().StringVar(&scoreScoring, "scoring", "", "Scoring config YAML")
	cmd.Flags().StringVar(&scoreOverrides, "overrides", "", "Entity override CSV")
	cmd.Flags().StringVar(&scoreOut, "out", "", "Scored rows output CSV")
	cmd.Flags().StringVar(&scoreSummary, "summary", "", "Run summary output JSON")
	cmd.Flags().StringVar(&scoreSourceTag, "source-tag", "", "Supplier batch tag for events and summaries")
	cmd.Flags().IntVar(&scoreConcurrency, "concurrency", 0, "Worker count (default from config)")
	cmd.Flags().BoolVar(&scorePromote, "promote", false, "Promote title-anchored entity hits to Silver")
	cmd.Flags().BoolVar(&scoreNoise, "noise-controls", false, "Apply per-entity coevidence and cap filters")

	return cmd
}

func runScore(cmd *cobra.Command, deps *ScoreCommandDeps, input string) error {
	cfg := deps.Config
	if cfg == nil {
		loaded, err := deps.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logger := newCommandLogger(cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	table, err := loadSynonymTable(scoreSynonyms, cfg)
	if err != nil {
		return err
	}
	scoringCfg, err := loadScoringConfig(scoreScoring, cfg)
	if err != nil {
		return err
	}

	entries, pool, err := loadReferenceEntries(ctx, deps, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer db.Close(pool)
	}
	idx := reference.BuildIndex(entries)
	logger.Info("Reference index built",
		logging.F("entries", idx.Size()),
		logging.F("titles", idx.Titles()),
	)

	var engine *overrides.Engine
	overridesPath := scoreOverrides
	if overridesPath == "" {
		overridesPath = cfg.OverridesPath
	}
	if overridesPath != "" {
		ents, err := overrides.LoadOverrides(overridesPath)
		if err != nil {
			return err
		}
		engine = overrides.NewEngine(ents)
		logger.Info("Entity overrides loaded", logging.F("entities", len(ents)))
	}

	var publisher *batch.Publisher
	if cfg.Redis.Enabled {
		publisher, err = batch.NewPublisherFromConfig(batch.PublisherConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return err
		}
	}

	concurrency := scoreConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}

	runner := batch.NewRunner(
		usage.NewExtractor(table, nil, logger),
		scoring.NewScorer(idx, scoringCfg),
		engine,
		publisher,
		nil,
		logger,
		batch.RunnerConfig{
			Concurrency:   concurrency,
			SourceTag:     scoreSourceTag,
			Promote:       scorePromote,
			NoiseControls: scoreNoise,
		},
	)

	result, err := runner.Run(ctx, input)
	if err != nil {
		return err
	}

	if pool != nil {
		if err := batch.NewRunStore(pool, logger).RecordRun(ctx, result); err != nil {
			logger.Warn("Run summary not recorded", logging.Err(err))
		}
	}

	if scoreOut != "" {
		if err := scoring.WriteScoredCSV(scoreOut, result.Rows); err != nil {
			return err
		}
	}
	if scoreSummary != "" {
		if err := batch.WriteSummary(scoreSummary, result); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: %d rows from %d files (gold %d, silver %d, bronze %d, no-match %d)\n",
		result.RunID, result.TotalRows, result.TotalFiles,
		result.TierCounts[scoring.TierGold],
		result.TierCounts[scoring.TierSilver],
		result.TierCounts[scoring.TierBronze],
		result.TierCounts[scoring.TierNoMatch],
	)
	if result.PromotedCount > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "promoted by entity overrides: %d\n", result.PromotedCount)
	}
	for _, fe := range result.FailedFiles {
		fmt.Fprintf(cmd.OutOrStdout(), "failed: %s: %s\n", fe.FilePath, fe.Error)
	}
	if !result.Success {
		return fmt.Errorf("no input file could be processed")
	}
	return nil
}

// loadReferenceEntries loads the reference truth from the configured source:
// a test hook, Postgres, or a CSV file. When Postgres backs the load, the
// open pool is returned so the run summary can be recorded on it; the caller
// owns closing it.
func loadReferenceEntries(ctx context.Context, deps *ScoreCommandDeps, cfg *config.CLIConfig, logger logging.Logger) ([]reference.Entry, *pgxpool.Pool, error) {
	if deps.LoadReference != nil {
		entries, err := deps.LoadReference(ctx, cfg, logger)
		return entries, nil, err
	}

	if scoreUseDB {
		pool, err := connectConfiguredDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			db.Close(pool)
			return nil, nil, err
		}
		entries, err := reference.NewRepository(pool, logger).LoadAll(ctx)
		if err != nil {
			db.Close(pool)
			return nil, nil, err
		}
		return entries, pool, nil
	}

	path := scoreReference
	if path == "" {
		path = cfg.ReferencePath
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no reference truth configured (use --reference, --reference-db, or reference_path in config)")
	}
	entries, err := reference.LoadCSV(path)
	return entries, nil, err
}

// connectConfiguredDB opens a pool from the CLI config's database section.
func connectConfiguredDB(ctx context.Context, cfg *config.CLIConfig) (*pgxpool.Pool, error) {
	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("database settings are not enabled in config")
	}
	dbCfg := db.DefaultConfig()
	dbCfg.Host = cfg.Database.Host
	if cfg.Database.Port != 0 {
		dbCfg.Port = cfg.Database.Port
	}
	if cfg.Database.Database != "" {
		dbCfg.Database = cfg.Database.Database
	}
	if cfg.Database.User != "" {
		dbCfg.User = cfg.Database.User
	}
	dbCfg.Password = cfg.Database.Password
	if cfg.Database.SSLMode != "" {
		dbCfg.SSLMode = cfg.Database.SSLMode
	}
	return db.Connect(ctx, dbCfg)
}
