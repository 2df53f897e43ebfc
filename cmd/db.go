package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/db"
	"github.com/igorlobovc/claimsift/pkg/reference"
)

// DbCommandDeps holds the dependencies for the db command.
type DbCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultDbDeps returns the default dependencies for production use.
func DefaultDbDeps() *DbCommandDeps {
	return &DbCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewDbCommand creates the db command with its subcommands.
func NewDbCommand(deps *DbCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDbDeps()
	}

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the reference truth database",
		Long: `Manage the Postgres database backing the reference truth catalog.

Examples:
  claimsift db init
  claimsift db load truth.csv
  claimsift db status`,
	}

	cmd.AddCommand(
		newDbInitCommand(deps),
		newDbLoadCommand(deps),
		newDbStatusCommand(deps),
	)

	return cmd
}

func newDbInitCommand(deps *DbCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the claimsift tables if they do not exist",
		Long:  "Create the reference_truth and scoring_runs tables if they do not exist.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfiguredDB(cmd, deps, func(ctx context.Context, cfg *config.CLIConfig, pool *pgxpool.Pool) error {
				if err := db.EnsureSchema(ctx, pool); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
				return nil
			})
		},
	}
}

func newDbLoadCommand(deps *DbCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "load <reference-csv>",
		Short: "Load a reference truth CSV into Postgres",
		Long: `Load a reference truth CSV into Postgres.

Existing entries are updated in place; (title_norm, source) identifies an
entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfiguredDB(cmd, deps, func(ctx context.Context, cfg *config.CLIConfig, pool *pgxpool.Pool) error {
				entries, err := reference.LoadCSV(args[0])
				if err != nil {
					return err
				}
				if err := db.EnsureSchema(ctx, pool); err != nil {
					return err
				}
				repo := reference.NewRepository(pool, newCommandLogger(cfg))
				if err := repo.UpsertBatch(ctx, entries); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %d entries from %s\n", len(entries), args[0])
				return nil
			})
		},
	}
}

func newDbStatusCommand(deps *DbCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report connection health and reference truth counts",
		Long:  "Report database connection health, pool usage, and reference truth entry counts per source.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfiguredDB(cmd, deps, func(ctx context.Context, cfg *config.CLIConfig, pool *pgxpool.Pool) error {
				out := cmd.OutOrStdout()

				status := db.Check(ctx, pool)
				if !status.Healthy {
					return fmt.Errorf("database unhealthy: %v", status.Error)
				}
				fmt.Fprintf(out, "healthy (ping %s, conns %d total / %d idle / %d acquired)\n",
					status.Latency.Round(0), status.TotalConns, status.IdleConns, status.AcquiredConns)

				counts, err := reference.NewRepository(pool, newCommandLogger(cfg)).CountBySource(ctx)
				if err != nil {
					return err
				}
				total := 0
				sources := make([]string, 0, len(counts))
				for s, n := range counts {
					sources = append(sources, s)
					total += n
				}
				sort.Strings(sources)
				fmt.Fprintf(out, "reference truth: %d entries\n", total)
				for _, s := range sources {
					name := s
					if name == "" {
						name = "(unsourced)"
					}
					fmt.Fprintf(out, "  %s: %d\n", name, counts[s])
				}
				return nil
			})
		},
	}
}

// withConfiguredDB loads config, opens the configured pool, runs fn, and
// closes the pool.
func withConfiguredDB(cmd *cobra.Command, deps *DbCommandDeps, fn func(context.Context, *config.CLIConfig, *pgxpool.Pool) error) error {
	cfg := deps.Config
	if cfg == nil {
		loaded, err := deps.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := connectConfiguredDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(pool)

	return fn(ctx, cfg, pool)
}
