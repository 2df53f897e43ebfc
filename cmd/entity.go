package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/overrides"
	"github.com/igorlobovc/claimsift/pkg/scoring"
)

// Entity command flags.
var (
	entityOverridesPath  string
	entityIncludeColumns string
	entityOut            string
	entityStatsOut       string
	entityPromote        bool
	entityNoise          bool
)

// EntityCommandDeps holds the dependencies for the entity command.
type EntityCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultEntityDeps returns the default dependencies for production use.
func DefaultEntityDeps() *EntityCommandDeps {
	return &EntityCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewEntityCommand creates the entity command.
func NewEntityCommand(deps *EntityCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultEntityDeps()
	}

	cmd := &cobra.Command{
		Use:   "entity <scored-csv>",
		Short: "Annotate scored rows with entity override hits",
		Long: `Run the entity override pass over scored rows.

Configured entities are searched across the person and title fields of every
row. Hits are annotated with priority and provenance, and per-entity hit
statistics are reported. With --promote, title-anchored hits are lifted to
at least Silver; a bare name hit never changes tier.

Examples:
  claimsift entity scored.csv --overrides entities.csv --out annotated.csv

  # Promotion plus noise controls, with per-entity stats
  claimsift entity scored.csv --overrides entities.csv \
    --promote --noise-controls --stats-out entity_stats.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntity(cmd, deps, args[0])
		},
	}

	cmd.Flags().StringVar(&entityOverridesPath, "overrides", "", "Entity override CSV")
	cmd.Flags().StringVar(&entityIncludeColumns, "include-columns", "", "Regex of extra passthrough columns to scan")
	cmd.Flags().StringVar(&entityOut, "out", "", "Annotated rows output CSV")
	cmd.Flags().StringVar(&entityStatsOut, "stats-out", "", "Per-entity stats output CSV")
	cmd.Flags().BoolVar(&entityPromote, "promote", false, "Promote title-anchored entity hits to Silver")
	cmd.Flags().BoolVar(&entityNoise, "noise-controls", false, "Apply per-entity coevidence and cap filters")

	return cmd
}

func runEntity(cmd *cobra.Command, deps *EntityCommandDeps, scoredPath string) error {
	cfg := deps.Config
	if cfg == nil {
		loaded, err := deps.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
	}

	overridesPath := entityOverridesPath
	if overridesPath == "" {
		overridesPath = cfg.OverridesPath
	}
	if overridesPath == "" {
		return fmt.Errorf("no entity overrides configured (use --overrides or overrides_path in config)")
	}

	ents, err := overrides.LoadOverrides(overridesPath)
	if err != nil {
		return err
	}

	opts := []overrides.Option{}
	if entityIncludeColumns != "" {
		opt, err := overrides.WithIncludeColumns(entityIncludeColumns)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}
	engine := overrides.NewEngine(ents, opts...)

	rows, err := scoring.LoadScoredCSV(scoredPath)
	if err != nil {
		return err
	}

	stats := engine.Annotate(rows)
	promoted := 0
	if entityPromote {
		promoted = overrides.Promote(rows)
	}
	if entityNoise {
		rows = engine.ApplyNoiseControls(rows)
	}

	if entityOut != "" {
		if err := scoring.WriteScoredCSV(entityOut, rows); err != nil {
			return err
		}
	}
	if entityStatsOut != "" {
		if err := writeEntityStatsCSV(entityStatsOut, stats); err != nil {
			return err
		}
	}

	hitRows := 0
	for _, sr := range rows {
		if sr.EntityOverrideHit {
			hitRows++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "entities: %d, rows with hits: %d of %d\n",
		len(ents), hitRows, len(rows))
	if entityPromote {
		fmt.Fprintf(cmd.OutOrStdout(), "promoted: %d\n", promoted)
	}

	statKeys := make([]string, 0, len(stats))
	for k := range stats {
		statKeys = append(statKeys, k)
	}
	sort.Strings(statKeys)
	for _, k := range statKeys {
		st := stats[k]
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s, priority %d): %d hits [%s]\n",
			st.EntityNorm, st.EntityType, st.Priority, st.HitCount, st.BreakdownString())
	}
	return nil
}

// writeEntityStatsCSV writes the per-entity hit statistics.
func writeEntityStatsCSV(path string, stats map[string]*overrides.EntityStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create entity stats csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"entity_norm", "entity_type", "priority",
		"requires_coevidence", "per_term_cap", "hit_count", "hit_field_breakdown",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write entity stats header: %w", err)
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		st := stats[k]
		capValue := ""
		if st.PerTermCap > 0 {
			capValue = strconv.Itoa(st.PerTermCap)
		}
		rec := []string{
			st.EntityNorm, st.EntityType, strconv.Itoa(st.Priority),
			strconv.FormatBool(st.RequiresCoevidence), capValue,
			strconv.Itoa(st.HitCount), st.BreakdownString(),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write entity stats row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
