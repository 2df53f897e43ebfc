package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/scoring"
)

// Sweep command flags.
var (
	sweepTop    int
	sweepOut    string
	sweepOutput string
)

// SweepCommandDeps holds the dependencies for the sweep command.
type SweepCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultSweepDeps returns the default dependencies for production use.
func DefaultSweepDeps() *SweepCommandDeps {
	return &SweepCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// sweepSummary is the machine-readable sweep report.
type sweepSummary struct {
	TotalRows  int            `json:"total_rows"`
	TierCounts map[string]int `json:"tier_counts"`
	TopTitles  []countEntry   `json:"top_ref_titles"`
	TopIDKeys  []countEntry   `json:"top_ref_id_keys"`
	Selected   int            `json:"selected"`
}

type countEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(deps *SweepCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultSweepDeps()
	}

	cmd := &cobra.Command{
		Use:   "sweep <scored-csv>",
		Short: "Rank scored rows best-first and report catalog coverage",
		Long: `Rank scored rows best-first and report catalog coverage.

Rows are ordered by tier, reference-backed identifiers, any identifier, and
evidence richness, then the strongest candidates are selected for assertion.

Examples:
  # Top 500 candidates with a coverage summary
  claimsift sweep scored.csv --top 500 --out sweep.csv

  # JSON summary for downstream tooling
  claimsift sweep scored.csv --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, deps, args[0])
		},
	}

	cmd.Flags().IntVar(&sweepTop, "top", 0, "Keep only the best N rows (0 = all)")
	cmd.Flags().StringVar(&sweepOut, "out", "", "Selected rows output CSV")
	cmd.Flags().StringVar(&sweepOutput, "output", "", "Summary format: text or json")

	return cmd
}

func runSweep(cmd *cobra.Command, deps *SweepCommandDeps, scoredPath string) error {
	rows, err := scoring.LoadScoredCSV(scoredPath)
	if err != nil {
		return err
	}

	summary := sweepSummary{
		TotalRows:  len(rows),
		TierCounts: make(map[string]int),
	}
	titleCounts := make(map[string]int)
	idCounts := make(map[string]int)
	for _, sr := range rows {
		summary.TierCounts[string(sr.Result.Tier)]++
		if sr.Result.Matched && sr.Result.RefTitleNorm != "" {
			titleCounts[sr.Result.RefTitleNorm]++
		}
		if sr.Result.RefISRC != "" {
			idCounts[sr.Result.RefISRC]++
		}
		if sr.Result.RefISWC != "" {
			idCounts[sr.Result.RefISWC]++
		}
	}
	summary.TopTitles = topCounts(titleCounts, 10)
	summary.TopIDKeys = topCounts(idCounts, 10)

	scoring.SortBestFirst(rows)
	selected := scoring.TopN(rows, sweepTop)
	summary.Selected = len(selected)

	if sweepOut != "" {
		if err := scoring.WriteScoredCSV(sweepOut, selected); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	format := config.OutputFormat(sweepOutput)
	if format == "" && deps.Config != nil {
		format = deps.Config.OutputFormat
	}
	if format == config.OutputFormatJSON {
		return writeJSON(out, summary)
	}

	fmt.Fprintf(out, "rows: %d, selected: %d\n", summary.TotalRows, summary.Selected)
	for _, tier := range []scoring.Tier{scoring.TierGold, scoring.TierSilver, scoring.TierBronze, scoring.TierNoMatch} {
		if n := summary.TierCounts[string(tier)]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", tier, n)
		}
	}
	if len(summary.TopTitles) > 0 {
		fmt.Fprintln(out, "top reference titles:")
		for _, e := range summary.TopTitles {
			fmt.Fprintf(out, "  %6d  %s\n", e.Count, e.Key)
		}
	}
	if len(summary.TopIDKeys) > 0 {
		fmt.Fprintln(out, "top reference ID keys:")
		for _, e := range summary.TopIDKeys {
			fmt.Fprintf(out, "  %6d  %s\n", e.Count, e.Key)
		}
	}
	return nil
}

// topCounts returns the n most frequent keys, count descending then key
// ascending for a stable report.
func topCounts(counts map[string]int, n int) []countEntry {
	entries := make([]countEntry, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, countEntry{Key: k, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
