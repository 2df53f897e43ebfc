package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/scoring"
)

// Slice command flags.
var (
	sliceTerms string
	sliceOut   string
)

// SliceCommandDeps holds the dependencies for the slice command.
type SliceCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultSliceDeps returns the default dependencies for production use.
func DefaultSliceDeps() *SliceCommandDeps {
	return &SliceCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewSliceCommand creates the slice command.
func NewSliceCommand(deps *SliceCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultSliceDeps()
	}

	cmd := &cobra.Command{
		Use:   "slice <scored-csv>",
		Short: "Filter scored rows by vetted sure terms",
		Long: `Filter scored rows down to the ones mentioning vetted sure terms.

The sure-terms CSV may carry term,kind columns (kind TITLE, PERSON, or ORG)
or be a bare single column of title terms. Output is a compact review sheet
with a numeric tier score and the terms that selected each row.

Examples:
  claimsift slice scored.csv --terms sure_terms.csv --out slice.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlice(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&sliceTerms, "terms", "", "Sure terms CSV (required)")
	cmd.Flags().StringVar(&sliceOut, "out", "", "Slice output CSV")
	_ = cmd.MarkFlagRequired("terms")

	return cmd
}

func runSlice(cmd *cobra.Command, scoredPath string) error {
	rows, err := scoring.LoadScoredCSV(scoredPath)
	if err != nil {
		return err
	}
	terms, err := scoring.LoadSureTerms(sliceTerms)
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		return fmt.Errorf("no usable sure terms in %s", sliceTerms)
	}

	hits := scoring.SliceByTerms(rows, terms)

	if sliceOut != "" {
		if err := writeSliceCSV(sliceOut, hits); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "slice: %d of %d rows matched %d terms\n",
		len(hits), len(rows), len(terms))
	return nil
}

// writeSliceCSV writes the compact review sheet for a sure-term slice.
func writeSliceCSV(path string, hits []scoring.SliceHit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create slice csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"source_file", "row_id", "title", "artist", "author",
		"match_tier", "tier_score", "evidence_flags", "matched_terms",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write slice header: %w", err)
	}
	for _, h := range hits {
		rec := []string{
			h.Row.Row.SourceFile, h.Row.Row.RowID,
			h.Row.Row.Title, h.Row.Row.Artist, h.Row.Row.Author,
			string(h.Row.Result.Tier),
			strconv.Itoa(h.Row.Result.Tier.Weight()),
			h.Row.Result.FlagString(),
			strings.Join(h.Terms, ";"),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write slice row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
