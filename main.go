// Package main provides the claimsift CLI entry point.
// claimsift scores supplier usage reports against a reference truth catalog
// and routes the results into sweeps, review queues, and slices.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/cmd"
	"github.com/igorlobovc/claimsift/pkg/buildinfo"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "claimsift",
	Short: "Match supplier usage reports against a reference catalog",
	Long: `claimsift matches heterogeneous supplier usage reports against a
canonical reference catalog at tiered confidence.

Every row receives a tier (Gold, Silver, Bronze, NoMatch) and the evidence
flags behind the decision; ambiguous rows abstain rather than guess. Scored
output feeds catalog sweeps, human review queues, and sure-term slices.

COMMON WORKFLOW:
  Score a batch:   claimsift score ./fornecedores --reference truth.csv --out scored.csv
  Rank and select: claimsift sweep scored.csv --top 500 --out sweep.csv
  Review queues:   claimsift review scored.csv --wins-out wins.csv
  Entity pass:     claimsift entity scored.csv --overrides entities.csv --promote
  Inspect headers: claimsift fields --sample relatorio.csv`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprintf(c.OutOrStdout(), "claimsift %s\n", buildinfo.String())
	},
}

func init() {
	rootCmd.AddCommand(
		cmd.NewScoreCommand(nil),
		cmd.NewSweepCommand(nil),
		cmd.NewReviewCommand(nil),
		cmd.NewSliceCommand(nil),
		cmd.NewEntityCommand(nil),
		cmd.NewFieldsCommand(nil),
		cmd.NewDbCommand(nil),
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
