package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/scoring"
)

// Review command flags.
var (
	reviewMinTier   string
	reviewWinsCap   int
	reviewPersonCap int
	reviewWinsOut   string
	reviewPersonOut string
)

// ReviewCommandDeps holds the dependencies for the review command.
type ReviewCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultReviewDeps returns the default dependencies for production use.
func DefaultReviewDeps() *ReviewCommandDeps {
	return &ReviewCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewReviewCommand creates the review command.
func NewReviewCommand(deps *ReviewCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultReviewDeps()
	}

	cmd := &cobra.Command{
		Use:   "review <scored-csv>",
		Short: "Build human review queues from scored rows",
		Long: `Build human review queues from scored rows.

Two queues are produced: wins at or above the minimum tier, and rows whose
person evidence or identifiers deserve a second look even when the scorer
abstained. Both are ranked best-first and independently capped.

Examples:
  claimsift review scored.csv --min-tier Silver \
    --wins-out wins.csv --person-out person_evidence.csv --wins-cap 200`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&reviewMinTier, "min-tier", string(scoring.TierSilver), "Minimum tier for the wins queue (Gold, Silver, Bronze)")
	cmd.Flags().IntVar(&reviewWinsCap, "wins-cap", 0, "Cap on the wins queue (0 = uncapped)")
	cmd.Flags().IntVar(&reviewPersonCap, "person-cap", 0, "Cap on the person-evidence queue (0 = uncapped)")
	cmd.Flags().StringVar(&reviewWinsOut, "wins-out", "", "Wins queue output CSV")
	cmd.Flags().StringVar(&reviewPersonOut, "person-out", "", "Person-evidence queue output CSV")

	return cmd
}

func runReview(cmd *cobra.Command, scoredPath string) error {
	rows, err := scoring.LoadScoredCSV(scoredPath)
	if err != nil {
		return err
	}

	minTier := scoring.ParseTier(reviewMinTier)
	if minTier == scoring.TierNoMatch {
		return fmt.Errorf("invalid --min-tier %q", reviewMinTier)
	}

	queues := scoring.BuildReviewQueues(rows, minTier, reviewWinsCap, reviewPersonCap)

	if reviewWinsOut != "" {
		if err := scoring.WriteScoredCSV(reviewWinsOut, queues.Wins); err != nil {
			return err
		}
	}
	if reviewPersonOut != "" {
		if err := scoring.WriteScoredCSV(reviewPersonOut, queues.PersonEvidence); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wins (>= %s): %d rows\nperson evidence: %d rows\n",
		minTier, len(queues.Wins), len(queues.PersonEvidence))
	return nil
}
