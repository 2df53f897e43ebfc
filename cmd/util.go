// Package cmd provides CLI commands for the claimsift tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/igorlobovc/claimsift/config"
	"github.com/igorlobovc/claimsift/pkg/headers"
	"github.com/igorlobovc/claimsift/pkg/logging"
	"github.com/igorlobovc/claimsift/pkg/scoring"
)

// newCommandLogger builds the logger commands share, honoring the config's
// debug switch.
func newCommandLogger(cfg *config.CLIConfig) logging.Logger {
	level := logging.LevelInfo
	if cfg != nil && cfg.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{
		Level:       level,
		ServiceName: "claimsift",
		JSONFormat:  false,
	})
}

// loadSynonymTable loads the header synonym table from an explicit flag path
// or the configured default.
func loadSynonymTable(flagPath string, cfg *config.CLIConfig) (*headers.SynonymTable, error) {
	path := flagPath
	if path == "" && cfg != nil {
		path = cfg.SynonymsPath
	}
	if path == "" {
		return nil, fmt.Errorf("no synonym table configured (use --synonyms or synonyms_path in config)")
	}
	return headers.LoadSynonymTable(path)
}

// loadScoringConfig loads the scoring config from an explicit flag path or
// the configured default.
func loadScoringConfig(flagPath string, cfg *config.CLIConfig) (*scoring.Config, error) {
	path := flagPath
	if path == "" && cfg != nil {
		path = cfg.ScoringPath
	}
	if path == "" {
		return nil, fmt.Errorf("no scoring config configured (use --scoring or scoring_path in config)")
	}
	return scoring.LoadConfig(path)
}

// writeJSON renders v as indented JSON to w.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
