// Package scoring decides, per usage row, whether it matches the reference
// catalog and at what confidence tier, and ranks scored rows for sweeps and
// review queues. The design bias throughout: false positives are worse than
// false negatives, so ambiguous evidence always abstains.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	cserrors "github.com/igorlobovc/claimsift/pkg/errors"
	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// DefaultMinTitleLenForBronze is the minimum normalized title length for a
// title-only Bronze match. Short common titles match by accident too often.
const DefaultMinTitleLenForBronze = 8

// Config holds the business-rule knobs of the scorer. These are tuned
// empirically per catalog and always come from configuration.
type Config struct {
	// GoldTokens are substrings that strengthen a title-based match when
	// found anywhere in the row text.
	GoldTokens []string

	// NegativeTitleTriggers are title substrings that are commonly false
	// positives; they suppress title-only matches unless a gold token
	// corroborates.
	NegativeTitleTriggers []string

	// MinTitleLenForBronze gates the title-only Bronze tier.
	MinTitleLenForBronze int
}

// rawConfig mirrors the YAML shape. Pointer slices distinguish "key absent"
// from "key present but empty": an absent token list is a misconfiguration
// and must refuse to run, an empty one is an explicit choice.
type rawConfig struct {
	GoldTokens            *[]string `yaml:"gold_tokens"`
	NegativeTitleTriggers *[]string `yaml:"negative_title_triggers"`
	MinTitleLenForBronze  *int      `yaml:"min_title_len_for_bronze"`
}

// LoadConfig reads and validates the scoring config YAML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("scoring config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses and validates scoring config YAML.
func ParseConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", cserrors.ErrConfigInvalid, err)
	}

	if raw.GoldTokens == nil {
		return nil, fmt.Errorf("%w: gold_tokens key is required", cserrors.ErrConfigInvalid)
	}
	if raw.NegativeTitleTriggers == nil {
		return nil, fmt.Errorf("%w: negative_title_triggers key is required", cserrors.ErrConfigInvalid)
	}

	cfg := &Config{
		GoldTokens:            *raw.GoldTokens,
		NegativeTitleTriggers: *raw.NegativeTitleTriggers,
		MinTitleLenForBronze:  DefaultMinTitleLenForBronze,
	}
	if raw.MinTitleLenForBronze != nil {
		if *raw.MinTitleLenForBronze < 0 {
			return nil, fmt.Errorf("%w: min_title_len_for_bronze must be >= 0", cserrors.ErrConfigInvalid)
		}
		cfg.MinTitleLenForBronze = *raw.MinTitleLenForBronze
	}
	return cfg, nil
}

// normalizedTokens returns the non-empty normalized forms of a token list.
func normalizedTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if n := textnorm.Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}
