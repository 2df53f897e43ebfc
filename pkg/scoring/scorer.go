package scoring

import (
	"strings"

	"github.com/igorlobovc/claimsift/pkg/reference"
	"github.com/igorlobovc/claimsift/pkg/textnorm"
	"github.com/igorlobovc/claimsift/pkg/usage"
)

// Tier is the confidence tier of a match.
type Tier string

const (
	TierGold    Tier = "Gold"
	TierSilver  Tier = "Silver"
	TierBronze  Tier = "Bronze"
	TierNoMatch Tier = "NoMatch"
)

// Weight orders tiers for ranking. Unknown tiers sort below everything.
func (t Tier) Weight() int {
	switch t {
	case TierGold:
		return 3
	case TierSilver:
		return 2
	case TierBronze:
		return 1
	default:
		return 0
	}
}

// ParseTier maps a tier name to its Tier, defaulting to NoMatch.
func ParseTier(s string) Tier {
	switch strings.TrimSpace(s) {
	case string(TierGold):
		return TierGold
	case string(TierSilver):
		return TierSilver
	case string(TierBronze):
		return TierBronze
	default:
		return TierNoMatch
	}
}

// Evidence flags name the individual signals behind a decision, in the order
// they were observed. They make every tier assignment auditable.
const (
	FlagISRCMatch              = "ISRC_MATCH"
	FlagISWCMatch              = "ISWC_MATCH"
	FlagTitleExact             = "TITLE_EXACT"
	FlagGoldTokenHit           = "GOLD_TOKEN_HIT"
	FlagNegativeTitleTrigger   = "NEGATIVE_TITLE_TRIGGER"
	FlagArtistTokenOverlap     = "ARTIST_TOKEN_OVERLAP"
	FlagArtistPresentNoSupport = "ARTIST_PRESENT_NO_SUPPORT"
)

// minEvidenceTokenLen filters out short stopword-like tokens when comparing
// row person text against reference evidence tokens.
const minEvidenceTokenLen = 3

// Result is the scoring outcome for a single row.
type Result struct {
	Tier          Tier
	Matched       bool
	RefMatchCount int
	EvidenceFlags []string

	// Fields of the backing reference entry, empty when no entry backs
	// the decision.
	RefTitleNorm string
	RefISRC      string
	RefISWC      string
}

// HasFlag reports whether the result carries the named evidence flag.
func (r *Result) HasFlag(name string) bool {
	for _, f := range r.EvidenceFlags {
		if f == name {
			return true
		}
	}
	return false
}

// FlagString renders the flags in observation order for CSV output.
func (r *Result) FlagString() string {
	return strings.Join(r.EvidenceFlags, ";")
}

// Scorer scores usage rows against a reference index.
type Scorer struct {
	idx *reference.Index
	cfg *Config

	goldTokens  []string
	negTriggers []string
}

// NewScorer builds a scorer. Token lists are normalized once up front.
func NewScorer(idx *reference.Index, cfg *Config) *Scorer {
	return &Scorer{
		idx:         idx,
		cfg:         cfg,
		goldTokens:  normalizedTokens(cfg.GoldTokens),
		negTriggers: normalizedTokens(cfg.NegativeTitleTriggers),
	}
}

// ScoreRow applies the tier decision procedure to one row.
//
// Evidence is consulted strongest-first: a valid catalog identifier settles
// the row outright, then exact-title plus person corroboration, then
// title-only. A row whose person text contradicts every candidate abstains
// rather than guessing.
func (s *Scorer) ScoreRow(row *usage.Row) Result {
	titleNorm := textnorm.Normalize(row.Title)
	allText := textnorm.Normalize(row.AllText())

	goldHit := containsAny(allText, s.goldTokens)
	negHit := containsAny(titleNorm, s.negTriggers)

	var flags []string
	if goldHit {
		flags = append(flags, FlagGoldTokenHit)
	}
	if negHit {
		flags = append(flags, FlagNegativeTitleTrigger)
	}

	// Identifier evidence trumps everything else. Malformed identifiers
	// were already dropped at extraction, so any value here has valid
	// shape; it still has to be present in the index to count.
	if isrc := reference.CleanISRC(row.ISRC); isrc != "" {
		if entries := s.idx.ByISRC(isrc); len(entries) > 0 {
			return idResult(entries, FlagISRCMatch)
		}
	}
	if iswc := reference.CleanISWC(row.ISWC); iswc != "" {
		if entries := s.idx.ByISWC(iswc); len(entries) > 0 {
			return idResult(entries, FlagISWCMatch)
		}
	}

	cands := s.idx.ByTitleNorm(titleNorm)
	if len(cands) == 0 {
		return Result{Tier: TierNoMatch, EvidenceFlags: flags}
	}

	flags = append(flags, FlagTitleExact)

	if negHit && !goldHit {
		return Result{
			Tier:          TierNoMatch,
			RefMatchCount: len(cands),
			EvidenceFlags: flags,
		}
	}

	personNorm := textnorm.Normalize(row.PersonText())
	if personNorm != "" {
		best, overlap := bestPersonOverlap(personNorm, cands)
		if overlap == 0 {
			flags = append(flags, FlagArtistPresentNoSupport)
			return Result{
				Tier:          TierNoMatch,
				RefMatchCount: len(cands),
				EvidenceFlags: flags,
			}
		}
		flags = append(flags, FlagArtistTokenOverlap)
		tier := TierSilver
		if goldHit {
			tier = TierGold
		}
		return backedResult(tier, best, len(cands), flags)
	}

	if len(titleNorm) >= s.cfg.MinTitleLenForBronze {
		tier := TierBronze
		if goldHit {
			tier = TierGold
		}
		return backedResult(tier, cands[0], len(cands), flags)
	}

	return Result{
		Tier:          TierNoMatch,
		RefMatchCount: len(cands),
		EvidenceFlags: flags,
	}
}

// bestPersonOverlap returns the candidate with the largest token overlap
// between the row's person text and the candidate's evidence tokens. Ties
// keep the earlier candidate, which follows catalog insertion order.
func bestPersonOverlap(personNorm string, cands []*reference.Entry) (*reference.Entry, int) {
	personTokens := textnorm.TokenSet(personNorm, minEvidenceTokenLen)
	best := cands[0]
	bestOverlap := 0
	for _, c := range cands {
		overlap := 0
		for tok := range c.EvidenceTokenSet(minEvidenceTokenLen) {
			if _, ok := personTokens[tok]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best = c
			bestOverlap = overlap
		}
	}
	return best, bestOverlap
}

func idResult(entries []*reference.Entry, flag string) Result {
	return backedResult(TierGold, entries[0], len(entries), []string{flag})
}

func backedResult(tier Tier, e *reference.Entry, count int, flags []string) Result {
	return Result{
		Tier:          tier,
		Matched:       true,
		RefMatchCount: count,
		EvidenceFlags: flags,
		RefTitleNorm:  e.TitleNorm,
		RefISRC:       e.ISRC,
		RefISWC:       e.ISWC,
	}
}

func containsAny(haystack string, needles []string) bool {
	if haystack == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
