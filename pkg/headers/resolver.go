package headers

import (
	"sort"
	"strings"

	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// Candidate scores for header/synonym agreement.
const (
	// ScoreExact is assigned when the normalized header equals a synonym.
	ScoreExact = 100
	// ScoreTokenSubset is assigned when a synonym's tokens are all present
	// in the header's tokens ("autores" matching "autores da musica").
	ScoreTokenSubset = 60
)

// Candidate is one possible column for a canonical field.
type Candidate struct {
	Field      string
	Column     string // raw header as it appears in the sheet
	HeaderNorm string
	Score      int
}

// ResolveFields maps raw headers to ranked column candidates per canonical
// field. A header may be a candidate for several fields at once; the caller
// decides which field's top candidate to use. Headers that normalize to the
// empty string are never candidates, and only the best score per
// header/field pair is kept.
//
// Candidates are ordered by score descending, then normalized header length
// ascending: shorter exact-ish headers are more likely the canonical name.
func ResolveFields(rawHeaders []string, table *SynonymTable) map[string][]Candidate {
	type normHeader struct {
		raw  string
		norm string
		toks map[string]struct{}
	}

	normed := make([]normHeader, 0, len(rawHeaders))
	for _, h := range rawHeaders {
		hn := textnorm.Normalize(h)
		if hn == "" {
			continue
		}
		normed = append(normed, normHeader{raw: h, norm: hn, toks: textnorm.TokenSet(hn, 0)})
	}

	result := make(map[string][]Candidate, len(table.Fields()))
	for _, field := range table.Fields() {
		syns := table.Synonyms(field)
		synSet := make(map[string]struct{}, len(syns))
		for _, s := range syns {
			synSet[s] = struct{}{}
		}

		var cands []Candidate
		for _, h := range normed {
			if _, exact := synSet[h.norm]; exact {
				cands = append(cands, Candidate{Field: field, Column: h.raw, HeaderNorm: h.norm, Score: ScoreExact})
				continue
			}
			best := 0
			for _, syn := range syns {
				if synTokensSubset(syn, h.toks) {
					best = ScoreTokenSubset
					break
				}
			}
			if best > 0 {
				cands = append(cands, Candidate{Field: field, Column: h.raw, HeaderNorm: h.norm, Score: best})
			}
		}

		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].Score != cands[j].Score {
				return cands[i].Score > cands[j].Score
			}
			return len(cands[i].HeaderNorm) < len(cands[j].HeaderNorm)
		})
		result[field] = cands
	}

	return result
}

// TopCandidate returns the best candidate for a field, if any.
func TopCandidate(resolved map[string][]Candidate, field string) (Candidate, bool) {
	cands := resolved[field]
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

// synTokensSubset reports whether every token of the synonym appears as a
// token of the header. Token-boundary, never raw substring.
func synTokensSubset(syn string, headerToks map[string]struct{}) bool {
	if syn == "" || len(headerToks) == 0 {
		return false
	}
	for _, t := range strings.Split(syn, " ") {
		if _, ok := headerToks[t]; !ok {
			return false
		}
	}
	return true
}
