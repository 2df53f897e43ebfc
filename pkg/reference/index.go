package reference

import (
	"strings"

	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// Entry is one canonical catalog record. Built once by the truth-building
// pipeline and read-only during scoring.
type Entry struct {
	TitleRaw  string
	TitleNorm string
	ISRC      string // validated format or empty
	ISWC      string // validated format or empty
	// EvidenceTokens are normalized names/pseudonyms associated with the
	// work (composers, performers, publishers), stored semicolon-joined in
	// the truth table.
	EvidenceTokens string
	Source         string
}

// EvidenceTokenSet returns the entry's evidence tokens (minimum length
// minLen) as a set.
func (e *Entry) EvidenceTokenSet(minLen int) map[string]struct{} {
	return textnorm.TokenSet(strings.ReplaceAll(e.EvidenceTokens, ";", " "), minLen)
}

// Index provides O(1) candidate retrieval over the catalog. Built once per
// scoring run and read-only thereafter, so it is safe to share across
// scoring workers.
//
// Multiple entries may share a key; lists keep catalog insertion order, and
// consumers that take "the first" inherit that order as their tie-break.
type Index struct {
	byTitleNorm map[string][]*Entry
	byISRC      map[string][]*Entry
	byISWC      map[string][]*Entry
	size        int
}

// BuildIndex indexes catalog entries. Titles are normalized before insertion;
// identifiers are indexed only when they pass the strict format checks.
func BuildIndex(entries []Entry) *Index {
	idx := &Index{
		byTitleNorm: make(map[string][]*Entry, len(entries)),
		byISRC:      make(map[string][]*Entry),
		byISWC:      make(map[string][]*Entry),
		size:        len(entries),
	}

	for i := range entries {
		e := &entries[i]
		title := e.TitleNorm
		if title == "" {
			title = e.TitleRaw
		}
		if tn := textnorm.Normalize(title); tn != "" {
			e.TitleNorm = tn
			idx.byTitleNorm[tn] = append(idx.byTitleNorm[tn], e)
		}
		if key := CleanISRC(e.ISRC); key != "" {
			idx.byISRC[key] = append(idx.byISRC[key], e)
		}
		if key := CleanISWC(e.ISWC); key != "" {
			idx.byISWC[key] = append(idx.byISWC[key], e)
		}
	}

	return idx
}

// ByTitleNorm returns the entries whose normalized title equals titleNorm.
func (x *Index) ByTitleNorm(titleNorm string) []*Entry {
	return x.byTitleNorm[titleNorm]
}

// ByISRC returns the entries indexed under a cleaned ISRC key.
func (x *Index) ByISRC(key string) []*Entry {
	return x.byISRC[key]
}

// ByISWC returns the entries indexed under a cleaned ISWC key.
func (x *Index) ByISWC(key string) []*Entry {
	return x.byISWC[key]
}

// Size returns the number of catalog entries the index was built from.
func (x *Index) Size() int { return x.size }

// Titles returns the number of distinct normalized titles indexed.
func (x *Index) Titles() int { return len(x.byTitleNorm) }
