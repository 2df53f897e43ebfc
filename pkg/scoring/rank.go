package scoring

import (
	"sort"

	"github.com/igorlobovc/claimsift/pkg/usage"
)

// ScoredRow pairs a usage row with its scoring result and any entity
// override annotations added after scoring.
type ScoredRow struct {
	Row    usage.Row
	Result Result

	// Entity override annotations. Zero values mean the override engine
	// did not run or did not hit this row.
	EntityOverrideHit          bool
	EntityOverrideBestPriority int
	EntityOverrideEntities     []string
	EntityOverrideHitFields    []string
	EntityOverrideMode         string
	PromotedByEntity           bool
}

// HasRefID reports whether the backing reference entry carries an ID.
func (sr *ScoredRow) HasRefID() bool {
	return sr.Result.RefISRC != "" || sr.Result.RefISWC != ""
}

// HasAnyID reports whether either the row or its backing reference entry
// carries an ID.
func (sr *ScoredRow) HasAnyID() bool {
	return sr.Row.HasAnyID() || sr.HasRefID()
}

// rankKey orders rows best-first: higher tier, then reference-backed IDs,
// then any ID at all, then richer evidence.
func rankKey(sr *ScoredRow) [4]int {
	k := [4]int{sr.Result.Tier.Weight(), 0, 0, len(sr.Result.FlagString())}
	if sr.HasRefID() {
		k[1] = 1
	}
	if sr.HasAnyID() {
		k[2] = 1
	}
	return k
}

// SortBestFirst sorts rows in place, best candidates first. The sort is
// stable so equally-ranked rows keep their input order.
func SortBestFirst(rows []*ScoredRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rankKey(rows[i]), rankKey(rows[j])
		for n := range a {
			if a[n] != b[n] {
				return a[n] > b[n]
			}
		}
		return false
	})
}

// TopN returns at most n rows from the front of rows. A non-positive n
// means no cap.
func TopN(rows []*ScoredRow, n int) []*ScoredRow {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}
