package headers

import (
	"strings"

	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// DefaultScanRows is how many leading rows are scanned when looking for the
// real header row of a report-style sheet.
const DefaultScanRows = 120

// DefaultStrongTokens are header tokens common in Brazilian playlog/cue-sheet
// reports; their presence is a strong hint that a row is a header row.
func DefaultStrongTokens() map[string]struct{} {
	tokens := []string{
		"obra", "musica", "titulo", "repertorio", "isrc",
		"autor", "autores", "compositor", "interprete", "artista",
		"programa", "data", "canal",
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// RowDetector scores candidate header rows. Construct once per run; it holds
// only immutable configuration and is safe for concurrent use.
type RowDetector struct {
	synonyms     map[string]struct{}
	strongTokens map[string]struct{}
	scanRows     int
}

// NewRowDetector builds a detector over the run's synonym table.
// scanRows <= 0 selects DefaultScanRows.
func NewRowDetector(table *SynonymTable, strongTokens map[string]struct{}, scanRows int) *RowDetector {
	if strongTokens == nil {
		strongTokens = DefaultStrongTokens()
	}
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	return &RowDetector{
		synonyms:     table.AllSynonyms(),
		strongTokens: strongTokens,
		scanRows:     scanRows,
	}
}

// QualityScore scores a candidate header row; higher is better.
//
// Heuristics: +1 per non-empty cell, -5 for placeholder ("unnamed") cells,
// -2 for purely numeric cells, +6 for an exact synonym match, +3 when any
// strong domain token is present.
func (d *RowDetector) QualityScore(cells []string) int {
	score := 0
	for _, cell := range cells {
		cn := textnorm.Normalize(cell)
		if cn == "" {
			continue
		}
		if strings.HasPrefix(cn, "unnamed") {
			score -= 5
			continue
		}
		if isAllDigits(strings.ReplaceAll(cn, " ", "")) {
			score -= 2
		}
		score++
		if _, ok := d.synonyms[cn]; ok {
			score += 6
		}
		for _, tok := range strings.Split(cn, " ") {
			if _, ok := d.strongTokens[tok]; ok {
				score += 3
				break
			}
		}
	}
	return score
}

// ShouldDetect reports whether the default header row (row 0) looks poor
// enough to justify scanning for a better one: a required field is missing,
// or most headers are placeholders.
func (d *RowDetector) ShouldDetect(headers []string, hasTitle, hasPeople bool) bool {
	if !(hasTitle && hasPeople) {
		return true
	}
	if len(headers) == 0 {
		return true
	}
	unnamed := 0
	for _, h := range headers {
		if strings.HasPrefix(textnorm.Normalize(h), "unnamed") {
			unnamed++
		}
	}
	return float64(unnamed)/float64(len(headers)) >= 0.6
}

// BestRow scans at most the detector's configured number of leading rows and
// returns the index and quality score of the best-scoring candidate header
// row. Returns ok=false when nothing scored above zero.
func (d *RowDetector) BestRow(rows [][]string) (idx int, score int, ok bool) {
	limit := len(rows)
	if limit > d.scanRows {
		limit = d.scanRows
	}

	bestIdx, bestScore := -1, 0
	for i := 0; i < limit; i++ {
		if sc := d.QualityScore(rows[i]); sc > bestScore {
			bestScore = sc
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, 0, false
	}
	return bestIdx, bestScore, true
}

// DetectHeaderRow picks a better header row than the default (row 0), or
// reports ok=false to keep the default. A scanned row replaces the default
// only when it scores strictly higher; this guards against demoting a good
// header in favor of a dense data row.
func (d *RowDetector) DetectHeaderRow(rows [][]string) (idx int, ok bool) {
	if len(rows) == 0 {
		return 0, false
	}
	defaultScore := d.QualityScore(rows[0])
	bestIdx, bestScore, found := d.BestRow(rows)
	if !found || bestScore <= defaultScore {
		return 0, false
	}
	return bestIdx, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
