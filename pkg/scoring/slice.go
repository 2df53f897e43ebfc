package scoring

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// Sure-term slicing pulls out the subset of scored rows that mention terms a
// human already vetted, so negotiations can lead with the safest rows.

// Sure term kinds. A TITLE term is matched against the row title only;
// PERSON and ORG terms are matched against the row's person text as well.
const (
	TermKindTitle  = "TITLE"
	TermKindPerson = "PERSON"
	TermKindOrg    = "ORG"
)

// SureTerm is one vetted term.
type SureTerm struct {
	Raw  string
	Norm string
	Kind string
}

// SliceHit is a scored row together with the terms that selected it.
type SliceHit struct {
	Row   *ScoredRow
	Terms []string
}

// LoadSureTerms reads a sure-terms CSV. The file may carry a term,kind
// header or be a bare single column of terms; bare terms default to TITLE.
// Duplicate normalized terms keep the first occurrence.
func LoadSureTerms(path string) ([]SureTerm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sure terms: %w", err)
	}
	defer f.Close()
	return ReadSureTerms(f)
}

// ReadSureTerms parses sure terms from r.
func ReadSureTerms(r io.Reader) ([]SureTerm, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sure terms: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	termCol, kindCol := 0, -1
	start := 0
	if first := records[0]; len(first) > 0 && strings.EqualFold(strings.TrimSpace(first[0]), "term") {
		start = 1
		for i, h := range first {
			if strings.EqualFold(strings.TrimSpace(h), "kind") {
				kindCol = i
			}
		}
	}

	seen := make(map[string]struct{})
	var terms []SureTerm
	for _, rec := range records[start:] {
		if termCol >= len(rec) {
			continue
		}
		raw := strings.TrimSpace(rec[termCol])
		norm := textnorm.Normalize(raw)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}

		kind := TermKindTitle
		if kindCol >= 0 && kindCol < len(rec) {
			switch strings.ToUpper(strings.TrimSpace(rec[kindCol])) {
			case TermKindPerson:
				kind = TermKindPerson
			case TermKindOrg:
				kind = TermKindOrg
			}
		}
		terms = append(terms, SureTerm{Raw: raw, Norm: norm, Kind: kind})
	}
	return terms, nil
}

// SliceByTerms returns the rows whose normalized text contains at least one
// sure term, each with the full list of terms that hit it. Row order is
// preserved.
func SliceByTerms(rows []*ScoredRow, terms []SureTerm) []SliceHit {
	var hits []SliceHit
	for _, sr := range rows {
		titleNorm := textnorm.Normalize(sr.Row.Title)
		personNorm := textnorm.Normalize(sr.Row.PersonText())

		var matched []string
		for _, t := range terms {
			switch t.Kind {
			case TermKindPerson, TermKindOrg:
				if strings.Contains(titleNorm, t.Norm) || strings.Contains(personNorm, t.Norm) {
					matched = append(matched, t.Raw)
				}
			default:
				if strings.Contains(titleNorm, t.Norm) {
					matched = append(matched, t.Raw)
				}
			}
		}
		if len(matched) > 0 {
			hits = append(hits, SliceHit{Row: sr, Terms: matched})
		}
	}
	return hits
}
