package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads a reference truth CSV with at least a title_raw or title_norm
// column; isrc, iswc, evidence_tokens, and source columns are optional.
// Rows with no usable title are dropped.
func LoadCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference truth: %w", err)
	}
	defer f.Close()

	entries, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reference truth %s: %w", path, err)
	}
	return entries, nil
}

// ReadCSV reads reference truth rows from r.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cell := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		e := Entry{
			TitleRaw:       cell(record, "title_raw"),
			TitleNorm:      cell(record, "title_norm"),
			ISRC:           cell(record, "isrc"),
			ISWC:           cell(record, "iswc"),
			EvidenceTokens: cell(record, "evidence_tokens"),
			Source:         cell(record, "source"),
		}
		if e.TitleRaw == "" && e.TitleNorm == "" {
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}
