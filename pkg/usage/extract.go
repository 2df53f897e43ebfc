package usage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	cserrors "github.com/igorlobovc/claimsift/pkg/errors"
	"github.com/igorlobovc/claimsift/pkg/headers"
	"github.com/igorlobovc/claimsift/pkg/logging"
	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// Extractor turns raw sheet rows into typed usage rows using header field
// resolution. Construct once per run.
type Extractor struct {
	table    *headers.SynonymTable
	detector *headers.RowDetector
	logger   logging.Logger
}

// NewExtractor creates an extractor over the run's synonym table.
func NewExtractor(table *headers.SynonymTable, detector *headers.RowDetector, logger logging.Logger) *Extractor {
	if detector == nil {
		detector = headers.NewRowDetector(table, nil, 0)
	}
	return &Extractor{
		table:    table,
		detector: detector,
		logger:   logger.With(logging.F("component", "extractor")),
	}
}

// columnMap holds the resolved column index per canonical field.
type columnMap struct {
	headerIdx int
	byField   map[string]int
	passthru  map[int]string // column index -> raw header, for Extras
}

// Extract converts raw rows (header row included) into usage rows.
// When row 0 resolves poorly, the leading rows are scanned for a better
// header row. Returns ErrNoTitleColumn when no title column can be found.
// Rows whose title normalizes to empty are skipped.
func (e *Extractor) Extract(rawRows [][]string, sourceFile, sheet string) ([]Row, error) {
	if len(rawRows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, cserrors.ErrNoHeaderRow)
	}

	cols, err := e.resolveColumns(rawRows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	var rows []Row
	for i := cols.headerIdx + 1; i < len(rawRows); i++ {
		row := e.buildRow(rawRows[i], cols)
		if textnorm.Normalize(row.Title) == "" {
			continue
		}
		row.SourceFile = sourceFile
		row.Sheet = sheet
		row.RowID = strconv.Itoa(i + 1) // 1-based sheet row number
		rows = append(rows, row)
	}

	e.logger.Debug("Extracted usage rows",
		logging.F("sheet", sheet),
		logging.F("header_row", cols.headerIdx),
		logging.F("rows", len(rows)))

	return rows, nil
}

// resolveColumns resolves the header row and the column per field.
func (e *Extractor) resolveColumns(rawRows [][]string) (*columnMap, error) {
	headerIdx := 0
	resolved := headers.ResolveFields(rawRows[0], e.table)
	_, hasTitle := headers.TopCandidate(resolved, headers.FieldTitle)
	_, hasArtist := headers.TopCandidate(resolved, headers.FieldArtist)
	_, hasAuthor := headers.TopCandidate(resolved, headers.FieldAuthor)

	if e.detector.ShouldDetect(rawRows[0], hasTitle, hasArtist || hasAuthor) {
		if idx, ok := e.detector.DetectHeaderRow(rawRows); ok {
			headerIdx = idx
			resolved = headers.ResolveFields(rawRows[idx], e.table)
		}
	}

	headerRow := rawRows[headerIdx]
	byField := make(map[string]int)
	claimed := make(map[int]string)
	for _, field := range []string{
		headers.FieldTitle,
		headers.FieldArtist,
		headers.FieldAuthor,
		headers.FieldRightsholderOwner,
		headers.FieldISRC,
		headers.FieldISWC,
	} {
		cand, ok := headers.TopCandidate(resolved, field)
		if !ok {
			continue
		}
		idx := columnIndex(headerRow, cand.Column)
		if idx < 0 {
			continue
		}
		if _, taken := claimed[idx]; taken {
			continue
		}
		byField[field] = idx
		claimed[idx] = field
	}

	if _, ok := byField[headers.FieldTitle]; !ok {
		return nil, cserrors.ErrNoTitleColumn
	}

	passthru := make(map[int]string)
	for i, h := range headerRow {
		if _, taken := claimed[i]; taken {
			continue
		}
		if hn := textnorm.Normalize(h); hn != "" {
			passthru[i] = hn
		}
	}

	return &columnMap{headerIdx: headerIdx, byField: byField, passthru: passthru}, nil
}

func (e *Extractor) buildRow(cells []string, cols *columnMap) Row {
	cell := func(field string) string {
		idx, ok := cols.byField[field]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	row := Row{
		Title:  cell(headers.FieldTitle),
		Artist: cell(headers.FieldArtist),
		Author: cell(headers.FieldAuthor),
		Owner:  cell(headers.FieldRightsholderOwner),
		ISRC:   cell(headers.FieldISRC),
		ISWC:   cell(headers.FieldISWC),
	}

	for idx, name := range cols.passthru {
		if idx >= len(cells) {
			continue
		}
		if v := strings.TrimSpace(cells[idx]); v != "" {
			if row.Extras == nil {
				row.Extras = make(map[string]string)
			}
			row.Extras[name] = v
		}
	}
	return row
}

func columnIndex(headerRow []string, column string) int {
	for i, h := range headerRow {
		if h == column {
			return i
		}
	}
	return -1
}

// ReadRawCSV reads a CSV file into raw string rows, tolerating ragged rows.
func ReadRawCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open usage csv: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read usage csv %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
