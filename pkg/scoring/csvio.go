package scoring

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/igorlobovc/claimsift/pkg/usage"
)

// scoredHeader is the stable column layout of scored-row CSVs. Commands that
// post-process scored output (review queues, slices, entity annotation) all
// read and write this shape.
var scoredHeader = []string{
	"source_file", "sheet", "row_id",
	"title", "artist", "author", "publisher", "owner", "isrc", "iswc",
	"match_tier", "matched", "ref_match_count", "evidence_flags",
	"ref_title_norm", "ref_isrc", "ref_iswc",
	"entity_override_hit", "entity_override_best_priority",
	"entity_override_entities", "entity_override_hit_fields",
	"entity_override_mode", "promoted_by_entity",
}

// WriteScoredCSV writes scored rows to path.
func WriteScoredCSV(path string, rows []*ScoredRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scored csv: %w", err)
	}
	defer f.Close()
	if err := WriteScored(f, rows); err != nil {
		return err
	}
	return f.Close()
}

// WriteScored writes scored rows as CSV to w.
func WriteScored(w io.Writer, rows []*ScoredRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoredHeader); err != nil {
		return fmt.Errorf("write scored header: %w", err)
	}
	for _, sr := range rows {
		rec := []string{
			sr.Row.SourceFile, sr.Row.Sheet, sr.Row.RowID,
			sr.Row.Title, sr.Row.Artist, sr.Row.Author, sr.Row.Publisher, sr.Row.Owner,
			sr.Row.ISRC, sr.Row.ISWC,
			string(sr.Result.Tier),
			strconv.FormatBool(sr.Result.Matched),
			strconv.Itoa(sr.Result.RefMatchCount),
			sr.Result.FlagString(),
			sr.Result.RefTitleNorm, sr.Result.RefISRC, sr.Result.RefISWC,
			strconv.FormatBool(sr.EntityOverrideHit),
			strconv.Itoa(sr.EntityOverrideBestPriority),
			strings.Join(sr.EntityOverrideEntities, ";"),
			strings.Join(sr.EntityOverrideHitFields, ";"),
			sr.EntityOverrideMode,
			strconv.FormatBool(sr.PromotedByEntity),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write scored row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadScoredCSV reads a scored-row CSV previously written by WriteScoredCSV.
func LoadScoredCSV(path string) ([]*ScoredRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scored csv: %w", err)
	}
	defer f.Close()
	rows, err := ReadScored(f)
	if err != nil {
		return nil, fmt.Errorf("scored csv %s: %w", path, err)
	}
	return rows, nil
}

// ReadScored parses scored rows from r.
func ReadScored(r io.Reader) ([]*ScoredRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read scored csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]*ScoredRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		sr := &ScoredRow{
			Row: usage.Row{
				SourceFile: get(rec, "source_file"),
				Sheet:      get(rec, "sheet"),
				RowID:      get(rec, "row_id"),
				Title:      get(rec, "title"),
				Artist:     get(rec, "artist"),
				Author:     get(rec, "author"),
				Publisher:  get(rec, "publisher"),
				Owner:      get(rec, "owner"),
				ISRC:       get(rec, "isrc"),
				ISWC:       get(rec, "iswc"),
			},
			Result: Result{
				Tier:         ParseTier(get(rec, "match_tier")),
				RefTitleNorm: get(rec, "ref_title_norm"),
				RefISRC:      get(rec, "ref_isrc"),
				RefISWC:      get(rec, "ref_iswc"),
			},
			EntityOverrideMode: get(rec, "entity_override_mode"),
		}
		sr.Result.Matched, _ = strconv.ParseBool(get(rec, "matched"))
		sr.Result.RefMatchCount, _ = strconv.Atoi(get(rec, "ref_match_count"))
		if fl := get(rec, "evidence_flags"); fl != "" {
			sr.Result.EvidenceFlags = strings.Split(fl, ";")
		}
		sr.EntityOverrideHit, _ = strconv.ParseBool(get(rec, "entity_override_hit"))
		sr.EntityOverrideBestPriority, _ = strconv.Atoi(get(rec, "entity_override_best_priority"))
		if v := get(rec, "entity_override_entities"); v != "" {
			sr.EntityOverrideEntities = strings.Split(v, ";")
		}
		if v := get(rec, "entity_override_hit_fields"); v != "" {
			sr.EntityOverrideHitFields = strings.Split(v, ";")
		}
		sr.PromotedByEntity, _ = strconv.ParseBool(get(rec, "promoted_by_entity"))
		rows = append(rows, sr)
	}
	return rows, nil
}
