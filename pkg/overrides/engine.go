package overrides

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/igorlobovc/claimsift/pkg/scoring"
	"github.com/igorlobovc/claimsift/pkg/usage"
)

// Override modes, from weakest to strongest anchor.
const (
	ModeEntityOnly      = "ENTITY_ONLY"
	ModeEntityPlusTitle = "ENTITY_PLUS_TITLE"
	ModeEntityPlusID    = "ENTITY_PLUS_ID"
)

// DefaultSearchFields are the row fields scanned for entity hits.
var DefaultSearchFields = []string{"artist", "author", "publisher", "owner", "title"}

// EntityStats aggregates one entity's hits across a run.
type EntityStats struct {
	EntityNorm         string
	EntityType         string
	Priority           int
	RequiresCoevidence bool
	PerTermCap         int
	HitCount           int
	FieldBreakdown     map[string]int
}

// BreakdownString renders the per-field hit counts as "field:count" pairs
// in field order.
func (s *EntityStats) BreakdownString() string {
	fields := make([]string, 0, len(s.FieldBreakdown))
	for f := range s.FieldBreakdown {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s:%d", f, s.FieldBreakdown[f]))
	}
	return strings.Join(parts, ",")
}

// Engine runs the override pass over scored rows.
type Engine struct {
	overrides    []*EntityOverride
	searchFields []string
	includeCols  *regexp.Regexp
}

// Option configures an Engine.
type Option func(*Engine)

// WithSearchFields replaces the default search fields.
func WithSearchFields(fields []string) Option {
	return func(e *Engine) { e.searchFields = fields }
}

// WithIncludeColumns additionally scans any extra passthrough column whose
// normalized header matches pattern (case-insensitive).
func WithIncludeColumns(pattern string) (Option, error) {
	rx, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("include columns pattern: %w", err)
	}
	return func(e *Engine) { e.includeCols = rx }, nil
}

// NewEngine builds an override engine.
func NewEngine(overrides []*EntityOverride, opts ...Option) *Engine {
	e := &Engine{
		overrides:    overrides,
		searchFields: DefaultSearchFields,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Annotate scans every scored row for entity hits and fills the override
// annotation fields in place: hit, best priority, sorted-unique entity list,
// and "entity@field" provenance. Tiers are not changed here.
//
// The per-entity stats cover entities with at least one hit.
func (e *Engine) Annotate(rows []*scoring.ScoredRow) map[string]*EntityStats {
	stats := make(map[string]*EntityStats)

	for _, sr := range rows {
		fields := e.rowFields(&sr.Row)

		entSet := make(map[string]struct{})
		for _, ent := range e.overrides {
			rowHit := false
			for _, fv := range fields {
				if !ent.MatchesField(fv.value) {
					continue
				}
				rowHit = true
				if _, dup := entSet[ent.EntityNorm]; !dup {
					entSet[ent.EntityNorm] = struct{}{}
				}
				sr.EntityOverrideHitFields = append(sr.EntityOverrideHitFields,
					ent.EntityNorm+"@"+fv.name)
				if ent.Priority > sr.EntityOverrideBestPriority {
					sr.EntityOverrideBestPriority = ent.Priority
				}
				bumpStats(stats, ent, fv.name)
			}
			if rowHit {
				st := stats[ent.EntityNorm]
				st.HitCount++
			}
		}

		if len(entSet) > 0 {
			sr.EntityOverrideHit = true
			ents := make([]string, 0, len(entSet))
			for en := range entSet {
				ents = append(ents, en)
			}
			sort.Strings(ents)
			sr.EntityOverrideEntities = ents
			sr.EntityOverrideMode = classifyMode(sr)
		}
	}

	return stats
}

// Promote lifts ENTITY_PLUS_TITLE rows to a floor of Silver. Entity hits
// with no title anchor never change tier, and ID-backed rows are already
// Gold through the scorer, so only the title-anchored middle ground moves.
func Promote(rows []*scoring.ScoredRow) int {
	promoted := 0
	for _, sr := range rows {
		if !sr.EntityOverrideHit || sr.EntityOverrideMode != ModeEntityPlusTitle {
			continue
		}
		if sr.Result.Tier.Weight() >= scoring.TierSilver.Weight() {
			continue
		}
		sr.Result.Tier = scoring.TierSilver
		sr.Result.Matched = true
		sr.PromotedByEntity = true
		promoted++
	}
	return promoted
}

// ApplyNoiseControls enforces requires_coevidence and per_term_cap on a
// hit-row selection and returns the surviving rows in their original order.
//
// For a coevidence-gated entity, its hit rows must show TITLE_EXACT,
// ARTIST_TOKEN_OVERLAP, or any identifier; the rest are dropped. For a
// capped entity, surviving hit rows are ranked best-first and truncated to
// the cap. A row dropped by any of its entities is dropped outright.
func (e *Engine) ApplyNoiseControls(rows []*scoring.ScoredRow) []*scoring.ScoredRow {
	dropped := make(map[*scoring.ScoredRow]struct{})

	for _, ent := range e.overrides {
		if !ent.RequiresCoevidence && ent.PerTermCap == 0 {
			continue
		}

		var hits []*scoring.ScoredRow
		for _, sr := range rows {
			if _, gone := dropped[sr]; gone {
				continue
			}
			if !rowHitsEntity(sr, ent.EntityNorm) {
				continue
			}
			if ent.RequiresCoevidence && !hasCoevidence(sr) {
				dropped[sr] = struct{}{}
				continue
			}
			hits = append(hits, sr)
		}

		if ent.PerTermCap > 0 && len(hits) > ent.PerTermCap {
			scoring.SortBestFirst(hits)
			for _, sr := range hits[ent.PerTermCap:] {
				dropped[sr] = struct{}{}
			}
		}
	}

	kept := make([]*scoring.ScoredRow, 0, len(rows))
	for _, sr := range rows {
		if _, gone := dropped[sr]; !gone {
			kept = append(kept, sr)
		}
	}
	return kept
}

type fieldValue struct {
	name  string
	value string
}

// rowFields collects the searchable field values of a row: the configured
// search fields plus any extra passthrough column matched by the include
// pattern, in deterministic order.
func (e *Engine) rowFields(row *usage.Row) []fieldValue {
	var out []fieldValue
	for _, f := range e.searchFields {
		if v := row.Field(f); v != "" {
			out = append(out, fieldValue{name: f, value: v})
		}
	}
	if e.includeCols != nil && len(row.Extras) > 0 {
		names := make([]string, 0, len(row.Extras))
		for name := range row.Extras {
			if e.includeCols.MatchString(name) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			if v := row.Extras[name]; v != "" {
				out = append(out, fieldValue{name: name, value: v})
			}
		}
	}
	return out
}

func classifyMode(sr *scoring.ScoredRow) string {
	if sr.HasAnyID() {
		return ModeEntityPlusID
	}
	if sr.Result.HasFlag(scoring.FlagTitleExact) || sr.Result.RefTitleNorm != "" {
		return ModeEntityPlusTitle
	}
	return ModeEntityOnly
}

func hasCoevidence(sr *scoring.ScoredRow) bool {
	return sr.Result.HasFlag(scoring.FlagTitleExact) ||
		sr.Result.HasFlag(scoring.FlagArtistTokenOverlap) ||
		sr.HasAnyID()
}

func rowHitsEntity(sr *scoring.ScoredRow, entityNorm string) bool {
	for _, en := range sr.EntityOverrideEntities {
		if en == entityNorm {
			return true
		}
	}
	return false
}

func bumpStats(stats map[string]*EntityStats, ent *EntityOverride, field string) {
	st, ok := stats[ent.EntityNorm]
	if !ok {
		st = &EntityStats{
			EntityNorm:         ent.EntityNorm,
			EntityType:         ent.EntityType,
			Priority:           ent.Priority,
			RequiresCoevidence: ent.RequiresCoevidence,
			PerTermCap:         ent.PerTermCap,
			FieldBreakdown:     make(map[string]int),
		}
		stats[ent.EntityNorm] = st
	}
	st.FieldBreakdown[field]++
}
