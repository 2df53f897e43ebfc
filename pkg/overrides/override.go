// Package overrides implements the second matching pass: configured
// high-priority entities (people, organizations, pseudonyms) are searched
// across row evidence fields, and their hits can promote a row's tier under
// strict corroboration rules. A name hit alone never promotes anything.
package overrides

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// Entity types.
const (
	TypePerson    = "PERSON"
	TypeOrg       = "ORG"
	TypePseudonym = "PSEUDONYM"
)

// JoinedMatchPriority is the priority at which an entity additionally
// matches in joined-token form, catching "DuduFalcao"-style field values.
const JoinedMatchPriority = 4

// EntityOverride is one configured entity. Immutable during a run.
type EntityOverride struct {
	EntityRaw          string
	EntityNorm         string
	EntityType         string
	Priority           int
	RequiresCoevidence bool
	PerTermCap         int // 0 means uncapped
	Notes              string

	tokens []string
	joined string
}

// Tokens returns the entity's normalized tokens.
func (e *EntityOverride) Tokens() []string { return e.tokens }

// MatchesField reports whether the entity matches a field value. All entity
// tokens must appear as whole tokens of the field; substrings never count.
// Priority >= JoinedMatchPriority entities additionally match when the
// entity's joined form appears inside the field's joined form.
func (e *EntityOverride) MatchesField(fieldValue string) bool {
	if len(e.tokens) == 0 {
		return false
	}
	fieldTokens := textnorm.TokenSet(fieldValue, 1)
	all := true
	for _, t := range e.tokens {
		if _, ok := fieldTokens[t]; !ok {
			all = false
			break
		}
	}
	if all {
		return true
	}
	if e.Priority >= JoinedMatchPriority && e.joined != "" {
		return strings.Contains(textnorm.Joined(fieldValue), e.joined)
	}
	return false
}

// finish normalizes derived fields after loading.
func (e *EntityOverride) finish() {
	e.EntityNorm = textnorm.Normalize(e.EntityNorm)
	e.tokens = textnorm.Tokenize(e.EntityNorm, 1)
	e.joined = strings.Join(e.tokens, "")
	if e.EntityType == "" {
		e.EntityType = TypePerson
	}
}

// LoadOverrides reads the entity override CSV. Duplicate entity_norm values
// keep the first occurrence.
func LoadOverrides(path string) ([]*EntityOverride, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entity overrides: %w", err)
	}
	defer f.Close()
	ents, err := ReadOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("entity overrides %s: %w", path, err)
	}
	return ents, nil
}

// ReadOverrides parses entity overrides from r. Expected columns:
// entity_raw, entity_norm, entity_type, priority, requires_coevidence,
// per_term_cap, notes. Missing columns default sensibly; rows without both
// entity_raw and entity_norm are skipped.
func ReadOverrides(r io.Reader) ([]*EntityOverride, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read entity overrides: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	seen := make(map[string]struct{})
	var out []*EntityOverride
	for _, rec := range records[1:] {
		raw := get(rec, "entity_raw")
		norm := get(rec, "entity_norm")
		if raw == "" || norm == "" {
			continue
		}
		ent := &EntityOverride{
			EntityRaw:  raw,
			EntityNorm: norm,
			EntityType: strings.ToUpper(get(rec, "entity_type")),
			Notes:      get(rec, "notes"),
		}
		ent.Priority, _ = strconv.Atoi(get(rec, "priority"))
		if v := get(rec, "requires_coevidence"); v != "" {
			n, _ := strconv.Atoi(v)
			ent.RequiresCoevidence = n != 0
		}
		if v := get(rec, "per_term_cap"); v != "" {
			ent.PerTermCap, _ = strconv.Atoi(v)
		}
		ent.finish()

		if ent.EntityNorm == "" {
			continue
		}
		if _, dup := seen[ent.EntityNorm]; dup {
			continue
		}
		seen[ent.EntityNorm] = struct{}{}
		out = append(out, ent)
	}
	return out, nil
}
