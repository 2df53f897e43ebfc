// Package headers maps raw spreadsheet column headers to canonical semantic
// fields (title, artist, author, identifiers, ...) using a configured synonym
// table, and detects the real header row in report-style sheets that carry a
// preamble block above it.
package headers

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	cserrors "github.com/igorlobovc/claimsift/pkg/errors"
	"github.com/igorlobovc/claimsift/pkg/textnorm"
)

// Canonical field names used across supplier reports.
const (
	FieldTitle             = "title"
	FieldArtist            = "artist"
	FieldAuthor            = "author"
	FieldRightsholderOwner = "rightsholder_owner"
	FieldISRC              = "isrc"
	FieldISWC              = "iswc"
	FieldDate              = "date"
)

// artifactSuffix matches "(2)"-style copy suffixes that spreadsheet tools
// append to duplicated column names.
var artifactSuffix = regexp.MustCompile(`\s*\(\s*\d+\s*\)\s*$`)

// Cross-field collision heuristics: when the same synonym is declared under
// several fields, it is kept in the most specific one.
var (
	authorish       = regexp.MustCompile(`\b(autor|autores|compositor|compositores|composer)\b`)
	rightsholderish = regexp.MustCompile(`\b(titular|titulares|direitos|editora|editoras|publisher|owner|propriet)\b`)
	artistish       = regexp.MustCompile(`\b(artista|interprete|banda)\b`)
	dateish         = regexp.MustCompile(`\b(data|hora|timestamp|time|exib)\b`)
)

// preferredFieldFor returns the field a colliding synonym should live under,
// or "" to keep the field it was first declared in.
func preferredFieldFor(synNorm string) string {
	switch {
	case authorish.MatchString(synNorm):
		return FieldAuthor
	case rightsholderish.MatchString(synNorm):
		return FieldRightsholderOwner
	case artistish.MatchString(synNorm):
		return FieldArtist
	case dateish.MatchString(synNorm):
		return FieldDate
	}
	return ""
}

// SynonymTable maps canonical field names to normalized header synonyms.
// It is built once per run and immutable during resolution. After
// construction each synonym appears under exactly one field.
type SynonymTable struct {
	fields   []string            // declaration order
	synonyms map[string][]string // field -> normalized synonyms, encounter order
}

// LoadSynonymTable reads the synonym YAML file:
//
//	field_name:
//	  - synonym 1
//	  - synonym 2
func LoadSynonymTable(path string) (*SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}
	table, err := ParseSynonymTable(data)
	if err != nil {
		return nil, fmt.Errorf("synonyms %s: %w", path, err)
	}
	return table, nil
}

// ParseSynonymTable parses synonym YAML, preserving field declaration order.
func ParseSynonymTable(data []byte) (*SynonymTable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", cserrors.ErrConfigInvalid, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty synonym table", cserrors.ErrConfigInvalid)
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: synonym table must be a mapping of field -> list", cserrors.ErrConfigInvalid)
	}

	fields := make([]string, 0, len(mapping.Content)/2)
	raw := make(map[string][]string, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		var items []string
		if err := mapping.Content[i+1].Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", cserrors.ErrConfigInvalid, key, err)
		}
		fields = append(fields, key)
		raw[key] = items
	}

	return NewSynonymTable(fields, raw)
}

// NewSynonymTable builds a table from field names (in declaration order) and
// their raw synonym lists. Synonyms are normalized, copy-artifact suffixes
// removed, deduplicated within a field, and cross-field collisions resolved:
// the preferred-field heuristic wins, otherwise the first declaring field.
func NewSynonymTable(fields []string, raw map[string][]string) (*SynonymTable, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: synonym table declares no fields", cserrors.ErrConfigInvalid)
	}

	// Normalize + dedupe within fields.
	perField := make(map[string][]string, len(fields))
	for _, field := range fields {
		seen := make(map[string]struct{})
		for _, item := range raw[field] {
			syn := textnorm.Normalize(artifactSuffix.ReplaceAllString(item, ""))
			if syn == "" {
				continue
			}
			if _, dup := seen[syn]; dup {
				continue
			}
			seen[syn] = struct{}{}
			perField[field] = append(perField[field], syn)
		}
	}

	// Resolve cross-field duplicates; first assignment wins.
	assigned := make(map[string]string)
	for _, field := range fields {
		for _, syn := range perField[field] {
			if _, ok := assigned[syn]; ok {
				continue
			}
			pref := preferredFieldFor(syn)
			if pref == "" || !contains(fields, pref) {
				pref = field
			}
			assigned[syn] = pref
		}
	}

	final := make(map[string][]string, len(fields))
	for _, field := range fields {
		for _, syn := range perField[field] {
			target := assigned[syn]
			if !contains(final[target], syn) {
				final[target] = append(final[target], syn)
			}
		}
	}

	return &SynonymTable{fields: fields, synonyms: final}, nil
}

// Fields returns the canonical field names in declaration order.
func (t *SynonymTable) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// Synonyms returns the normalized synonyms for a field.
func (t *SynonymTable) Synonyms(field string) []string {
	syns := t.synonyms[field]
	out := make([]string, len(syns))
	copy(out, syns)
	return out
}

// AllSynonyms returns the set of every normalized synonym in the table.
func (t *SynonymTable) AllSynonyms() map[string]struct{} {
	out := make(map[string]struct{})
	for _, syns := range t.synonyms {
		for _, s := range syns {
			out[s] = struct{}{}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// String renders the table in the config YAML shape, mainly for debugging.
func (t *SynonymTable) String() string {
	var b strings.Builder
	for _, field := range t.fields {
		b.WriteString(field)
		b.WriteString(":\n")
		for _, syn := range t.synonyms[field] {
			b.WriteString("  - ")
			b.WriteString(syn)
			b.WriteString("\n")
		}
	}
	return b.String()
}
