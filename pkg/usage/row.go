// Package usage models one supplier-report usage row and its extraction from
// raw tabular data via resolved header candidates.
package usage

import "strings"

// Well-known row field names. Extras carry any other provenance column.
const (
	FieldTitle     = "title"
	FieldArtist    = "artist"
	FieldAuthor    = "author"
	FieldPublisher = "publisher"
	FieldOwner     = "owner"
	FieldISRC      = "isrc"
	FieldISWC      = "iswc"
)

// Row is one supplier-report usage row. Title is required by scoring; the
// person-like and identifier fields are optional. Provenance travels with
// the row so every scored result stays auditable.
type Row struct {
	Title     string
	Artist    string
	Author    string
	Publisher string
	Owner     string
	ISRC      string
	ISWC      string

	// Provenance passthrough.
	SourceFile string
	Sheet      string
	RowID      string

	// Extras holds passthrough columns that have no dedicated field.
	Extras map[string]string
}

// Field returns the value of a named field, or "" when absent. Never fails
// on unknown names; unknown names fall through to Extras.
func (r *Row) Field(name string) string {
	switch name {
	case FieldTitle:
		return r.Title
	case FieldArtist:
		return r.Artist
	case FieldAuthor:
		return r.Author
	case FieldPublisher:
		return r.Publisher
	case FieldOwner:
		return r.Owner
	case FieldISRC:
		return r.ISRC
	case FieldISWC:
		return r.ISWC
	case "source_file":
		return r.SourceFile
	case "sheet":
		return r.Sheet
	case "row_id":
		return r.RowID
	}
	return r.Extras[name]
}

// PersonText joins the row's artist/author/publisher/owner text, the
// corroboration blob the scorer tokenizes against reference evidence tokens.
func (r *Row) PersonText() string {
	parts := make([]string, 0, 4)
	for _, v := range []string{r.Artist, r.Author, r.Publisher, r.Owner} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// AllText joins every field value of the row, used for whole-row token
// sweeps such as gold-token detection.
func (r *Row) AllText() string {
	parts := make([]string, 0, 8+len(r.Extras))
	for _, v := range []string{r.Title, r.Artist, r.Author, r.Publisher, r.Owner, r.ISRC, r.ISWC} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	for _, v := range r.Extras {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// HasAnyID reports whether the row carries any identifier text at all,
// valid or not. Identifier validity is an indexing concern.
func (r *Row) HasAnyID() bool {
	return strings.TrimSpace(r.ISRC) != "" || strings.TrimSpace(r.ISWC) != ""
}
