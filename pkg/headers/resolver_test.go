package headers

import (
	"testing"
)

func testTable(t *testing.T) *SynonymTable {
	t.Helper()
	table, err := NewSynonymTable(
		[]string{FieldTitle, FieldArtist, FieldAuthor, FieldRightsholderOwner, FieldISRC, FieldISWC},
		map[string][]string{
			FieldTitle:             {"obra", "título", "titulo", "musica", "nome da obra", "repertorio"},
			FieldArtist:            {"artista", "intérprete", "banda"},
			FieldAuthor:            {"autor", "autores", "autores da musica", "compositor"},
			FieldRightsholderOwner: {"titulares", "titular", "editora", "publisher", "owner"},
			FieldISRC:              {"isrc"},
			FieldISWC:              {"iswc"},
		},
	)
	if err != nil {
		t.Fatalf("NewSynonymTable: %v", err)
	}
	return table
}

func TestResolveFieldsExactMatches(t *testing.T) {
	table := testTable(t)
	resolved := ResolveFields([]string{"Obra", "Autor", "ISRC"}, table)

	for _, field := range []string{FieldTitle, FieldAuthor, FieldISRC} {
		cands := resolved[field]
		if len(cands) != 1 {
			t.Fatalf("field %s: got %d candidates, want 1", field, len(cands))
		}
		if cands[0].Score != ScoreExact {
			t.Errorf("field %s: score %d, want %d", field, cands[0].Score, ScoreExact)
		}
	}
	if len(resolved[FieldArtist]) != 0 {
		t.Errorf("artist should have no candidates, got %v", resolved[FieldArtist])
	}
}

func TestResolveFieldsTokenSubset(t *testing.T) {
	table := testTable(t)
	resolved := ResolveFields([]string{"Autores da Música (Ordem Alfabética)"}, table)

	cands := resolved[FieldAuthor]
	if len(cands) != 1 {
		t.Fatalf("author candidates = %v", cands)
	}
	// The full synonym "autores da musica" is a token subset of the header,
	// and "autores" alone also is; only the best score per header is kept.
	if cands[0].Score != ScoreTokenSubset {
		t.Errorf("score = %d, want %d", cands[0].Score, ScoreTokenSubset)
	}
}

func TestResolveFieldsNoSubstringMatches(t *testing.T) {
	table := testTable(t)
	// "obrador" contains "obra" as a substring but not as a token.
	resolved := ResolveFields([]string{"Obrador"}, table)
	if len(resolved[FieldTitle]) != 0 {
		t.Errorf("substring must not match: %v", resolved[FieldTitle])
	}
}

func TestResolveFieldsRanking(t *testing.T) {
	table := testTable(t)
	resolved := ResolveFields([]string{"Nome da Obra do Programa", "Obra"}, table)

	cands := resolved[FieldTitle]
	if len(cands) != 2 {
		t.Fatalf("title candidates = %v", cands)
	}
	if cands[0].Column != "Obra" || cands[0].Score != ScoreExact {
		t.Errorf("best candidate = %+v, want exact match on Obra", cands[0])
	}
	if cands[1].Score != ScoreTokenSubset {
		t.Errorf("second candidate = %+v, want token-subset", cands[1])
	}
}

func TestResolveFieldsShorterExactWins(t *testing.T) {
	table := testTable(t)
	resolved := ResolveFields([]string{"Nome da Obra", "Obra"}, table)

	cands := resolved[FieldTitle]
	if len(cands) != 2 {
		t.Fatalf("title candidates = %v", cands)
	}
	// Both are exact synonyms; the shorter header ranks first.
	if cands[0].Column != "Obra" {
		t.Errorf("best = %+v, want Obra", cands[0])
	}
}

func TestResolveFieldsMultiFieldHeader(t *testing.T) {
	table, err := NewSynonymTable(
		[]string{FieldTitle, FieldAuthor},
		map[string][]string{
			FieldTitle:  {"musica"},
			FieldAuthor: {"autores"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	// One header can score for several fields at once; the caller decides.
	resolved := ResolveFields([]string{"Autores da Música"}, table)
	if len(resolved[FieldTitle]) != 1 || len(resolved[FieldAuthor]) != 1 {
		t.Errorf("expected candidates for both fields, got %v", resolved)
	}
}

func TestResolveFieldsEmptyHeaders(t *testing.T) {
	table := testTable(t)
	resolved := ResolveFields([]string{"", "   ", "---"}, table)
	for field, cands := range resolved {
		if len(cands) != 0 {
			t.Errorf("field %s: empty headers must not be candidates: %v", field, cands)
		}
	}
}

func TestTopCandidate(t *testing.T) {
	table := testTable(t)
	resolved := ResolveFields([]string{"Obra"}, table)

	if c, ok := TopCandidate(resolved, FieldTitle); !ok || c.Column != "Obra" {
		t.Errorf("TopCandidate = %+v, %v", c, ok)
	}
	if _, ok := TopCandidate(resolved, FieldArtist); ok {
		t.Error("TopCandidate should report absence")
	}
}
