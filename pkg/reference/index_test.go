package reference

import (
	"strings"
	"testing"
)

func TestCleanISRC(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"BR-TVW-13-00013", "br-tvw-13-00013"},
		{"br tvw 13 00013", "br tvw 13 00013"},
		{"BRTVW1300013", "brtvw1300013"},
		{"  BR-TVW-13-00013  ", "br-tvw-13-00013"},
		{"T-123.456.789-0", ""}, // ISWC shape, not ISRC
		{"not an isrc", ""},
		{"BR-TVW-13-0001", ""}, // too short
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanISRC(tt.input); got != tt.want {
				t.Errorf("CleanISRC(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanISWC(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"T-123.456.789-0", "t-123.456.789-0"},
		{"t-034.524.680-1", "t-034.524.680-1"},
		{"T-123.456.789", ""},
		{"T123.456.789-0", ""},
		{"BR-TVW-13-00013", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanISWC(tt.input); got != tt.want {
				t.Errorf("CleanISWC(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildIndex(t *testing.T) {
	entries := []Entry{
		{TitleRaw: "Eleanor Rigby", ISRC: "BR-TVW-13-00013", EvidenceTokens: "john lennon;paul mccartney"},
		{TitleNorm: "beijinho no ombro", ISWC: "T-123.456.789-0"},
		{TitleRaw: "Déjà Vu", ISRC: "garbage-id"},
		{TitleRaw: "", TitleNorm: ""}, // unusable, silently dropped from title index
	}

	idx := BuildIndex(entries)

	if idx.Size() != 4 {
		t.Errorf("Size = %d", idx.Size())
	}
	if got := idx.ByTitleNorm("eleanor rigby"); len(got) != 1 {
		t.Fatalf("eleanor rigby candidates = %d", len(got))
	}
	if got := idx.ByTitleNorm("deja vu"); len(got) != 1 {
		t.Errorf("accented title should index under normalized form, got %d", len(got))
	}
	if got := idx.ByISRC("br-tvw-13-00013"); len(got) != 1 || got[0].TitleNorm != "eleanor rigby" {
		t.Errorf("ByISRC = %v", got)
	}
	if got := idx.ByISWC("t-123.456.789-0"); len(got) != 1 {
		t.Errorf("ByISWC = %v", got)
	}
	// Malformed identifiers are never indexed.
	if got := idx.ByISRC("garbage-id"); len(got) != 0 {
		t.Errorf("malformed ISRC indexed: %v", got)
	}
	if idx.Titles() != 3 {
		t.Errorf("Titles = %d", idx.Titles())
	}
}

func TestBuildIndexSharedKeysKeepInsertionOrder(t *testing.T) {
	entries := []Entry{
		{TitleNorm: "diana", Source: "first"},
		{TitleNorm: "diana", Source: "second"},
	}
	idx := BuildIndex(entries)

	got := idx.ByTitleNorm("diana")
	if len(got) != 2 {
		t.Fatalf("candidates = %d", len(got))
	}
	if got[0].Source != "first" || got[1].Source != "second" {
		t.Errorf("insertion order not preserved: %s, %s", got[0].Source, got[1].Source)
	}
}

func TestEvidenceTokenSet(t *testing.T) {
	e := Entry{EvidenceTokens: "john lennon;paul mccartney"}
	set := e.EvidenceTokenSet(3)
	for _, tok := range []string{"john", "lennon", "paul", "mccartney"} {
		if _, ok := set[tok]; !ok {
			t.Errorf("missing token %q", tok)
		}
	}
}

func TestReadCSV(t *testing.T) {
	data := `title_raw,title_norm,isrc,iswc,evidence_tokens,source
Eleanor Rigby,eleanor rigby,,,john lennon;paul mccartney,catalog_a
,beijinho no ombro,,,,catalog_b
,,,,,empty_title_dropped
`
	entries, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].TitleRaw != "Eleanor Rigby" || entries[0].EvidenceTokens != "john lennon;paul mccartney" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].TitleNorm != "beijinho no ombro" || entries[1].Source != "catalog_b" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestReadCSVEmpty(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV empty: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d", len(entries))
	}
}
