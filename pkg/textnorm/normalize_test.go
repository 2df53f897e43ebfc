package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Dudu Falcão ", "dudu falcao"},
		{"(Tagore)", "tagore"},
		{"  ÁéÍõ  ", "aeio"},
		{"Zero   Quatro", "zero quatro"},
		{"YAGO O PRÓPRIO", "yago o proprio"},
		{"Beijinho no Ombro", "beijinho no ombro"},
		{"BR-TVW-13-00013", "br tvw 13 00013"},
		{"", ""},
		{"---", ""},
		{"a", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  Dudu Falcão ",
		"YAGO O PRÓPRIO",
		"Cordel do Fogo Encantado",
		"T-123.456.789-0",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		minLen int
		want   []string
	}{
		{"scoring filters short tokens", "Vida Loka de SP", 3, []string{"vida", "loka"}},
		{"entity context keeps short names", "Yago o Próprio", 0, []string{"yago", "o", "proprio"}},
		{"empty", "", 3, nil},
		{"punctuation only", "-- // --", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input, tt.minLen)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q, %d) = %v, want %v", tt.input, tt.minLen, got, tt.want)
			}
		})
	}
}

func TestJoined(t *testing.T) {
	if got := Joined("Dudu Falcão"); got != "dudufalcao" {
		t.Errorf("Joined = %q, want %q", got, "dudufalcao")
	}
	if got := Joined(""); got != "" {
		t.Errorf("Joined empty = %q", got)
	}
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("John Lennon; Paul McCartney", 3)
	for _, tok := range []string{"john", "lennon", "paul", "mccartney"} {
		if _, ok := set[tok]; !ok {
			t.Errorf("TokenSet missing %q", tok)
		}
	}
	if _, ok := set["de"]; ok {
		t.Error("TokenSet should not contain short tokens")
	}
}
