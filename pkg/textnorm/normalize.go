// Package textnorm provides the canonical text normalization used across
// claimsift. Every matching component (header resolution, reference indexing,
// row scoring, entity overrides) compares strings only after they have been
// through Normalize, so the rules here are the single source of truth for
// what "the same text" means.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes to NFKD and removes combining marks, so accented
// Latin letters fold to their base letter ("Falcão" -> "Falcao").
var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

var folder = cases.Fold()

// Normalize canonicalizes free text for matching:
//   - NFKD decomposition with combining marks removed
//   - case folding
//   - every run of non-alphanumeric characters becomes a single space
//   - leading/trailing space stripped, internal whitespace collapsed
//
// It is total (empty input yields "") and idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		// Malformed UTF-8; fall back to the raw string rather than failing.
		stripped = s
	}
	folded := folder.String(stripped)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Tokenize splits the normalized form of s into tokens of at least minLen
// characters. Scoring uses minLen 3 to suppress noise words; entity matching
// uses minLen 0 so short names like "yago" survive.
func Tokenize(s string, minLen int) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	parts := strings.Split(n, " ")
	out := parts[:0]
	for _, p := range parts {
		if len(p) >= minLen && p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TokenSet returns the tokens of s (minimum length minLen) as a set.
func TokenSet(s string, minLen int) map[string]struct{} {
	toks := Tokenize(s, minLen)
	if len(toks) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// Joined returns the tokens of s concatenated with no separator. Used to
// catch names written without spaces, e.g. a report cell containing
// "DuduFalcao" against the entity "dudu falcao".
func Joined(s string) string {
	return strings.Join(Tokenize(s, 0), "")
}
