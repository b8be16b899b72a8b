package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords is the fixed Portuguese stop-word list applied when
// tokenizing paragraph text. Kept small on purpose: these are the
// connectives that dominate despacho boilerplate.
var stopwords = map[string]struct{}{
	"a": {}, "o": {}, "as": {}, "os": {}, "e": {},
	"de": {}, "da": {}, "do": {}, "das": {}, "dos": {},
	"em": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"um": {}, "uma": {}, "uns": {}, "umas": {},
	"ao": {}, "aos": {},
	"por": {}, "para": {}, "com": {}, "sem": {},
	"que": {}, "se": {}, "ou": {}, "nº": {},
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips diacritics, so that "Diretoria" and
// "DIRETÓRIA" compare equal. Used for every lexicon/anchor comparison.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// NormalizeSpace collapses every whitespace run in s to a single space
// and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits s into lower-cased alphanumeric tokens with
// diacritics removed and stop words dropped.
func Tokenize(s string) []string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	raw := strings.Fields(b.String())
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ContainsFolded reports whether haystack contains needle after both
// are folded. The workhorse for anchor-lexicon matching.
func ContainsFolded(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// MatchesAny reports whether text contains any of the folded phrases.
func MatchesAny(text string, phrases []string) bool {
	folded := Fold(text)
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(folded, Fold(p)) {
			return true
		}
	}
	return false
}
