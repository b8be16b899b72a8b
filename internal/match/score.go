// Package match provides the fuzzy similarity estimators used for
// template scoring. Two estimators are kept deliberately: a
// character-level edit-distance score and a line-level diff ratio.
// Neither supersedes the other; callers combine them.
package match

import (
	"strings"

	"github.com/agext/levenshtein"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/pbaptista/diesp/internal/layout"
)

// anchorTextFallbackLen caps the normalized window prefix used when no
// line contains an anchor phrase.
const anchorTextFallbackLen = 2000

// Normalize folds case/diacritics and collapses whitespace, the shared
// preprocessing for both estimators.
func Normalize(s string) string {
	return layout.NormalizeSpace(layout.Fold(s))
}

// TemplateText concatenates the configured anchor phrases into the
// synthetic template the window text is scored against.
func TemplateText(anchors []string) string {
	return Normalize(strings.Join(anchors, " "))
}

// AnchorText reduces a window's text to the lines that carry at least
// one anchor phrase. If no line matches, the first 2000 normalized
// characters of the window are used instead, so a heavily degraded
// scan still gets a score.
func AnchorText(windowText string, anchors []string) string {
	folded := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if a != "" {
			folded = append(folded, layout.Fold(a))
		}
	}
	var kept []string
	for _, line := range strings.Split(windowText, "\n") {
		fl := layout.Fold(line)
		for _, a := range folded {
			if strings.Contains(fl, a) {
				kept = append(kept, line)
				break
			}
		}
	}
	if len(kept) > 0 {
		return Normalize(strings.Join(kept, " "))
	}
	norm := Normalize(windowText)
	if len(norm) > anchorTextFallbackLen {
		norm = norm[:anchorTextFallbackLen]
	}
	return norm
}

// ScoreEdit is the character-level estimator:
// 1 - editDistance(a, b) / max(len(a), len(b)), clamped to [0,1].
// Inputs are expected to be pre-normalized.
func ScoreEdit(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	if max == 0 {
		return 1
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	dist := dmp.DiffLevenshtein(diffs)
	score := 1 - float64(dist)/float64(max)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// LineSimilarity is the line-level estimator: the ratio of lines the
// two texts share, 2*common/(lines(a)+lines(b)). Lines are compared
// after normalization.
func LineSimilarity(a, b string) float64 {
	la := normalizedLines(a)
	lb := normalizedLines(b)
	if len(la) == 0 && len(lb) == 0 {
		return 1
	}
	if len(la) == 0 || len(lb) == 0 {
		return 0
	}
	dmp := diffmatchpatch.New()
	ca, cb, lineArray := dmp.DiffLinesToChars(strings.Join(la, "\n")+"\n", strings.Join(lb, "\n")+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lineArray)
	common := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			// Every line carries its trailing newline after the
			// re-expansion, so newlines count shared lines.
			common += strings.Count(d.Text, "\n")
		}
	}
	return 2 * float64(common) / float64(len(la)+len(lb))
}

// Similarity is a convenience wrapper over Levenshtein similarity for
// short strings (names, specialty labels). Inputs are folded first.
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(layout.Fold(a), layout.Fold(b), nil)
}

func normalizedLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		n := Normalize(line)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
