package fields

import (
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/layout"
)

// LocateBBox finds the bounding box of a value on a page by matching
// its tokens against the page's word list. Best effort: the union box
// of the words matched in sequence, or nil when fewer than half the
// tokens are found.
func LocateBBox(words []analysis.Word, value string) *analysis.BBoxN {
	tokens := evidenceTokens(value)
	if len(tokens) == 0 {
		return nil
	}
	words = layout.DedupWords(words)

	bestCount := 0
	var bestBox analysis.BBoxN
	for start := range words {
		count, box := matchFrom(words, start, tokens)
		if count > bestCount {
			bestCount, bestBox = count, box
			if count == len(tokens) {
				break
			}
		}
	}
	if bestCount*2 < len(tokens) {
		return nil
	}
	box := bestBox
	return &box
}

// matchFrom greedily consumes tokens against words from the given
// offset, allowing a small skip window between consecutive matches.
func matchFrom(words []analysis.Word, start int, tokens []string) (int, analysis.BBoxN) {
	const skipWindow = 3
	var box analysis.BBoxN
	count := 0
	ti := 0
	skips := 0
	for wi := start; wi < len(words) && ti < len(tokens); wi++ {
		wt := layout.Fold(strings.Trim(words[wi].Text, ".,;:()–-"))
		if wt == tokens[ti] || (len(tokens[ti]) > 3 && strings.Contains(wt, tokens[ti])) {
			box = box.Union(words[wi].BBoxN)
			count++
			ti++
			skips = 0
			continue
		}
		if count == 0 {
			break // anchor the sequence at its first token
		}
		skips++
		if skips > skipWindow {
			break
		}
	}
	return count, box
}

func evidenceTokens(value string) []string {
	var out []string
	for _, f := range strings.Fields(value) {
		t := layout.Fold(strings.Trim(f, ".,;:()–-"))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
