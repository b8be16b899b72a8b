package layout

import (
	"fmt"

	"github.com/pbaptista/diesp/internal/analysis"
)

// DedupWords drops duplicate word entries (same text and normalized
// box) that the analyzer may emit twice for overlapping content
// streams. Order is preserved; the first occurrence wins. The input
// slice is not modified.
func DedupWords(words []analysis.Word) []analysis.Word {
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(words))
	out := make([]analysis.Word, 0, len(words))
	for _, w := range words {
		key := fmt.Sprintf("%s|%.4f|%.4f|%.4f|%.4f",
			w.Text, w.BBoxN.X0, w.BBoxN.Y0, w.BBoxN.X1, w.BBoxN.Y1)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}
