// Package testutil builds synthetic analyzer output for tests: pages
// of words with plausible normalized geometry, so layout and pipeline
// tests do not need real analyzer JSON fixtures.
package testutil

import (
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
)

// Standard A4 page size in PDF points.
const (
	PageWidth  = 595.0
	PageHeight = 842.0
)

const (
	glyphWidth = 0.011
	wordGap    = 0.005
	lineHeight = 0.014
)

// Line lays the words of text on one line, left-aligned at x with the
// line's top edge at yTop (normalized, origin bottom-left).
func Line(page int, yTop, x float64, text string) []analysis.Word {
	var words []analysis.Word
	cx := x
	for _, tok := range strings.Fields(text) {
		w := glyphWidth * float64(len([]rune(tok)))
		n := analysis.BBoxN{X0: cx, Y0: yTop - lineHeight, X1: cx + w, Y1: yTop}
		words = append(words, analysis.Word{
			Text:  tok,
			Page:  page,
			BBoxN: n,
			BBox: analysis.BBox{
				X0: n.X0 * PageWidth,
				Y0: n.Y0 * PageHeight,
				X1: n.X1 * PageWidth,
				Y1: n.Y1 * PageHeight,
			},
		})
		cx += w + wordGap
	}
	return words
}

// Page assembles a page from word groups, deriving the raw text in
// the order given.
func Page(n int, groups ...[]analysis.Word) analysis.Page {
	var words []analysis.Word
	var lines []string
	for _, g := range groups {
		words = append(words, g...)
		var toks []string
		for _, w := range g {
			toks = append(toks, w.Text)
		}
		if len(toks) > 0 {
			lines = append(lines, strings.Join(toks, " "))
		}
	}
	return analysis.Page{
		Number: n,
		Width:  PageWidth,
		Height: PageHeight,
		Text:   strings.Join(lines, "\n"),
		Words:  words,
	}
}

// Doc wraps pages into an analysis.
func Doc(source string, pages ...analysis.Page) *analysis.Analysis {
	return &analysis.Analysis{Source: source, Pages: pages}
}
