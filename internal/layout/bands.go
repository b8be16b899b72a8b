package layout

import (
	"fmt"
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
)

// BandKind names a horizontal layout zone of a page.
type BandKind string

const (
	BandHeader    BandKind = "header"
	BandSubheader BandKind = "subheader"
	BandTitle     BandKind = "title"
	BandBody      BandKind = "body"
	BandFooter    BandKind = "footer"
)

// Thresholds are the ordered normalized-Y cut points for band
// assignment, descending: a word whose top Y is >= Header lands in the
// header, and so on down to the footer, which takes everything below
// the last body cut.
type Thresholds struct {
	Header    float64   `mapstructure:"header" yaml:"header"`
	Subheader float64   `mapstructure:"subheader" yaml:"subheader"`
	Title     float64   `mapstructure:"title" yaml:"title"`
	Body      []float64 `mapstructure:"body" yaml:"body"`
}

// DefaultThresholds fit the despacho page family: letterhead high on
// the page, three body zones, signature boilerplate at the bottom.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Header:    0.92,
		Subheader: 0.86,
		Title:     0.78,
		Body:      []float64{0.55, 0.30, 0.12},
	}
}

// Band is the set of a page's words falling into one zone, with the
// text reconstructed through the line builder.
type Band struct {
	Page  int             `json:"page1"`
	Kind  BandKind        `json:"kind"`
	Label string          `json:"label"` // "header", "body-2", ...
	Text  string          `json:"text"`
	Hash  string          `json:"hash"`
	BBox  analysis.BBoxN  `json:"bboxN"`
	Words []analysis.Word `json:"-"`
}

// bandLabel returns the label for a kind and body index.
func bandLabel(kind BandKind, bodyIdx int) string {
	if kind == BandBody {
		return fmt.Sprintf("body-%d", bodyIdx+1)
	}
	return string(kind)
}

// assign picks the band label for a word top Y. Exactly one label is
// returned for any input, so a word can never sit in two bands.
func (t Thresholds) assign(topY float64) (BandKind, string) {
	switch {
	case topY >= t.Header:
		return BandHeader, bandLabel(BandHeader, 0)
	case topY >= t.Subheader:
		return BandSubheader, bandLabel(BandSubheader, 0)
	case topY >= t.Title:
		return BandTitle, bandLabel(BandTitle, 0)
	}
	for i, cut := range t.Body {
		if topY >= cut {
			return BandBody, bandLabel(BandBody, i)
		}
	}
	return BandFooter, bandLabel(BandFooter, 0)
}

// SegmentPage assigns every word of a page to exactly one band by its
// normalized top Y and returns the non-empty bands in top-down order.
// The function is pure: identical input always yields identical bands.
func SegmentPage(page *analysis.Page, t Thresholds, opts Options) []Band {
	words := DedupWords(page.Words)
	if len(words) == 0 {
		return nil
	}

	order := []string{bandLabel(BandHeader, 0), bandLabel(BandSubheader, 0), bandLabel(BandTitle, 0)}
	for i := range t.Body {
		order = append(order, bandLabel(BandBody, i))
	}
	order = append(order, bandLabel(BandFooter, 0))

	kinds := map[string]BandKind{}
	members := map[string][]analysis.Word{}
	for _, w := range words {
		kind, label := t.assign(w.BBoxN.Y1)
		kinds[label] = kind
		members[label] = append(members[label], w)
	}

	var bands []Band
	for _, label := range order {
		ws := members[label]
		if len(ws) == 0 {
			continue
		}
		var (
			bbox  analysis.BBoxN
			parts []string
		)
		for _, ln := range BuildLines(ws, opts) {
			parts = append(parts, ln.Text)
		}
		for _, w := range ws {
			bbox = bbox.Union(w.BBoxN)
		}
		text := strings.Join(parts, "\n")
		bands = append(bands, Band{
			Page:  page.Number,
			Kind:  kinds[label],
			Label: label,
			Text:  text,
			Hash:  ContentHash(text),
			BBox:  bbox,
			Words: ws,
		})
	}
	return bands
}

// BandsByLabel indexes a band slice by label for lookups.
func BandsByLabel(bands []Band) map[string]*Band {
	m := make(map[string]*Band, len(bands))
	for i := range bands {
		m[bands[i].Label] = &bands[i]
	}
	return m
}

// BodyBands filters the body zones of a band slice, in order.
func BodyBands(bands []Band) []Band {
	var out []Band
	for _, b := range bands {
		if b.Kind == BandBody {
			out = append(out, b)
		}
	}
	return out
}
