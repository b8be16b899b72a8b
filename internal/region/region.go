// Package region assembles the named page regions handed to the field
// extractor: the letterhead+opening paragraph of a window's first page
// and the signature block of its last, plus the certificate regions.
package region

import (
	"regexp"
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/boundary"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/layout"
)

// Canonical region names.
const (
	NameFirstTop          = "first_top"
	NameLastBottom        = "last_bottom"
	NameCertidaoFull      = "certidao_full"
	NameCertidaoValueDate = "certidao_value_date"
)

// WarnMissingLastBottom is recorded when a window that should have a
// signature region yields an empty one.
const WarnMissingLastBottom = "missing_last_bottom_region"

// Region is the unit handed to the field extractor: a named set of
// words with reconstructed text.
type Region struct {
	Name  string          `json:"name"`
	Page  int             `json:"page1"`
	Words []analysis.Word `json:"-"`
	Text  string          `json:"text"`
	BBox  analysis.BBoxN  `json:"bboxN"`
}

// processNumberRe matches CNJ-style judicial process numbers, the
// fallback marker for the opening paragraph.
var processNumberRe = regexp.MustCompile(`\d{7}-?\d{2}\.?\d{4}\.?\d\.?\d{2}\.?\d{4}`)

// Builder assembles regions for a chosen window.
type Builder struct {
	lex   config.Lexicons
	bands layout.Thresholds
	opts  layout.Options
}

// NewBuilder builds a region builder from configuration.
func NewBuilder(lex config.Lexicons, bands layout.Thresholds, opts layout.Options) *Builder {
	return &Builder{lex: lex, bands: bands, opts: opts}
}

// Result is everything the builder derives from one window.
type Result struct {
	Regions       []Region
	Bands         []layout.Band
	Paragraphs    []layout.Paragraph
	SignaturePage int
	Warnings      []string
}

// Build segments every window page into bands and paragraphs and
// assembles the first_top and last_bottom regions.
func (b *Builder) Build(a *analysis.Analysis, w boundary.Window) Result {
	res := Result{SignaturePage: b.SignaturePage(a, w)}

	pageBands := map[int][]layout.Band{}
	for n := w.Start; n <= w.End; n++ {
		page := a.PageByNumber(n)
		if page == nil {
			continue
		}
		bands := layout.SegmentPage(page, b.bands, b.opts)
		pageBands[n] = bands
		res.Bands = append(res.Bands, bands...)
		res.Paragraphs = append(res.Paragraphs, layout.BuildPageParagraphs(page.Words, b.opts)...)
	}

	if first := b.firstTop(w.Start, pageBands[w.Start]); first != nil {
		res.Regions = append(res.Regions, *first)
	}

	if !w.BottomDisabled {
		last := b.lastBottom(res.SignaturePage, pageBands[res.SignaturePage])
		if last == nil || len(last.Words) == 0 {
			res.Warnings = append(res.Warnings, WarnMissingLastBottom)
		}
		if last != nil {
			res.Regions = append(res.Regions, *last)
		}
	}
	return res
}

// SignaturePage scans backward from the window end for the page whose
// trailing 30% of text carries a signer hint, then for one carrying
// signature boilerplate, defaulting to the window end.
func (b *Builder) SignaturePage(a *analysis.Analysis, w boundary.Window) int {
	for n := w.End; n >= w.Start; n-- {
		if p := a.PageByNumber(n); p != nil && layout.MatchesAny(tail(p.Text), b.lex.SignerHints) {
			return n
		}
	}
	for n := w.End; n >= w.Start; n-- {
		if p := a.PageByNumber(n); p != nil && layout.MatchesAny(tail(p.Text), b.lex.SignatureBoilerplate) {
			return n
		}
	}
	return w.End
}

// firstTop joins the letterhead bands of the window's first page with
// the opening body paragraph, chosen by a priority-ordered label scan.
func (b *Builder) firstTop(page int, bands []layout.Band) *Region {
	if len(bands) == 0 {
		return nil
	}
	var words []analysis.Word
	for _, band := range bands {
		switch band.Kind {
		case layout.BandHeader, layout.BandSubheader, layout.BandTitle:
			words = append(words, band.Words...)
		}
	}

	bodyWords := bandWords(bands, layout.BandBody)
	paras := layout.BuildParagraphs(layout.BuildLines(bodyWords, b.opts), b.opts)
	if p := b.pickOpeningParagraph(paras); p != nil {
		words = append(words, wordsInBox(bodyWords, p.BBox)...)
	}
	if len(words) == 0 {
		return nil
	}
	return makeRegion(NameFirstTop, page, words, b.opts)
}

// pickOpeningParagraph applies the label lexicons in priority order:
// process number, expert, venue, comarca, then a bare process-number
// pattern, finally the first body paragraph.
func (b *Builder) pickOpeningParagraph(paras []layout.Paragraph) *layout.Paragraph {
	if len(paras) == 0 {
		return nil
	}
	lexicons := [][]string{
		b.lex.ProcessLabels,
		b.lex.ExpertLabels,
		b.lex.VenueLabels,
		b.lex.ComarcaLabels,
	}
	for _, lexicon := range lexicons {
		for i := range paras {
			if layout.MatchesAny(paras[i].Text, lexicon) {
				return &paras[i]
			}
		}
	}
	for i := range paras {
		if processNumberRe.MatchString(paras[i].Text) {
			return &paras[i]
		}
	}
	return &paras[0]
}

// lastBottom joins the closing body paragraph of the signature page
// with its footer band.
func (b *Builder) lastBottom(page int, bands []layout.Band) *Region {
	if len(bands) == 0 {
		return nil
	}
	bodyWords := bandWords(bands, layout.BandBody)
	paras := layout.BuildParagraphs(layout.BuildLines(bodyWords, b.opts), b.opts)

	var words []analysis.Word
	if p := pickClosingParagraph(paras, b.lex.Footer); p != nil {
		words = append(words, wordsInBox(bodyWords, p.BBox)...)
	}
	words = append(words, bandWords(bands, layout.BandFooter)...)
	if len(words) == 0 {
		return nil
	}
	return makeRegion(NameLastBottom, page, words, b.opts)
}

// pickClosingParagraph returns the last body paragraph matching the
// footer lexicon, or the last body paragraph outright.
func pickClosingParagraph(paras []layout.Paragraph, footer []string) *layout.Paragraph {
	if len(paras) == 0 {
		return nil
	}
	for i := len(paras) - 1; i >= 0; i-- {
		if layout.MatchesAny(paras[i].Text, footer) {
			return &paras[i]
		}
	}
	return &paras[len(paras)-1]
}

func bandWords(bands []layout.Band, kind layout.BandKind) []analysis.Word {
	var out []analysis.Word
	for _, band := range bands {
		if band.Kind == kind {
			out = append(out, band.Words...)
		}
	}
	return out
}

// wordsInBox filters words whose center sits inside the box.
func wordsInBox(words []analysis.Word, box analysis.BBoxN) []analysis.Word {
	var out []analysis.Word
	for _, w := range words {
		cx := (w.BBoxN.X0 + w.BBoxN.X1) / 2
		cy := w.BBoxN.CenterY()
		if cx >= box.X0 && cx <= box.X1 && cy >= box.Y0 && cy <= box.Y1 {
			out = append(out, w)
		}
	}
	return out
}

// makeRegion rebuilds the region text from its words through the line
// builder and unions the bounding box.
func makeRegion(name string, page int, words []analysis.Word, opts layout.Options) *Region {
	words = layout.DedupWords(words)
	var (
		parts []string
		bbox  analysis.BBoxN
	)
	for _, ln := range layout.BuildLines(words, opts) {
		parts = append(parts, ln.Text)
	}
	for _, w := range words {
		bbox = bbox.Union(w.BBoxN)
	}
	return &Region{
		Name:  name,
		Page:  page,
		Words: words,
		Text:  strings.Join(parts, "\n"),
		BBox:  bbox,
	}
}

// tail returns the trailing 30% of text by rune offset.
func tail(text string) string {
	runes := []rune(text)
	cut := len(runes) * 7 / 10
	return string(runes[cut:])
}
