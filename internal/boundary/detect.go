// Package boundary proposes and scores candidate page windows for a
// target despacho inside a multi-document PDF analysis.
package boundary

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/layout"
	"github.com/pbaptista/diesp/internal/match"
)

// ErrNoCandidates aborts extraction for one PDF when neither bookmarks
// nor the density heuristic produce a candidate window.
var ErrNoCandidates = errors.New("no_candidates_found")

// WarnBelowThreshold is recorded when the winning window scores under
// the configured minimum; extraction still continues.
const WarnBelowThreshold = "best_score_below_threshold"

// Source says how a candidate window was generated.
type Source string

const (
	SourceBookmark  Source = "bookmark"
	SourceHeuristic Source = "heuristic"
)

// Subtype classifies the despacho variant inside the chosen window.
type Subtype string

const (
	// SubtypeAutorizacao is the expense-authorization despacho.
	SubtypeAutorizacao Subtype = "autorizacao"
	// SubtypeEncaminhamentoCM forwards the case to the council; the
	// window collapses to its first page and has no bottom region.
	SubtypeEncaminhamentoCM Subtype = "encaminhamento_cm"
)

// Window is one hypothesized page range. Exactly one window is
// promoted per extraction run; the rest survive only in diagnostics.
type Window struct {
	Start int `json:"startPage1"` // 1-based, inclusive
	End   int `json:"endPage1"`   // 1-based, inclusive

	Source     Source            `json:"source"`
	EditScore  float64           `json:"editScore"`
	LineScore  float64           `json:"lineScore"`
	AnchorsHit []string          `json:"anchorsHit,omitempty"`
	Density    map[int]float64   `json:"density,omitempty"`
	Signals    map[string]string `json:"signals,omitempty"`

	Subtype        Subtype `json:"subtype,omitempty"`
	BottomDisabled bool    `json:"bottomDisabled,omitempty"`
}

// Best returns the better of the two similarity estimates.
func (w Window) Best() float64 {
	if w.LineScore > w.EditScore {
		return w.LineScore
	}
	return w.EditScore
}

// Pages returns the window length in pages.
func (w Window) Pages() int { return w.End - w.Start + 1 }

// Detector generates, scores and selects candidate windows.
type Detector struct {
	lex    config.Lexicons
	win    config.WindowCfg
	logger *slog.Logger
}

// NewDetector builds a detector from the configured lexicons and
// window bounds.
func NewDetector(lex config.Lexicons, win config.WindowCfg, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{lex: lex, win: win, logger: logger.With("component", "boundary")}
}

// Detect returns the winning window, every scored candidate (for
// diagnostics) and any non-fatal warnings. ErrNoCandidates is the only
// error.
func (d *Detector) Detect(a *analysis.Analysis) (Window, []Window, []string, error) {
	candidates := d.bookmarkCandidates(a)
	if len(candidates) == 0 {
		candidates = d.heuristicCandidates(a)
	}
	if len(candidates) == 0 {
		return Window{}, nil, nil, ErrNoCandidates
	}

	for i := range candidates {
		d.score(a, &candidates[i])
	}

	best := d.selectBest(candidates)
	var warnings []string
	if best.Best() < d.win.MinScore {
		warnings = append(warnings, WarnBelowThreshold)
	}
	if best.Source == SourceHeuristic {
		best = d.adjustRange(a, best)
	}
	best = d.splitSubtype(a, best)

	d.logger.Debug("window selected",
		"source", best.Source, "start", best.Start, "end", best.End,
		"edit", best.EditScore, "line", best.LineScore, "subtype", best.Subtype)
	return best, candidates, warnings, nil
}

// bookmarkCandidates turns the flattened outline into windows: each
// matching bookmark spans from its page up to the page before the next
// bookmark (or the document end).
func (d *Detector) bookmarkCandidates(a *analysis.Analysis) []Window {
	flat := analysis.FlattenBookmarks(a.Bookmarks)
	var out []Window
	for i, bm := range flat {
		if !layout.MatchesAny(bm.Title, d.lex.DespachoTitles) {
			continue
		}
		end := a.PageCount()
		if i+1 < len(flat) && flat[i+1].Page > bm.Page {
			end = flat[i+1].Page - 1
		}
		if bm.Page < 1 || bm.Page > a.PageCount() {
			continue
		}
		out = append(out, Window{
			Start:  bm.Page,
			End:    end,
			Source: SourceBookmark,
			Signals: map[string]string{
				"bookmark": bm.Title,
			},
		})
	}
	return out
}

// heuristicCandidates proposes fixed-size windows anchored at pages
// hinted by bookmark titles and at the densest pages of the document.
func (d *Detector) heuristicCandidates(a *analysis.Analysis) []Window {
	density := pageDensity(a)
	starts := map[int]string{}

	for _, bm := range analysis.FlattenBookmarks(a.Bookmarks) {
		if layout.MatchesAny(bm.Title, d.lex.HeuristicHints) && bm.Page >= 1 && bm.Page <= a.PageCount() {
			starts[bm.Page] = "bookmark_hint"
		}
	}

	top := d.win.DensityTopPages
	if top <= 0 {
		top = 6
	}
	type pd struct {
		page int
		dens float64
	}
	ranked := make([]pd, 0, len(density))
	for p, dens := range density {
		if dens >= d.win.MinDensity {
			ranked = append(ranked, pd{p, dens})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].dens != ranked[j].dens {
			return ranked[i].dens > ranked[j].dens
		}
		return ranked[i].page < ranked[j].page
	})
	for i := 0; i < len(ranked) && i < top; i++ {
		if _, ok := starts[ranked[i].page]; !ok {
			starts[ranked[i].page] = "density"
		}
	}

	sizes := d.win.HeuristicSizes
	if len(sizes) == 0 {
		sizes = []int{2, 3, 4}
	}
	var out []Window
	for start, why := range starts {
		for _, size := range sizes {
			end := start + size - 1
			if end > a.PageCount() {
				end = a.PageCount()
			}
			if end < start {
				continue
			}
			out = append(out, Window{
				Start:   start,
				End:     end,
				Source:  SourceHeuristic,
				Density: density,
				Signals: map[string]string{"seed": why},
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return dedupWindows(out)
}

func dedupWindows(ws []Window) []Window {
	seen := map[[2]int]bool{}
	out := ws[:0]
	for _, w := range ws {
		key := [2]int{w.Start, w.End}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

// pageDensity maps page number to the sum of normalized word areas.
func pageDensity(a *analysis.Analysis) map[int]float64 {
	density := make(map[int]float64, len(a.Pages))
	for _, p := range a.Pages {
		var sum float64
		for _, w := range layout.DedupWords(p.Words) {
			sum += w.BBoxN.Area()
		}
		density[p.Number] = sum
	}
	return density
}

type anchorGroup struct {
	name    string
	phrases []string
}

// anchorGroups pairs each lexicon group name with its phrases.
func (d *Detector) anchorGroups() []anchorGroup {
	return []anchorGroup{
		{"header", d.lex.Header},
		{"subheader", d.lex.Subheader},
		{"title", d.lex.Title},
		{"footer", d.lex.Footer},
	}
}

func (d *Detector) allAnchors() []string {
	var all []string
	all = append(all, d.lex.Header...)
	all = append(all, d.lex.Subheader...)
	all = append(all, d.lex.Title...)
	all = append(all, d.lex.Footer...)
	return all
}

// score fills the window's anchor hits and both similarity estimates.
// The line-level estimate runs only when the edit score falls below
// the configured minimum; otherwise the two are equal.
func (d *Detector) score(a *analysis.Analysis, w *Window) {
	text := WindowText(a, w.Start, w.End)

	for _, group := range d.anchorGroups() {
		for i, phrase := range group.phrases {
			if layout.ContainsFolded(text, phrase) {
				w.AnchorsHit = append(w.AnchorsHit, fmt.Sprintf("%s:%d", group.name, i))
			}
		}
	}

	anchors := d.allAnchors()
	template := match.TemplateText(anchors)
	anchorText := match.AnchorText(text, anchors)
	w.EditScore = match.ScoreEdit(template, anchorText)
	if w.EditScore < d.win.MinScore {
		w.LineScore = match.LineSimilarity(template, anchorText)
	} else {
		w.LineScore = w.EditScore
	}
}

// selectBest picks the candidate with the highest combined score,
// breaking ties by anchor count.
func (d *Detector) selectBest(candidates []Window) Window {
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.Best() > best.Best():
			best = c
		case c.Best() == best.Best() && len(c.AnchorsHit) > len(best.AnchorsHit):
			best = c
		}
	}
	return best
}

// adjustRange widens a heuristic window: one page back when the
// preceding page carries the letterhead, forward until the minimum
// page count is reached or a footer signature shows up, capped at the
// maximum.
func (d *Detector) adjustRange(a *analysis.Analysis, w Window) Window {
	if w.Start > 1 {
		if prev := a.PageByNumber(w.Start - 1); prev != nil && pageHeaderMatches(prev, d.lex.Header) {
			w.Start--
		}
	}
	for w.End < a.PageCount() && w.Pages() < d.win.MaxPages {
		page := a.PageByNumber(w.End)
		if page != nil && layout.MatchesAny(pageTail(page.Text), d.lex.Footer) {
			break
		}
		if w.Pages() >= d.win.MinPages {
			break
		}
		w.End++
	}
	if w.Pages() > d.win.MaxPages {
		w.End = w.Start + d.win.MaxPages - 1
	}
	return w
}

// splitSubtype classifies the window as an authorization or a
// forward-to-council despacho. The latter needs both a council hint
// and a strong forwarding verb, and keeps only the first page.
func (d *Detector) splitSubtype(a *analysis.Analysis, w Window) Window {
	text := WindowText(a, w.Start, w.End)
	switch {
	case layout.MatchesAny(text, d.lex.AuthorizationHints):
		w.Subtype = SubtypeAutorizacao
	case layout.MatchesAny(text, d.lex.CouncilHints) && layout.MatchesAny(text, d.lex.ForwardVerbs):
		w.Subtype = SubtypeEncaminhamentoCM
		w.End = w.Start
		w.BottomDisabled = true
	default:
		w.Subtype = SubtypeAutorizacao
	}
	return w
}

// WindowText concatenates the raw text of a page range.
func WindowText(a *analysis.Analysis, start, end int) string {
	var b strings.Builder
	for n := start; n <= end; n++ {
		if p := a.PageByNumber(n); p != nil {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// pageHeaderMatches checks the analyzer's header candidates first and
// falls back to the leading slice of the page text.
func pageHeaderMatches(p *analysis.Page, lexicon []string) bool {
	for _, h := range p.HeaderCandidates {
		if layout.MatchesAny(h, lexicon) {
			return true
		}
	}
	head := p.Text
	if len(head) > 200 {
		head = head[:200]
	}
	return layout.MatchesAny(head, lexicon)
}

// pageTail returns the trailing 30% of a page's text by character
// offset, the zone where signatures live.
func pageTail(text string) string {
	runes := []rune(text)
	cut := len(runes) * 7 / 10
	return string(runes[cut:])
}
