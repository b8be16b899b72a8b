// Package doctype assigns a document type to a detected window from
// lexical and structural signals: signer identity, origin header,
// certificate-template similarity and expert-report keywords.
package doctype

import (
	"log/slog"
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/boundary"
	"github.com/pbaptista/diesp/internal/catalog"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/layout"
	"github.com/pbaptista/diesp/internal/region"
)

// Type labels one classified document window.
type Type string

const (
	DespachoAutorizacao      Type = "despacho_autorizacao"
	DespachoEncaminhamentoCM Type = "despacho_encaminhamento_cm"
	CertidaoCM               Type = "certidao_cm"
	Laudo                    Type = "laudo"
	Desconhecido             Type = "desconhecido"
)

// Reason codes attached to a classification.
const (
	ReasonDirectorSigner    = "director_signer"
	ReasonDirectorateHeader = "directorate_header"
	ReasonCouncilForward    = "council_forward"
	ReasonAnchors           = "window_anchors"
	ReasonCertidaoTemplate  = "certidao_template"
	ReasonLaudoKeywords     = "laudo_keywords"
	ReasonNoSignals         = "no_signals"
)

// laudoHitFloor is the number of distinct expert-report keywords that
// must appear before a window with no despacho signals is called a
// laudo.
const laudoHitFloor = 3

// certidaoScoreFloor is the minimum template similarity for a
// certificate-page classification.
const certidaoScoreFloor = 0.6

// Result is the classifier verdict for one window.
type Result struct {
	Type       Type    `json:"type"`
	Reason     string  `json:"reason"`
	LaudoScore float64 `json:"laudoScore"`

	// Hints carries identity values gleaned from a positive laudo
	// classification, consumed by the reconciliation pass. Nil for
	// every other type.
	Hints *catalog.HashEntry `json:"-"`
}

// Classifier evaluates windows against the configured lexicons.
type Classifier struct {
	lex    config.Lexicons
	logger *slog.Logger
}

func NewClassifier(lex config.Lexicons, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{lex: lex, logger: logger.With("component", "doctype")}
}

// Classify picks a type for the window. The certidao match may be nil
// when no certificate page was located. Signals are checked in
// strength order: an explicit despacho signer or header beats keyword
// evidence, keyword evidence beats the unknown fallback.
func (c *Classifier) Classify(a *analysis.Analysis, win boundary.Window, regions *region.Result, cert *region.CertidaoMatch) Result {
	text := boundary.WindowText(a, win.Start, win.End)
	hits, score := c.laudoScore(a, text)

	if win.Subtype == boundary.SubtypeEncaminhamentoCM {
		return Result{Type: DespachoEncaminhamentoCM, Reason: ReasonCouncilForward, LaudoScore: score}
	}
	if regions != nil && c.signerIsDirector(a, regions.SignaturePage) {
		return Result{Type: DespachoAutorizacao, Reason: ReasonDirectorSigner, LaudoScore: score}
	}
	if c.directorateHeader(a, win.Start) {
		return Result{Type: DespachoAutorizacao, Reason: ReasonDirectorateHeader, LaudoScore: score}
	}
	if win.Source == boundary.SourceBookmark && len(win.AnchorsHit) > 0 {
		return Result{Type: DespachoAutorizacao, Reason: ReasonAnchors, LaudoScore: score}
	}
	if len(win.AnchorsHit) >= 2 {
		return Result{Type: DespachoAutorizacao, Reason: ReasonAnchors, LaudoScore: score}
	}
	if cert != nil && cert.Score >= certidaoScoreFloor {
		return Result{Type: CertidaoCM, Reason: ReasonCertidaoTemplate, LaudoScore: score}
	}
	if hits >= laudoHitFloor {
		return Result{
			Type:       Laudo,
			Reason:     ReasonLaudoKeywords,
			LaudoScore: score,
			Hints:      c.laudoHints(text),
		}
	}
	return Result{Type: Desconhecido, Reason: ReasonNoSignals, LaudoScore: score}
}

// laudoScore counts distinct expert-report keywords across bookmark
// titles and the window text. The score is the hit fraction of the
// configured keyword list.
func (c *Classifier) laudoScore(a *analysis.Analysis, text string) (int, float64) {
	if len(c.lex.LaudoKeywords) == 0 {
		return 0, 0
	}
	haystack := layout.Fold(text)
	for _, bm := range analysis.FlattenBookmarks(a.Bookmarks) {
		haystack += "\n" + layout.Fold(bm.Title)
	}
	hits := 0
	for _, kw := range c.lex.LaudoKeywords {
		if kw != "" && strings.Contains(haystack, layout.Fold(kw)) {
			hits++
		}
	}
	return hits, float64(hits) / float64(len(c.lex.LaudoKeywords))
}

// laudoHints mines the laudo window for a specialty-area hint.
func (c *Classifier) laudoHints(text string) *catalog.HashEntry {
	h := &catalog.HashEntry{}
	folded := layout.Fold(text)
	for _, kw := range c.lex.LaudoKeywords {
		if kw != "" && strings.Contains(folded, layout.Fold(kw)) {
			h.Specialty = kw
			break
		}
	}
	return h
}

func (c *Classifier) signerIsDirector(a *analysis.Analysis, page int) bool {
	p := a.PageByNumber(page)
	if p == nil {
		return false
	}
	return layout.MatchesAny(pageTail(p.Text), c.lex.DirectorSigners)
}

func (c *Classifier) directorateHeader(a *analysis.Analysis, page int) bool {
	p := a.PageByNumber(page)
	if p == nil {
		return false
	}
	for _, h := range p.HeaderCandidates {
		if layout.MatchesAny(h, c.lex.Subheader) {
			return true
		}
	}
	head := []rune(p.Text)
	if len(head) > 300 {
		head = head[:300]
	}
	return layout.MatchesAny(string(head), c.lex.Subheader)
}

// pageTail returns the trailing 30% of the page text by rune offset.
func pageTail(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[len(runes)*7/10:])
}
