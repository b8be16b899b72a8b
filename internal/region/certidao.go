package region

import (
	"regexp"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/layout"
	"github.com/pbaptista/diesp/internal/match"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{[^}]*\}\}`)
	moneyTokenRe  = regexp.MustCompile(`R\$\s*[\d.,]+`)
	dateTokenRe   = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}\s+de\s+\p{L}+\s+de\s+\d{4}`)
)

// CertidaoMatch is the located council-certificate page with its
// regions.
type CertidaoMatch struct {
	Page      int
	Score     float64
	Full      Region
	ValueDate Region
}

// FindCertidao scans every page of the document for the one whose full
// text best matches the configured certificate templates, comparing
// with {{PLACEHOLDER}} tokens stripped. Returns false when no page
// reaches minScore.
func (b *Builder) FindCertidao(a *analysis.Analysis, minScore float64) (CertidaoMatch, bool) {
	if len(b.lex.CertidaoTemplates) == 0 {
		return CertidaoMatch{}, false
	}
	templates := make([]string, 0, len(b.lex.CertidaoTemplates))
	for _, t := range b.lex.CertidaoTemplates {
		templates = append(templates, placeholderRe.ReplaceAllString(t, " "))
	}

	bestPage, bestScore := 0, 0.0
	for _, p := range a.Pages {
		for _, tpl := range templates {
			score := match.LineSimilarity(tpl, p.Text)
			// Line granularity collapses for one-block certificates;
			// keep the edit estimate as the second opinion.
			if edit := match.ScoreEdit(match.Normalize(tpl), match.Normalize(p.Text)); edit > score {
				score = edit
			}
			if score > bestScore {
				bestScore, bestPage = score, p.Number
			}
		}
	}
	if bestPage == 0 || bestScore < minScore {
		return CertidaoMatch{}, false
	}

	page := a.PageByNumber(bestPage)
	full := makeRegion(NameCertidaoFull, bestPage, page.Words, b.opts)

	valueWords := b.valueDateWords(page)
	valueDate := makeRegion(NameCertidaoValueDate, bestPage, valueWords, b.opts)

	return CertidaoMatch{
		Page:      bestPage,
		Score:     bestScore,
		Full:      *full,
		ValueDate: *valueDate,
	}, true
}

// valueDateWords collects the words of body paragraphs carrying a
// monetary or date token.
func (b *Builder) valueDateWords(page *analysis.Page) []analysis.Word {
	bands := layout.SegmentPage(page, b.bands, b.opts)
	bodyWords := bandWords(bands, layout.BandBody)
	paras := layout.BuildParagraphs(layout.BuildLines(bodyWords, b.opts), b.opts)

	var words []analysis.Word
	for _, p := range paras {
		if moneyTokenRe.MatchString(p.Text) || dateTokenRe.MatchString(p.Text) {
			words = append(words, wordsInBox(bodyWords, p.BBox)...)
		}
	}
	return words
}
