package layout

import (
	"sort"
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
)

// Options holds the clustering tolerances for line and paragraph
// reconstruction. All values are in normalized page units except
// WordGapX, which is a multiplier of the average word width.
type Options struct {
	LineMergeY    float64 // max Y distance between a word and a line's mean Y
	WordGapX      float64 // word-gap divisor for proportional spacing
	ParagraphGapY float64 // max vertical gap between lines of one paragraph
}

// DefaultOptions are tuned for single-column despacho pages.
func DefaultOptions() Options {
	return Options{
		LineMergeY:    0.008,
		WordGapX:      1.0,
		ParagraphGapY: 0.015,
	}
}

// Line is a transient horizontal cluster of words. Lines are rebuilt
// for every extraction pass and discarded afterwards.
type Line struct {
	Page  int
	Words []analysis.Word
	Text  string
	BBox  analysis.BBoxN
}

// Paragraph is a vertical cluster of lines. Paragraphs are built once
// per document window and immutable thereafter.
type Paragraph struct {
	Page   int            `json:"page1"`
	Index  int            `json:"index"`
	Text   string         `json:"text"`
	BBox   analysis.BBoxN `json:"bboxN"`
	Tokens []string       `json:"tokens,omitempty"`
	Hash   string         `json:"hash"`
}

type lineCluster struct {
	words []analysis.Word
	sumY  float64
}

func (c *lineCluster) meanY() float64 { return c.sumY / float64(len(c.words)) }

func (c *lineCluster) add(w analysis.Word) {
	c.words = append(c.words, w)
	c.sumY += w.BBoxN.CenterY()
}

// BuildLines clusters words into lines by normalized Y proximity.
// Words are considered top-down (descending Y, PDF origin bottom-left)
// and greedily joined to the first cluster whose mean Y is within
// opts.LineMergeY. Empty input yields nil.
func BuildLines(words []analysis.Word, opts Options) []Line {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]analysis.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBoxN.CenterY() > sorted[j].BBoxN.CenterY()
	})

	var clusters []*lineCluster
	for _, w := range sorted {
		y := w.BBoxN.CenterY()
		placed := false
		for _, c := range clusters {
			if abs(c.meanY()-y) <= opts.LineMergeY {
				c.add(w)
				placed = true
				break
			}
		}
		if !placed {
			c := &lineCluster{}
			c.add(w)
			clusters = append(clusters, c)
		}
	}

	lines := make([]Line, 0, len(clusters))
	for _, c := range clusters {
		lines = append(lines, finishLine(c, opts))
	}
	// Clusters were created top-down but later words may shift means;
	// settle the final order by line top.
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].BBox.Y1 > lines[j].BBox.Y1
	})
	return lines
}

// finishLine orders a cluster by X and rebuilds the line text,
// inserting spaces proportional to the geometric gap between
// consecutive words.
func finishLine(c *lineCluster, opts Options) Line {
	words := c.words
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].BBoxN.X0 < words[j].BBoxN.X0
	})

	var (
		widthSum float64
		runeSum  int
	)
	for _, w := range words {
		widthSum += w.BBoxN.Width()
		runeSum += len([]rune(w.Text))
	}
	avgWidth := widthSum / float64(len(words))
	charWidth := avgWidth
	if runeSum > 0 {
		charWidth = widthSum / float64(runeSum)
	}

	var (
		b    strings.Builder
		bbox analysis.BBoxN
	)
	for i, w := range words {
		if i > 0 {
			gap := w.BBoxN.X0 - words[i-1].BBoxN.X1
			b.WriteString(spacesFor(gap, avgWidth, charWidth, opts.WordGapX))
		}
		b.WriteString(w.Text)
		bbox = bbox.Union(w.BBoxN)
	}
	return Line{
		Page:  words[0].Page,
		Words: words,
		Text:  b.String(),
		BBox:  bbox,
	}
}

// spacesFor converts a horizontal gap into literal spaces: one space
// once the gap clears a third of the average glyph width (inter-word
// gaps in analyzer output are narrower than a full word), more in
// proportion to gap / (avgWidth * wordGapX).
func spacesFor(gap, avgWidth, charWidth, wordGapX float64) string {
	if charWidth <= 0 || gap <= charWidth*0.3 {
		return ""
	}
	n := 1
	if wordGapX > 0 {
		if k := int(gap / (avgWidth * wordGapX)); k > n {
			n = k
		}
	}
	const maxSpaces = 8
	if n > maxSpaces {
		n = maxSpaces
	}
	return strings.Repeat(" ", n)
}

// BuildParagraphs merges vertically adjacent lines into paragraphs
// while the gap between line boxes stays within opts.ParagraphGapY.
// Paragraph indices restart at 0 for every call.
func BuildParagraphs(lines []Line, opts Options) []Paragraph {
	if len(lines) == 0 {
		return nil
	}
	var paras []Paragraph
	var cur []Line
	flush := func() {
		if len(cur) == 0 {
			return
		}
		paras = append(paras, finishParagraph(cur, len(paras)))
		cur = nil
	}
	for i, ln := range lines {
		if i > 0 {
			prev := cur[len(cur)-1]
			gap := prev.BBox.Y0 - ln.BBox.Y1
			if gap > opts.ParagraphGapY || ln.Page != prev.Page {
				flush()
			}
		}
		cur = append(cur, ln)
	}
	flush()
	return paras
}

func finishParagraph(lines []Line, index int) Paragraph {
	var (
		parts []string
		bbox  analysis.BBoxN
	)
	for _, ln := range lines {
		parts = append(parts, ln.Text)
		bbox = bbox.Union(ln.BBox)
	}
	text := strings.Join(parts, "\n")
	tokens := Tokenize(text)
	if letterSpaced(tokens) {
		// Letter-spaced scanned headers tokenize into single runes;
		// collapse the whitespace so anchors still match.
		text = strings.Join(strings.Fields(text), "")
		tokens = Tokenize(text)
	}
	return Paragraph{
		Page:   lines[0].Page,
		Index:  index,
		Text:   text,
		BBox:   bbox,
		Tokens: tokens,
		Hash:   ContentHash(text),
	}
}

// letterSpaced reports whether more than half of the tokens are single
// characters.
func letterSpaced(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	short := 0
	for _, t := range tokens {
		if len([]rune(t)) == 1 {
			short++
		}
	}
	return short*2 > len(tokens)
}

// BuildPageParagraphs is the common dedup + lines + paragraphs chain
// for one page's words.
func BuildPageParagraphs(words []analysis.Word, opts Options) []Paragraph {
	return BuildParagraphs(BuildLines(DedupWords(words), opts), opts)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
