// Package analysis defines the typed input contract consumed by the
// extraction pipeline: the page/word/bookmark model produced by the
// upstream PDF analyzer. Everything in this package is read-only once
// loaded; the pipeline never mutates analyzer output.
package analysis

import "sort"

// BBox is an absolute bounding box in PDF points, origin bottom-left.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// BBoxN is a bounding box normalized to [0,1] page coordinates,
// origin bottom-left (PDF convention): the header of a page sits at
// high Y, the footer at low Y.
type BBoxN struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box.
func (b BBoxN) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBoxN) Height() float64 { return b.Y1 - b.Y0 }

// Area returns the normalized area of the box.
func (b BBoxN) Area() float64 { return b.Width() * b.Height() }

// CenterY returns the vertical center of the box.
func (b BBoxN) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// Union returns the smallest box containing both b and o.
func (b BBoxN) Union(o BBoxN) BBoxN {
	if b == (BBoxN{}) {
		return o
	}
	if o == (BBoxN{}) {
		return b
	}
	u := b
	if o.X0 < u.X0 {
		u.X0 = o.X0
	}
	if o.Y0 < u.Y0 {
		u.Y0 = o.Y0
	}
	if o.X1 > u.X1 {
		u.X1 = o.X1
	}
	if o.Y1 > u.Y1 {
		u.Y1 = o.Y1
	}
	return u
}

// Word is a single word placed on a page. Words are owned by their
// page and never mutated after ingestion.
type Word struct {
	Text   string  `json:"text"`
	Font   string  `json:"font,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	BBox   BBox    `json:"bbox"`
	BBoxN  BBoxN   `json:"bboxN"`
	Page   int     `json:"page1"` // 1-based page number
}

// Page is one analyzed page: size, raw text and the ordered word list,
// plus the analyzer's header/footer text candidates.
type Page struct {
	Number           int      `json:"pageNumber"` // 1-based
	Width            float64  `json:"width"`
	Height           float64  `json:"height"`
	Text             string   `json:"text"`
	Words            []Word   `json:"words"`
	HeaderCandidates []string `json:"headerCandidates,omitempty"`
	FooterCandidates []string `json:"footerCandidates,omitempty"`
	Fonts            []string `json:"fonts,omitempty"`
}

// Bookmark is a node of the document outline tree.
type Bookmark struct {
	Title    string     `json:"title"`
	Level    int        `json:"level"`
	Page     int        `json:"page1"` // 1-based target page
	Children []Bookmark `json:"children,omitempty"`
}

// Analysis is one analyzed PDF: the full page list and the bookmark tree.
type Analysis struct {
	Source        string     `json:"source"`
	ProcessNumber string     `json:"processNumber,omitempty"`
	Pages         []Page     `json:"pages"`
	Bookmarks     []Bookmark `json:"bookmarks,omitempty"`
}

// PageCount returns the number of pages in the analysis.
func (a *Analysis) PageCount() int { return len(a.Pages) }

// PageByNumber returns the page with the given 1-based number, or nil.
func (a *Analysis) PageByNumber(n int) *Page {
	for i := range a.Pages {
		if a.Pages[i].Number == n {
			return &a.Pages[i]
		}
	}
	return nil
}

// FlatBookmark is a bookmark flattened out of the outline tree.
type FlatBookmark struct {
	Title string
	Level int
	Page  int
}

// FlattenBookmarks walks the outline tree depth-first and returns
// (title, level, page) triples ordered by target page.
func FlattenBookmarks(bms []Bookmark) []FlatBookmark {
	var out []FlatBookmark
	var walk func(nodes []Bookmark, level int)
	walk = func(nodes []Bookmark, level int) {
		for _, bm := range nodes {
			lvl := bm.Level
			if lvl == 0 {
				lvl = level
			}
			out = append(out, FlatBookmark{Title: bm.Title, Level: lvl, Page: bm.Page})
			walk(bm.Children, level+1)
		}
	}
	walk(bms, 1)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}
