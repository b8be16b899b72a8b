package layout

import (
	"testing"

	"github.com/pbaptista/diesp/internal/analysis"
)

func bandPage() *analysis.Page {
	words := []analysis.Word{
		word("PODER", 0.10, 0.96),
		word("JUDICIÁRIO", 0.20, 0.96),
		word("DIRETORIA", 0.10, 0.88),
		word("DESPACHO", 0.10, 0.80),
		word("autorizo", 0.10, 0.60),
		word("despesa", 0.22, 0.60),
		word("perito", 0.10, 0.40),
		word("nomeado", 0.20, 0.40),
		word("assinado", 0.10, 0.15),
		word("GEORC", 0.10, 0.05),
	}
	p := analysis.Page{Number: 1, Width: 595, Height: 842, Words: words}
	return &p
}

func TestSegmentPage(t *testing.T) {
	bands := SegmentPage(bandPage(), DefaultThresholds(), DefaultOptions())

	byLabel := BandsByLabel(bands)
	cases := []struct {
		label string
		kind  BandKind
		text  string
	}{
		{"header", BandHeader, "PODER JUDICIÁRIO"},
		{"subheader", BandSubheader, "DIRETORIA"},
		{"title", BandTitle, "DESPACHO"},
		{"body-1", BandBody, "autorizo despesa"},
		{"body-2", BandBody, "perito nomeado"},
		{"body-3", BandBody, "assinado"},
		{"footer", BandFooter, "GEORC"},
	}
	for _, tc := range cases {
		b, ok := byLabel[tc.label]
		if !ok {
			t.Fatalf("band %q missing", tc.label)
		}
		if b.Kind != tc.kind {
			t.Errorf("band %q kind = %q, want %q", tc.label, b.Kind, tc.kind)
		}
		if b.Text != tc.text {
			t.Errorf("band %q text = %q, want %q", tc.label, b.Text, tc.text)
		}
	}

	t.Run("word_in_exactly_one_band", func(t *testing.T) {
		total := 0
		for _, b := range bands {
			total += len(b.Words)
		}
		if total != len(bandPage().Words) {
			t.Errorf("bands hold %d words, page has %d", total, len(bandPage().Words))
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		again := SegmentPage(bandPage(), DefaultThresholds(), DefaultOptions())
		if len(again) != len(bands) {
			t.Fatalf("second segmentation = %d bands, first = %d", len(again), len(bands))
		}
		for i := range bands {
			if bands[i].Hash != again[i].Hash {
				t.Errorf("band %q hash changed between runs", bands[i].Label)
			}
		}
	})

	t.Run("body_bands_in_order", func(t *testing.T) {
		body := BodyBands(bands)
		if len(body) != 3 {
			t.Fatalf("BodyBands() = %d, want 3", len(body))
		}
		if body[0].Label != "body-1" || body[2].Label != "body-3" {
			t.Errorf("body order = %q..%q", body[0].Label, body[len(body)-1].Label)
		}
	})
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("Autorizo a despesa do Perito, às custas, nº 123")
	want := []string{"autorizo", "despesa", "perito", "custas", "123"}
	if len(toks) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, toks[i], want[i])
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold("DIRETÓRIA Não"); got != "diretoria nao" {
		t.Errorf("Fold() = %q, want %q", got, "diretoria nao")
	}
	if !ContainsFolded("PODER JUDICIÁRIO DO ESTADO", "judiciario") {
		t.Error("ContainsFolded() missed diacritic-folded needle")
	}
	if !MatchesAny("encaminhem-se os autos", []string{"", "conselho", "encaminhem-se"}) {
		t.Error("MatchesAny() missed phrase")
	}
}
