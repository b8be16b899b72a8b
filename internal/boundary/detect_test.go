package boundary

import (
	"errors"
	"testing"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/testutil"
)

// despachoPage builds a page carrying the letterhead and authorization
// text the default lexicons anchor on.
func despachoPage(n int) analysis.Page {
	return testutil.Page(n,
		testutil.Line(n, 0.96, 0.10, "PODER JUDICIÁRIO"),
		testutil.Line(n, 0.88, 0.10, "DIRETORIA ESPECIAL"),
		testutil.Line(n, 0.80, 0.10, "DESPACHO"),
		testutil.Line(n, 0.60, 0.10, "Autorizo a despesa com honorários periciais"),
		testutil.Line(n, 0.55, 0.10, "nos autos do processo nº 0801234-56.2023.8.15.2001 movido na Comarca"),
		testutil.Line(n, 0.50, 0.10, "de João Pessoa, arbitrados no valor de R$ 500,00 em favor do perito"),
		testutil.Line(n, 0.45, 0.10, "nomeado nos autos, conforme tabela de honorários vigente"),
		testutil.Line(n, 0.05, 0.10, "Documento assinado eletronicamente"),
	)
}

func fillerPage(n int) analysis.Page {
	return testutil.Page(n,
		testutil.Line(n, 0.60, 0.10, "conteúdo qualquer de outra peça processual"),
	)
}

func defaultDetector() *Detector {
	cfg := config.DefaultConfig()
	return NewDetector(cfg.Lexicons, cfg.Window, nil)
}

func TestDetectBookmarkWindow(t *testing.T) {
	a := testutil.Doc("caso.json",
		fillerPage(1), fillerPage(2), fillerPage(3), fillerPage(4),
		despachoPage(5), despachoPage(6), despachoPage(7),
		fillerPage(8),
	)
	a.Bookmarks = []analysis.Bookmark{
		{Title: "Petição Inicial", Page: 1},
		{Title: "Despacho DIESP nº 12/2024", Page: 5},
		{Title: "Certidão", Page: 8},
	}

	best, candidates, warnings, err := defaultDetector().Detect(a)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if best.Source != SourceBookmark {
		t.Errorf("Source = %q, want %q", best.Source, SourceBookmark)
	}
	if best.Start != 5 || best.End != 7 {
		t.Errorf("window = [%d,%d], want [5,7]", best.Start, best.End)
	}
	if best.Subtype != SubtypeAutorizacao {
		t.Errorf("Subtype = %q, want %q", best.Subtype, SubtypeAutorizacao)
	}
	if len(best.AnchorsHit) == 0 {
		t.Error("no anchors hit on a despacho window")
	}
	if len(candidates) != 1 {
		t.Errorf("candidates = %d, want 1 (only the matching bookmark)", len(candidates))
	}
	for _, w := range warnings {
		if w != WarnBelowThreshold {
			t.Errorf("unexpected warning %q", w)
		}
	}
}

func TestDetectHeuristicFallback(t *testing.T) {
	// No bookmarks at all: the densest pages seed fixed-size windows.
	a := testutil.Doc("caso.json",
		fillerPage(1),
		despachoPage(2), despachoPage(3),
		fillerPage(4),
	)

	best, candidates, _, err := defaultDetector().Detect(a)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if best.Source != SourceHeuristic {
		t.Errorf("Source = %q, want %q", best.Source, SourceHeuristic)
	}
	if len(candidates) < 2 {
		t.Errorf("candidates = %d, want several heuristic sizes", len(candidates))
	}
	if best.Start > 2 || best.End < 3 {
		t.Errorf("window = [%d,%d], want to cover pages 2-3", best.Start, best.End)
	}
}

func TestDetectNoCandidates(t *testing.T) {
	// One near-empty page: no bookmarks, density below the minimum.
	a := testutil.Doc("vazio.json", testutil.Page(1, testutil.Line(1, 0.5, 0.1, "x")))

	_, _, _, err := defaultDetector().Detect(a)
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("Detect() error = %v, want ErrNoCandidates", err)
	}
}

func TestDetectEncaminhamentoSubtype(t *testing.T) {
	forward := testutil.Page(2,
		testutil.Line(2, 0.96, 0.10, "PODER JUDICIÁRIO"),
		testutil.Line(2, 0.80, 0.10, "DESPACHO"),
		testutil.Line(2, 0.60, 0.10, "Encaminhem-se os autos ao Conselho da Magistratura"),
	)
	a := testutil.Doc("caso.json", fillerPage(1), forward, despachoPage(3))
	a.Bookmarks = []analysis.Bookmark{{Title: "Despacho", Page: 2}}
	// Strip the authorization text so the council branch is taken.
	a.Pages[2] = fillerPage(3)

	best, _, _, err := defaultDetector().Detect(a)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if best.Subtype != SubtypeEncaminhamentoCM {
		t.Fatalf("Subtype = %q, want %q", best.Subtype, SubtypeEncaminhamentoCM)
	}
	if best.Start != best.End {
		t.Errorf("window = [%d,%d], want collapsed to one page", best.Start, best.End)
	}
	if !best.BottomDisabled {
		t.Error("BottomDisabled = false, want true")
	}
}

func TestWindowBest(t *testing.T) {
	w := Window{EditScore: 0.4, LineScore: 0.7}
	if w.Best() != 0.7 {
		t.Errorf("Best() = %v, want 0.7", w.Best())
	}
	if (Window{Start: 3, End: 5}).Pages() != 3 {
		t.Error("Pages() miscounts inclusive range")
	}
}
