package region

import (
	"strings"
	"testing"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/boundary"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/layout"
	"github.com/pbaptista/diesp/internal/testutil"
)

func newTestBuilder() *Builder {
	cfg := config.DefaultConfig()
	return NewBuilder(cfg.Lexicons, layout.DefaultThresholds(), layout.DefaultOptions())
}

func despachoDoc() *analysis.Analysis {
	p1 := testutil.Page(1,
		testutil.Line(1, 0.96, 0.10, "PODER JUDICIÁRIO"),
		testutil.Line(1, 0.80, 0.10, "DESPACHO"),
		testutil.Line(1, 0.70, 0.10, "Processo nº 2024.000111 Interessada: Maria Souza"),
		testutil.Line(1, 0.60, 0.10, "Trata-se de pedido de pagamento de honorários periciais."),
	)
	p2 := testutil.Page(2,
		testutil.Line(2, 0.40, 0.10, "Autorizo a despesa no valor de R$ 470,00 em favor da perita."),
		testutil.Line(2, 0.22, 0.10, "Documento assinado eletronicamente por João Batista"),
		testutil.Line(2, 0.21, 0.10, "João Batista, Diretor Especial"),
	)
	p3 := testutil.Page(3,
		testutil.Line(3, 0.60, 0.10, "Anexo: tabela de valores de referência."),
	)
	return testutil.Doc("regiao.json", p1, p2, p3)
}

func regionByName(t *testing.T, regions []Region, name string) *Region {
	t.Helper()
	for i := range regions {
		if regions[i].Name == name {
			return &regions[i]
		}
	}
	t.Fatalf("region %q not built, got %d regions", name, len(regions))
	return nil
}

func TestBuild(t *testing.T) {
	b := newTestBuilder()
	res := b.Build(despachoDoc(), boundary.Window{Start: 1, End: 3})

	if res.SignaturePage != 2 {
		t.Errorf("SignaturePage = %d, want 2", res.SignaturePage)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
	if len(res.Bands) == 0 || len(res.Paragraphs) == 0 {
		t.Fatalf("Build() bands = %d, paragraphs = %d, want both populated", len(res.Bands), len(res.Paragraphs))
	}

	t.Run("first_top_joins_letterhead_and_opening", func(t *testing.T) {
		first := regionByName(t, res.Regions, NameFirstTop)
		if first.Page != 1 {
			t.Errorf("first_top page = %d, want 1", first.Page)
		}
		for _, want := range []string{"PODER JUDICIÁRIO", "DESPACHO", "Processo nº 2024.000111"} {
			if !strings.Contains(first.Text, want) {
				t.Errorf("first_top text missing %q:\n%s", want, first.Text)
			}
		}
		if strings.Contains(first.Text, "Trata-se") {
			t.Errorf("first_top absorbed a non-opening paragraph:\n%s", first.Text)
		}
	})

	t.Run("last_bottom_is_signature_block", func(t *testing.T) {
		last := regionByName(t, res.Regions, NameLastBottom)
		if last.Page != 2 {
			t.Errorf("last_bottom page = %d, want 2", last.Page)
		}
		for _, want := range []string{"Documento assinado eletronicamente", "Diretor Especial"} {
			if !strings.Contains(last.Text, want) {
				t.Errorf("last_bottom text missing %q:\n%s", want, last.Text)
			}
		}
		if strings.Contains(last.Text, "Autorizo a despesa") {
			t.Errorf("last_bottom absorbed the decision paragraph:\n%s", last.Text)
		}
	})

	t.Run("region_bbox_is_normalized_union", func(t *testing.T) {
		first := regionByName(t, res.Regions, NameFirstTop)
		if first.BBox.Y1 <= first.BBox.Y0 || first.BBox.X1 <= first.BBox.X0 {
			t.Errorf("degenerate bbox %+v", first.BBox)
		}
	})
}

func TestBuildBottomDisabled(t *testing.T) {
	b := newTestBuilder()
	res := b.Build(despachoDoc(), boundary.Window{Start: 1, End: 3, BottomDisabled: true})

	for _, r := range res.Regions {
		if r.Name == NameLastBottom {
			t.Fatalf("last_bottom built despite BottomDisabled")
		}
	}
	regionByName(t, res.Regions, NameFirstTop)
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

func TestBuildWarnsOnEmptySignatureRegion(t *testing.T) {
	// Single page with letterhead only: no body or footer words for
	// the signature region.
	doc := testutil.Doc("vazio.json", testutil.Page(1,
		testutil.Line(1, 0.96, 0.10, "PODER JUDICIÁRIO"),
	))
	b := newTestBuilder()
	res := b.Build(doc, boundary.Window{Start: 1, End: 1})

	found := false
	for _, w := range res.Warnings {
		if w == WarnMissingLastBottom {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want %q", res.Warnings, WarnMissingLastBottom)
	}
}

func TestSignaturePageDefaultsToWindowEnd(t *testing.T) {
	doc := testutil.Doc("anexos.json",
		testutil.Page(1, testutil.Line(1, 0.60, 0.10, "Primeira página sem assinatura.")),
		testutil.Page(2, testutil.Line(2, 0.60, 0.10, "Segunda página sem assinatura.")),
	)
	b := newTestBuilder()
	if got := b.SignaturePage(doc, boundary.Window{Start: 1, End: 2}); got != 2 {
		t.Errorf("SignaturePage() = %d, want window end 2", got)
	}
}

func TestFindCertidao(t *testing.T) {
	filler := testutil.Page(1,
		testutil.Line(1, 0.60, 0.10, "Relatório de andamento processual sem relação com certidões."),
	)
	cert := testutil.Page(2,
		testutil.Line(2, 0.60, 0.10, "CERTIDÃO Certifico que o Conselho da Magistratura, em sessão"),
		testutil.Line(2, 0.58, 0.10, "realizada em 12/03/2024, apreciou o processo nº 0801234-56.2023.8.15.2001"),
		testutil.Line(2, 0.56, 0.10, "e fixou os honorários periciais em R$ 370,00."),
	)
	doc := testutil.Doc("certidao.json", filler, cert)
	b := newTestBuilder()

	m, ok := b.FindCertidao(doc, 0.6)
	if !ok {
		t.Fatal("FindCertidao() = false, want a match")
	}
	if m.Page != 2 {
		t.Errorf("Page = %d, want 2", m.Page)
	}
	if m.Score < 0.6 {
		t.Errorf("Score = %.2f, want >= 0.6", m.Score)
	}
	if !strings.Contains(m.Full.Text, "Conselho da Magistratura") {
		t.Errorf("full region missing certificate text:\n%s", m.Full.Text)
	}

	t.Run("value_date_region_keeps_token_paragraphs", func(t *testing.T) {
		for _, want := range []string{"R$ 370,00", "12/03/2024"} {
			if !strings.Contains(m.ValueDate.Text, want) {
				t.Errorf("value_date region missing %q:\n%s", want, m.ValueDate.Text)
			}
		}
		if strings.Contains(m.ValueDate.Text, "Certifico") {
			t.Errorf("value_date region absorbed the opening line:\n%s", m.ValueDate.Text)
		}
	})

	t.Run("threshold_rejects_weak_match", func(t *testing.T) {
		if _, ok := b.FindCertidao(doc, 0.99); ok {
			t.Error("FindCertidao() matched above an unreachable threshold")
		}
	})
}

func TestFindCertidaoNoTemplates(t *testing.T) {
	b := NewBuilder(config.Lexicons{}, layout.DefaultThresholds(), layout.DefaultOptions())
	if _, ok := b.FindCertidao(despachoDoc(), 0.1); ok {
		t.Error("FindCertidao() matched with no templates configured")
	}
}
