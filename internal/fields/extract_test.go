package fields

import (
	"testing"

	"github.com/pbaptista/diesp/internal/region"
	"github.com/pbaptista/diesp/internal/testutil"
)

func despachoInput() Input {
	p1 := testutil.Page(1,
		testutil.Line(1, 0.96, 0.10, "PODER JUDICIÁRIO"),
		testutil.Line(1, 0.80, 0.10, "DESPACHO"),
		testutil.Line(1, 0.70, 0.10, "Processo nº 2024.012345"),
		testutil.Line(1, 0.68, 0.10, "Interessado: Dra. Maria de Souza – Médica Psiquiatra"),
		testutil.Line(1, 0.66, 0.10, "Perita: Maria de Souza, CPF nº 123.456.789-01, em parcela única."),
		testutil.Line(1, 0.60, 0.10, "Nos autos do processo nº 0801234-56.2023.8.15.2001 da 3ª Vara Cível"),
		testutil.Line(1, 0.58, 0.10, "da Comarca de João Pessoa, movido por João Pereira, CPF 111.222.333-44,"),
		testutil.Line(1, 0.56, 0.10, "em face de Construtora Alfa Ltda, CNPJ 12.345.678/0001-99,"),
		testutil.Line(1, 0.54, 0.10, "honorários arbitrados pelo juízo no valor de R$ 500,00."),
	)
	p2 := testutil.Page(2,
		testutil.Line(2, 0.60, 0.10, "Autorizo a despesa no valor de R$ 470,00."),
		testutil.Line(2, 0.20, 0.10, "Documento assinado eletronicamente por Carlos Andrade, em 15/03/2024."),
	)
	a := testutil.Doc("caso.json", p1, p2)

	firstTop := &region.Region{
		Name: region.NameFirstTop,
		Page: 1,
		Text: "PODER JUDICIÁRIO\nDESPACHO\nProcesso nº 2024.012345\nInteressado: Dra. Maria de Souza – Médica Psiquiatra",
	}
	lastBottom := &region.Region{
		Name: region.NameLastBottom,
		Page: 2,
		Text: "Autorizo a despesa no valor de R$ 470,00.\nDocumento assinado eletronicamente por Carlos Andrade, em 15/03/2024.",
	}
	return Input{
		Analysis:      a,
		FirstTop:      firstTop,
		LastBottom:    lastBottom,
		StartPage:     1,
		EndPage:       2,
		SignaturePage: 2,
	}
}

func TestExtract(t *testing.T) {
	m := NewExtractor(nil).Extract(despachoInput())

	want := map[Name]string{
		ProcessoAdministrativo: "2024.012345",
		ProcessoJudicial:       "0801234-56.2023.8.15.2001",
		Comarca:                "João Pessoa",
		Promovente:             "João Pereira",
		Promovido:              "Construtora Alfa Ltda",
		Perito:                 "Maria de Souza",
		CPFPerito:              "123.456.789-01",
		ValorArbitradoJZ:       "500.00",
		ValorArbitradoDE:       "470.00",
		Parcela:                "1",
		Data:                   "2024-03-15",
		Assinante:              "Carlos Andrade",
	}
	for name, value := range want {
		if got := m.Value(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}

	t.Run("region_scope_beats_window", func(t *testing.T) {
		if m[ProcessoAdministrativo].Method != "processo_label_first_top" {
			t.Errorf("method = %q, want first_top strategy", m[ProcessoAdministrativo].Method)
		}
		if m[ProcessoAdministrativo].Page != 1 {
			t.Errorf("page = %d, want 1", m[ProcessoAdministrativo].Page)
		}
	})

	t.Run("signature_fields_from_last_bottom", func(t *testing.T) {
		if m[Assinante].Method != "assinado_por" {
			t.Errorf("Assinante method = %q", m[Assinante].Method)
		}
		if m[Assinante].Page != 2 {
			t.Errorf("Assinante page = %d, want 2", m[Assinante].Page)
		}
	})

	t.Run("absent_fields_keep_sentinels", func(t *testing.T) {
		for _, name := range []Name{EspecieDaPericia, Adiantamento} {
			f := m[name]
			if f.Value != Missing || f.Method != MethodNotFound {
				t.Errorf("%s = (%q, %q), want sentinels", name, f.Value, f.Method)
			}
		}
	})

	t.Run("evidence_present", func(t *testing.T) {
		ev := m[ProcessoJudicial].Evidence
		if ev == nil || ev.Snippet == "" {
			t.Fatal("missing evidence for ProcessoJudicial")
		}
	})
}

func TestExtractWithoutRegions(t *testing.T) {
	in := despachoInput()
	in.FirstTop = nil
	in.LastBottom = nil

	m := NewExtractor(nil).Extract(in)
	if got := m.Value(ProcessoAdministrativo); got != "2024.012345" {
		t.Errorf("ProcessoAdministrativo = %q (window fallback)", got)
	}
	if m[ProcessoAdministrativo].Method != "processo_label_window" {
		t.Errorf("method = %q, want window fallback", m[ProcessoAdministrativo].Method)
	}
	if got := m.Value(Assinante); got != "Carlos Andrade" {
		t.Errorf("Assinante = %q", got)
	}
}
