package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/pbaptista/diesp/internal/doctype"
	"github.com/pbaptista/diesp/internal/extractor"
	"github.com/pbaptista/diesp/internal/fields"
)

func reportDocs() []*extractor.Document {
	m1 := fields.NewMap()
	m1[fields.ProcessoAdministrativo] = fields.Field{Value: "2024.012345", Confidence: 0.9, Method: "processo_label_first_top", Page: 2}
	m1[fields.ValorArbitradoDE] = fields.Field{Value: "470.00", Confidence: 0.9, Method: "autorizo_despesa", Page: 3}

	m2 := fields.NewMap()
	m2[fields.ProcessoAdministrativo] = fields.Field{Value: "2024.054321", Confidence: 0.6, Method: "processo_label_window", Page: 1}

	return []*extractor.Document{
		{
			Source:        "caso-a.json",
			ProcessNumber: "2024.012345",
			DocType:       doctype.DespachoAutorizacao,
			StartPage1:    2,
			EndPage1:      3,
			MatchScore:    0.8,
			Fields:        m1,
		},
		{
			Source:        "caso-b.json",
			ProcessNumber: "2024.054321",
			DocType:       doctype.Desconhecido,
			StartPage1:    1,
			EndPage1:      1,
			MatchScore:    0.4,
			Fields:        m2,
			Warnings:      []string{"below_match_threshold"},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relatorio.xlsx")
	if err := WriteXLSX(path, reportDocs(), nil); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	cell := func(sheet, ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s!%s) error = %v", sheet, ref, err)
		}
		return v
	}

	t.Run("sheets", func(t *testing.T) {
		want := map[string]bool{"Campos": false, "Documentos": false, "Resumo": false}
		for _, name := range f.GetSheetList() {
			if _, ok := want[name]; ok {
				want[name] = true
			}
			if name == "Sheet1" {
				t.Error("default Sheet1 not removed")
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("sheet %s missing", name)
			}
		}
	})

	t.Run("long_sheet", func(t *testing.T) {
		if got := cell("Campos", "A1"); got != "Processo" {
			t.Errorf("A1 = %q, want Processo", got)
		}
		// One row per catalog field per document.
		rows, err := f.GetRows("Campos")
		if err != nil {
			t.Fatal(err)
		}
		if want := 1 + 2*len(fields.All); len(rows) != want {
			t.Errorf("Campos rows = %d, want %d", len(rows), want)
		}
		if got := cell("Campos", "B2"); got != "caso-a.json" {
			t.Errorf("B2 = %q, want caso-a.json", got)
		}
	})

	t.Run("wide_sheet", func(t *testing.T) {
		if got := cell("Documentos", "A2"); got != "2024.012345" {
			t.Errorf("A2 = %q, want 2024.012345", got)
		}
		if got := cell("Documentos", "E2"); got != "2-3" {
			t.Errorf("E2 = %q, want 2-3", got)
		}
		if got := cell("Documentos", "A3"); got != "2024.054321" {
			t.Errorf("A3 = %q, want 2024.054321", got)
		}
	})

	t.Run("summary_rates", func(t *testing.T) {
		rows, err := f.GetRows("Resumo")
		if err != nil {
			t.Fatal(err)
		}
		if want := 1 + len(fields.All); len(rows) != want {
			t.Fatalf("Resumo rows = %d, want %d", len(rows), want)
		}
		found := false
		for _, row := range rows[1:] {
			if len(row) >= 3 && row[0] == string(fields.ProcessoAdministrativo) {
				found = true
				if row[1] != "2" || row[2] != "2" {
					t.Errorf("fill counts = %v/%v, want 2/2", row[1], row[2])
				}
			}
		}
		if !found {
			t.Error("no summary row for the process-number field")
		}
	})
}

func TestWriteXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vazio.xlsx")
	if err := WriteXLSX(path, nil, nil); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Campos")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("Campos rows = %d, want header only", len(rows))
	}
}
