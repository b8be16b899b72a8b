// Package export writes extraction results to an XLSX workbook with a
// long per-field sheet, a wide per-document sheet and a fill-rate
// summary.
package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/pbaptista/diesp/internal/extractor"
	"github.com/pbaptista/diesp/internal/fields"
)

const (
	sheetLong    = "Campos"
	sheetWide    = "Documentos"
	sheetSummary = "Resumo"
)

// WriteXLSX writes the documents to a workbook at path.
func WriteXLSX(path string, docs []*extractor.Document, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := writeLong(f, docs); err != nil {
		return err
	}
	if err := writeWide(f, docs); err != nil {
		return err
	}
	if err := writeSummary(f, docs); err != nil {
		return err
	}
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheetLong); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	logger.Info("report written", "path", path, "documents", len(docs))
	return nil
}

func writeLong(f *excelize.File, docs []*extractor.Document) error {
	if _, err := f.NewSheet(sheetLong); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetLong, err)
	}
	header := []any{"Processo", "Arquivo", "Tipo", "Campo", "Valor", "Confiança", "Método", "Página"}
	if err := setRow(f, sheetLong, 1, header); err != nil {
		return err
	}
	row := 2
	for _, doc := range docs {
		for _, name := range fields.All {
			fld := doc.Fields[name]
			cells := []any{
				doc.ProcessNumber,
				doc.Source,
				string(doc.DocType),
				string(name),
				fld.Value,
				fld.Confidence,
				fld.Method,
				fld.Page,
			}
			if err := setRow(f, sheetLong, row, cells); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(sheetLong, "A", "E", 28)
}

func writeWide(f *excelize.File, docs []*extractor.Document) error {
	if _, err := f.NewSheet(sheetWide); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetWide, err)
	}
	header := []any{"Processo", "Arquivo", "Tipo", "Subtipo", "Páginas", "Score", "Avisos"}
	for _, name := range fields.All {
		header = append(header, string(name))
	}
	if err := setRow(f, sheetWide, 1, header); err != nil {
		return err
	}
	for i, doc := range docs {
		cells := []any{
			doc.ProcessNumber,
			doc.Source,
			string(doc.DocType),
			string(doc.Subtype),
			fmt.Sprintf("%d-%d", doc.StartPage1, doc.EndPage1),
			doc.MatchScore,
			len(doc.Warnings),
		}
		for _, name := range fields.All {
			cells = append(cells, doc.Fields.Value(name))
		}
		if err := setRow(f, sheetWide, i+2, cells); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetWide, "A", "B", 28)
}

func writeSummary(f *excelize.File, docs []*extractor.Document) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetSummary, err)
	}
	if err := setRow(f, sheetSummary, 1, []any{"Campo", "Preenchidos", "Total", "Taxa"}); err != nil {
		return err
	}
	total := len(docs)
	for i, name := range fields.All {
		found := 0
		for _, doc := range docs {
			if doc.Fields.Found(name) {
				found++
			}
		}
		rate := 0.0
		if total > 0 {
			rate = float64(found) / float64(total)
		}
		cells := []any{string(name), found, total, rate}
		if err := setRow(f, sheetSummary, i+2, cells); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetSummary, "A", "A", 28)
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
