// Package ingest loads analyzer JSON files, validates them against the
// analyzer contract and optionally cross-checks them against the PDF
// they were produced from.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pbaptista/diesp/internal/analysis"
)

// Load reads and validates one analyzer JSON file. The source field
// defaults to the file path when the payload leaves it empty.
func Load(path string) (*analysis.Analysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis %s: %w", path, err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("invalid analysis %s: %w", path, err)
	}

	var a analysis.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", path, err)
	}
	if a.Source == "" {
		a.Source = path
	}
	sort.Slice(a.Pages, func(i, j int) bool { return a.Pages[i].Number < a.Pages[j].Number })
	stampWordPages(&a)
	return &a, nil
}

// stampWordPages fills the owning page number on words that omit it.
func stampWordPages(a *analysis.Analysis) {
	for pi := range a.Pages {
		page := &a.Pages[pi]
		for wi := range page.Words {
			if page.Words[wi].Page == 0 {
				page.Words[wi].Page = page.Number
			}
		}
	}
}

// VerifyPageCount checks the analysis page count against the source
// PDF. A mismatch means the analyzer ran on a different revision of
// the file.
func VerifyPageCount(ctx context.Context, pdfPath string, a *analysis.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	count, err := api.PageCountFile(pdfPath)
	if err != nil {
		return fmt.Errorf("page count of %s: %w", pdfPath, err)
	}
	if count != a.PageCount() {
		return fmt.Errorf("page count mismatch: pdf %s has %d pages, analysis has %d",
			filepath.Base(pdfPath), count, a.PageCount())
	}
	return nil
}

// Discover lists the analyzer JSON files under dir, sorted by name.
func Discover(dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	logger.Debug("discovered analyses", "dir", dir, "count", len(paths))
	return paths, nil
}
