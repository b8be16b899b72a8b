// Package extractor orchestrates one full extraction run: boundary
// detection, region building, field extraction, classification and
// reconciliation, producing a single Document per analysis.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/boundary"
	"github.com/pbaptista/diesp/internal/catalog"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/doctype"
	"github.com/pbaptista/diesp/internal/fields"
	"github.com/pbaptista/diesp/internal/layout"
	"github.com/pbaptista/diesp/internal/reconcile"
	"github.com/pbaptista/diesp/internal/region"
)

// Document is the frozen result of one extraction run.
type Document struct {
	Source        string             `json:"source,omitempty"`
	ProcessNumber string             `json:"processNumber,omitempty"`
	DocType       doctype.Type       `json:"docType"`
	Subtype       boundary.Subtype   `json:"subtype,omitempty"`
	StartPage1    int                `json:"startPage1"`
	EndPage1      int                `json:"endPage1"`
	MatchScore    float64            `json:"matchScore"`
	Fields        fields.Map         `json:"fields"`
	Warnings      []string           `json:"warnings,omitempty"`
	Bands         []layout.Band      `json:"-"`
	Paragraphs    []layout.Paragraph `json:"-"`
	Regions       []region.Region    `json:"-"`

	Diagnostics Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics keeps the discarded candidates and the classifier
// verdict for inspection.
type Diagnostics struct {
	Candidates []boundary.Window `json:"candidates,omitempty"`
	Classifier doctype.Result    `json:"classifier"`
	WindowHash string            `json:"windowHash,omitempty"`
}

// Pipeline wires the extraction stages over one configuration and one
// shared catalog set. A pipeline is safe for concurrent use.
type Pipeline struct {
	detector   *boundary.Detector
	regions    *region.Builder
	extractor  *fields.Extractor
	classifier *doctype.Classifier
	reconciler *reconcile.Reconciler
	minScore   float64
	logger     *slog.Logger
}

// New assembles a pipeline. Catalogs may be nil for a catalog-free run.
func New(cfg *config.Config, cats *catalog.Catalogs, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cats == nil {
		cats = catalog.Empty()
	}
	opts := cfg.Layout.Options()
	return &Pipeline{
		detector:   boundary.NewDetector(cfg.Lexicons, cfg.Window, logger),
		regions:    region.NewBuilder(cfg.Lexicons, cfg.Bands, opts),
		extractor:  fields.NewExtractor(logger),
		classifier: doctype.NewClassifier(cfg.Lexicons, logger),
		reconciler: reconcile.New(cfg.Reconcile, cats, logger),
		minScore:   cfg.Window.MinScore,
		logger:     logger.With("component", "extractor"),
	}
}

// Run extracts one document from the analysis. The only error is the
// boundary detector finding no candidate window at all; every
// data-quality problem downstream degrades to warnings and sentinel
// field values instead.
func (p *Pipeline) Run(ctx context.Context, a *analysis.Analysis) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	best, candidates, warnings, err := p.detector.Detect(a)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", a.Source, err)
	}

	regs := p.regions.Build(a, best)
	warnings = append(warnings, regs.Warnings...)

	var cert *region.CertidaoMatch
	if m, ok := p.regions.FindCertidao(a, p.minScore); ok {
		cert = &m
		regs.Regions = append(regs.Regions, m.Full)
		if len(m.ValueDate.Words) > 0 {
			regs.Regions = append(regs.Regions, m.ValueDate)
		}
	}

	in := fields.Input{
		Analysis:      a,
		FirstTop:      regionByName(regs.Regions, region.NameFirstTop),
		LastBottom:    regionByName(regs.Regions, region.NameLastBottom),
		StartPage:     best.Start,
		EndPage:       best.End,
		SignaturePage: regs.SignaturePage,
	}
	fm := p.extractor.Extract(in)

	verdict := p.classifier.Classify(a, best, &regs, cert)
	if verdict.Hints != nil {
		p.reconciler.ApplyHints(fm, verdict.Hints)
	}

	hash := layout.ContentHash(boundary.WindowText(a, best.Start, best.End))
	warnings = append(warnings, p.reconciler.Run(fm, hash)...)

	doc := &Document{
		Source:        a.Source,
		ProcessNumber: a.ProcessNumber,
		DocType:       verdict.Type,
		Subtype:       best.Subtype,
		StartPage1:    best.Start,
		EndPage1:      best.End,
		MatchScore:    best.Best(),
		Fields:        fm,
		Warnings:      warnings,
		Bands:         regs.Bands,
		Paragraphs:    regs.Paragraphs,
		Regions:       regs.Regions,
		Diagnostics: Diagnostics{
			Candidates: candidates,
			Classifier: verdict,
			WindowHash: hash,
		},
	}
	p.logger.Info("document extracted",
		"source", a.Source,
		"type", doc.DocType,
		"window", fmt.Sprintf("%d-%d", doc.StartPage1, doc.EndPage1),
		"score", doc.MatchScore,
		"warnings", len(doc.Warnings))
	return doc, nil
}

func regionByName(regions []region.Region, name string) *region.Region {
	for i := range regions {
		if regions[i].Name == name {
			return &regions[i]
		}
	}
	return nil
}
