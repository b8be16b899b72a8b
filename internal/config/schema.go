package config

import (
	"fmt"

	"github.com/pbaptista/diesp/internal/layout"
)

// Config holds diesp configuration.
// Loaded from: ./config.yaml or ~/.diesp/config.yaml
type Config struct {
	Workers   int               `mapstructure:"workers" yaml:"workers"` // concurrent analyses
	Lexicons  Lexicons          `mapstructure:"lexicons" yaml:"lexicons"`
	Layout    LayoutCfg         `mapstructure:"layout" yaml:"layout"`
	Bands     layout.Thresholds `mapstructure:"bands" yaml:"bands"`
	Window    WindowCfg         `mapstructure:"window" yaml:"window"`
	Reconcile ReconcileCfg      `mapstructure:"reconcile" yaml:"reconcile"`
	Catalogs  CatalogPaths      `mapstructure:"catalogs" yaml:"catalogs"`
}

// Lexicons are the anchor-phrase lists driving document detection,
// template scoring and region selection. All matching is
// case/diacritic-insensitive substring containment.
type Lexicons struct {
	// Band anchors, also concatenated into the scoring template.
	Header    []string `mapstructure:"header" yaml:"header"`
	Subheader []string `mapstructure:"subheader" yaml:"subheader"`
	Title     []string `mapstructure:"title" yaml:"title"`
	Footer    []string `mapstructure:"footer" yaml:"footer"`

	// DespachoTitles filters bookmark-sourced candidate windows.
	DespachoTitles []string `mapstructure:"despacho_titles" yaml:"despacho_titles"`
	// HeuristicHints mark bookmarks that seed heuristic windows.
	HeuristicHints []string `mapstructure:"heuristic_hints" yaml:"heuristic_hints"`

	// Signer detection on the signature page.
	SignerHints          []string `mapstructure:"signer_hints" yaml:"signer_hints"`
	DirectorSigners      []string `mapstructure:"director_signers" yaml:"director_signers"`
	SignatureBoilerplate []string `mapstructure:"signature_boilerplate" yaml:"signature_boilerplate"`

	// Subtype split.
	AuthorizationHints []string `mapstructure:"authorization_hints" yaml:"authorization_hints"`
	CouncilHints       []string `mapstructure:"council_hints" yaml:"council_hints"`
	ForwardVerbs       []string `mapstructure:"forward_verbs" yaml:"forward_verbs"`

	// Priority-ordered body-paragraph label lists for the first_top region.
	ProcessLabels []string `mapstructure:"process_labels" yaml:"process_labels"`
	ExpertLabels  []string `mapstructure:"expert_labels" yaml:"expert_labels"`
	VenueLabels   []string `mapstructure:"venue_labels" yaml:"venue_labels"`
	ComarcaLabels []string `mapstructure:"comarca_labels" yaml:"comarca_labels"`

	// Certificate page templates; {{NAME}} placeholders are stripped
	// before comparison.
	CertidaoTemplates []string `mapstructure:"certidao_templates" yaml:"certidao_templates"`

	// Laudo likelihood keywords for the type classifier.
	LaudoKeywords []string `mapstructure:"laudo_keywords" yaml:"laudo_keywords"`
}

// LayoutCfg carries the line/paragraph clustering tolerances.
type LayoutCfg struct {
	LineMergeY    float64 `mapstructure:"line_merge_y" yaml:"line_merge_y"`
	WordGapX      float64 `mapstructure:"word_gap_x" yaml:"word_gap_x"`
	ParagraphGapY float64 `mapstructure:"paragraph_gap_y" yaml:"paragraph_gap_y"`
}

// Options converts the config into layout options.
func (l LayoutCfg) Options() layout.Options {
	return layout.Options{
		LineMergeY:    l.LineMergeY,
		WordGapX:      l.WordGapX,
		ParagraphGapY: l.ParagraphGapY,
	}
}

// WindowCfg bounds candidate-window generation and selection.
type WindowCfg struct {
	MinPages        int     `mapstructure:"min_pages" yaml:"min_pages"`
	MaxPages        int     `mapstructure:"max_pages" yaml:"max_pages"`
	MinScore        float64 `mapstructure:"min_score" yaml:"min_score"`
	HeuristicSizes  []int   `mapstructure:"heuristic_sizes" yaml:"heuristic_sizes"`
	MinDensity      float64 `mapstructure:"min_density" yaml:"min_density"`
	DensityTopPages int     `mapstructure:"density_top_pages" yaml:"density_top_pages"`
}

// ReconcileCfg tunes the cross-field reconciliation pass.
type ReconcileCfg struct {
	// TolerancePct is the accepted deviation between an arbitrated
	// value and the honorarium-table amount, in percent.
	TolerancePct      float64 `mapstructure:"tolerance_pct" yaml:"tolerance_pct"`
	SpecialtyMaxLen   int     `mapstructure:"specialty_max_len" yaml:"specialty_max_len"`
	SpecialtyMaxWords int     `mapstructure:"specialty_max_words" yaml:"specialty_max_words"`
	// SpecialtyAreas maps a canonical area to the keywords that
	// resolve free text onto it.
	SpecialtyAreas map[string][]string `mapstructure:"specialty_areas" yaml:"specialty_areas"`
}

// CatalogPaths point at the reference catalog files.
type CatalogPaths struct {
	HashDB     string `mapstructure:"hashdb" yaml:"hashdb"`
	Honorarium string `mapstructure:"honorarium" yaml:"honorarium"`
	Roster     string `mapstructure:"roster" yaml:"roster"`
}

// Validate rejects configurations the pipeline cannot run with.
// Malformed configuration aborts the whole run, unlike data-quality
// issues, which never do.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Window.MinPages <= 0 || c.Window.MaxPages < c.Window.MinPages {
		return fmt.Errorf("window pages out of order: min=%d max=%d", c.Window.MinPages, c.Window.MaxPages)
	}
	if c.Window.MinScore < 0 || c.Window.MinScore > 1 {
		return fmt.Errorf("window min_score must be in [0,1], got %v", c.Window.MinScore)
	}
	if len(c.Lexicons.Header) == 0 && len(c.Lexicons.Title) == 0 {
		return fmt.Errorf("lexicons need at least one header or title anchor")
	}
	if c.Layout.LineMergeY <= 0 || c.Layout.ParagraphGapY <= 0 {
		return fmt.Errorf("layout tolerances must be positive")
	}
	if len(c.Bands.Body) == 0 {
		return fmt.Errorf("bands need at least one body cut")
	}
	prev := c.Bands.Header
	for _, cut := range append([]float64{c.Bands.Subheader, c.Bands.Title}, c.Bands.Body...) {
		if cut >= prev {
			return fmt.Errorf("band thresholds must strictly descend")
		}
		prev = cut
	}
	if c.Reconcile.TolerancePct < 0 || c.Reconcile.TolerancePct > 100 {
		return fmt.Errorf("reconcile tolerance_pct must be in [0,100], got %v", c.Reconcile.TolerancePct)
	}
	return nil
}
