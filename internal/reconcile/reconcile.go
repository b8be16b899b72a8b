// Package reconcile runs the cross-field consistency pass after
// initial extraction: arbitrated-value selection, specialty and
// species resolution against the catalogs, expert identity lookup and
// the known-report hash override.
package reconcile

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pbaptista/diesp/internal/catalog"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/fields"
	"github.com/pbaptista/diesp/internal/layout"
)

// WarnMissingProcess is recorded when neither process-number field was
// extracted.
const WarnMissingProcess = "missing_process_numbers"

// Reconciler applies the consistency pass to one field map.
type Reconciler struct {
	cfg    config.ReconcileCfg
	cats   *catalog.Catalogs
	logger *slog.Logger
}

// New builds a reconciler over the shared read-only catalogs.
func New(cfg config.ReconcileCfg, cats *catalog.Catalogs, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if cats == nil {
		cats = catalog.Empty()
	}
	return &Reconciler{cfg: cfg, cats: cats, logger: logger.With("component", "reconcile")}
}

// Run mutates the field map in place and returns soft warnings. The
// windowHash is the SHA-256 of the window's normalized full text.
func (r *Reconciler) Run(m fields.Map, windowHash string) []string {
	var warnings []string

	locked := r.applyHashOverride(m, windowHash)

	if !locked[fields.Especialidade] {
		r.resolveSpecialty(m)
	}
	arbitrated, haveValue := r.arbitratedValue(m)
	if !locked[fields.EspecieDaPericia] && haveValue {
		r.resolveSpecies(m, arbitrated)
	}
	r.resolveExpert(m, locked)

	if !m.Found(fields.ProcessoAdministrativo) && !m.Found(fields.ProcessoJudicial) {
		warnings = append(warnings, WarnMissingProcess)
	}
	return warnings
}

// arbitratedValue picks the canonical amount by role priority: the
// judge's value wins, then the director's, then the council's.
func (r *Reconciler) arbitratedValue(m fields.Map) (float64, bool) {
	for _, name := range []fields.Name{
		fields.ValorArbitradoJZ,
		fields.ValorArbitradoDE,
		fields.ValorArbitradoCM,
	} {
		if m.Found(name) {
			if v, err := strconv.ParseFloat(m.Value(name), 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// resolveSpecialty maps the free-text profession onto the closed
// specialty-area catalog. Only a capture from the expert's own page is
// trusted when both pages are known; over-long captures are dropped.
func (r *Reconciler) resolveSpecialty(m fields.Map) {
	f, ok := m[fields.Especialidade]
	if !ok || f.Value == fields.Missing {
		return
	}
	if p, pok := m[fields.Perito]; pok && p.Page != 0 && f.Page != 0 && p.Page != f.Page {
		m.Clear(fields.Especialidade)
		return
	}
	if tooLongSpecialty(f.Value, r.cfg) {
		m.Clear(fields.Especialidade)
		return
	}
	area, ok := ResolveArea(f.Value, r.cfg.SpecialtyAreas)
	if !ok {
		// Free text stays as captured when no area matches.
		return
	}
	set(m, fields.Especialidade, fields.Field{
		Value:      area,
		Confidence: f.Confidence,
		Method:     "specialty_area",
		Page:       f.Page,
		Evidence:   f.Evidence,
	})
}

func tooLongSpecialty(s string, cfg config.ReconcileCfg) bool {
	maxLen := cfg.SpecialtyMaxLen
	if maxLen <= 0 {
		maxLen = 40
	}
	maxWords := cfg.SpecialtyMaxWords
	if maxWords <= 0 {
		maxWords = 6
	}
	return len([]rune(s)) > maxLen || len(strings.Fields(s)) > maxWords
}

// ResolveArea maps free specialty text to a canonical area by folded
// keyword containment.
func ResolveArea(text string, areas map[string][]string) (string, bool) {
	folded := layout.Fold(text)
	for area, keywords := range areas {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(folded, layout.Fold(kw)) {
				return area, true
			}
		}
	}
	return "", false
}

// resolveSpecies looks (area, arbitrated value) up in the honorarium
// table and attaches the catalog species and tabled amount.
func (r *Reconciler) resolveSpecies(m fields.Map, arbitrated float64) {
	area := m.Value(fields.Especialidade)
	if area == fields.Missing {
		return
	}
	row, ok, withinTol := r.cats.Honorarium.Resolve(area, arbitrated, r.cfg.TolerancePct)
	if !ok {
		return
	}
	method := "honorarium_match"
	if !withinTol {
		method = "honorarium_single_area_mismatch"
	}
	set(m, fields.EspecieDaPericia, fields.Field{
		Value:      row.Description,
		Confidence: confidenceFor(withinTol),
		Method:     method,
	})
	if !m.Found(fields.ValorTabeladoAnexoI) {
		set(m, fields.ValorTabeladoAnexoI, fields.Field{
			Value:      fmt.Sprintf("%.2f", row.Amount),
			Confidence: confidenceFor(withinTol),
			Method:     method,
		})
	}
}

func confidenceFor(withinTol bool) float64 {
	if withinTol {
		return 0.9
	}
	return 0.5
}

// resolveExpert consults the roster by CPF, then by name. A roster hit
// supersedes the extracted identity. On a miss, an expert name that
// merely repeats a party name with no CPF captured is boilerplate and
// is dropped along with its specialty.
func (r *Reconciler) resolveExpert(m fields.Map, locked map[fields.Name]bool) {
	var rec catalog.ExpertRecord
	hit := false
	if m.Found(fields.CPFPerito) {
		rec, hit = r.cats.Roster.ByCPF(m.Value(fields.CPFPerito))
	}
	if !hit && m.Found(fields.Perito) {
		rec, hit = r.cats.Roster.ByName(m.Value(fields.Perito))
	}

	if hit {
		set(m, fields.Perito, fields.Field{Value: rec.Name, Confidence: 0.95, Method: "roster"})
		if cpf, ok := fields.CleanCPF(rec.CPF); ok && fields.CPFPerito.Validate(cpf) {
			set(m, fields.CPFPerito, fields.Field{Value: cpf, Confidence: 0.95, Method: "roster"})
		}
		if rec.Specialty != "" && !locked[fields.Especialidade] {
			value := rec.Specialty
			if area, ok := ResolveArea(rec.Specialty, r.cfg.SpecialtyAreas); ok {
				value = area
			}
			set(m, fields.Especialidade, fields.Field{Value: value, Confidence: 0.95, Method: "roster"})
		}
		if rec.Number != "" && !m.Found(fields.NumPerito) {
			set(m, fields.NumPerito, fields.Field{Value: rec.Number, Confidence: 0.9, Method: "roster"})
		}
		return
	}

	if m.Found(fields.Perito) && !m.Found(fields.CPFPerito) && r.expertEqualsParty(m) {
		m.Clear(fields.Perito)
		m.Clear(fields.Especialidade)
		m.Clear(fields.CPFPerito)
	}
}

func (r *Reconciler) expertEqualsParty(m fields.Map) bool {
	expert := layout.Fold(layout.NormalizeSpace(m.Value(fields.Perito)))
	for _, party := range []fields.Name{fields.Promovente, fields.Promovido} {
		if m.Found(party) && layout.Fold(layout.NormalizeSpace(m.Value(party))) == expert {
			return true
		}
	}
	return false
}

// applyHashOverride injects the trusted values of a known report and
// returns the set of field names the override locks against later
// catalog passes.
func (r *Reconciler) applyHashOverride(m fields.Map, windowHash string) map[fields.Name]bool {
	locked := map[fields.Name]bool{}
	entry, ok := r.cats.HashDB[windowHash]
	if !ok {
		return locked
	}
	r.logger.Debug("hash db hit", "hash", windowHash[:12])

	inject := func(name fields.Name, value string) {
		if value == "" {
			return
		}
		set(m, name, fields.Field{Value: value, Confidence: 1.0, Method: "hashdb"})
		locked[name] = true
	}
	inject(fields.EspecieDaPericia, entry.Species)
	inject(fields.Perito, entry.Expert)
	if cpf, ok := fields.CleanCPF(entry.CPF); ok && fields.CPFPerito.Validate(cpf) {
		inject(fields.CPFPerito, cpf)
	}
	inject(fields.Especialidade, entry.Specialty)
	return locked
}

// ApplyHints folds classifier-seeded identity values into the map at
// reduced confidence, never displacing an extracted value.
func (r *Reconciler) ApplyHints(m fields.Map, h *catalog.HashEntry) {
	if h == nil {
		return
	}
	hint := func(name fields.Name, value string) {
		if value == "" || m.Found(name) {
			return
		}
		set(m, name, fields.Field{Value: value, Confidence: 0.6, Method: "laudo_hint"})
	}
	hint(fields.EspecieDaPericia, h.Species)
	hint(fields.Perito, h.Expert)
	if cpf, ok := fields.CleanCPF(h.CPF); ok && fields.CPFPerito.Validate(cpf) {
		hint(fields.CPFPerito, cpf)
	}
	if h.Specialty != "" && !m.Found(fields.Especialidade) {
		value := h.Specialty
		if area, ok := ResolveArea(h.Specialty, r.cfg.SpecialtyAreas); ok {
			value = area
		}
		set(m, fields.Especialidade, fields.Field{Value: value, Confidence: 0.6, Method: "laudo_hint"})
	}
}

// set writes a field unless the identical (name, value) pair is
// already present; duplicates are rejected silently.
func set(m fields.Map, name fields.Name, f fields.Field) {
	if cur, ok := m[name]; ok && cur.Value == f.Value {
		return
	}
	m[name] = f
}
