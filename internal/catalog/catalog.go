// Package catalog loads the read-only reference catalogs consulted
// during reconciliation: the known-report hash database, the
// honorarium rate table and the expert roster. Catalogs are loaded
// once before workers start and shared by immutable reference.
package catalog

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pbaptista/diesp/internal/layout"
)

// HashEntry is the trusted record for a known report, keyed by the
// SHA-256 of its normalized full text.
type HashEntry struct {
	Species   string `yaml:"species"`
	Expert    string `yaml:"expert"`
	CPF       string `yaml:"cpf"`
	Specialty string `yaml:"specialty"`
}

// HashDB maps normalized-text hashes to trusted report records.
type HashDB map[string]HashEntry

// HonorariumRow is one row of the rate table: a species of examination
// with its catalog amount, per specialty area.
type HonorariumRow struct {
	ID          string  `yaml:"id"`
	Area        string  `yaml:"area"`
	Description string  `yaml:"description"`
	Amount      float64 `yaml:"amount"`
}

// HonorariumTable is the full rate table.
type HonorariumTable []HonorariumRow

// ByArea returns the rows of one specialty area (folded comparison).
func (t HonorariumTable) ByArea(area string) []HonorariumRow {
	folded := layout.Fold(area)
	var out []HonorariumRow
	for _, row := range t {
		if layout.Fold(row.Area) == folded {
			out = append(out, row)
		}
	}
	return out
}

// Resolve looks up the species for (area, value): the row whose amount
// is within tolerancePct of the value wins; if the area has a single
// species it resolves regardless of value, flagged as a mismatch when
// out of tolerance.
func (t HonorariumTable) Resolve(area string, value, tolerancePct float64) (HonorariumRow, bool, bool) {
	rows := t.ByArea(area)
	if len(rows) == 0 {
		return HonorariumRow{}, false, false
	}
	for _, row := range rows {
		if withinTolerance(value, row.Amount, tolerancePct) {
			return row, true, true
		}
	}
	if len(rows) == 1 {
		return rows[0], true, false
	}
	return HonorariumRow{}, false, false
}

func withinTolerance(value, target, pct float64) bool {
	if target == 0 {
		return value == 0
	}
	return math.Abs(value-target)/target*100 <= pct
}

// ExpertRecord is the canonical identity of a registered expert.
type ExpertRecord struct {
	Name      string `yaml:"name"`
	CPF       string `yaml:"cpf"`
	Specialty string `yaml:"specialty"`
	Number    string `yaml:"number,omitempty"`
}

// Roster indexes expert records by CPF digits and by folded name.
type Roster struct {
	byCPF  map[string]ExpertRecord
	byName map[string]ExpertRecord
}

// NewRoster builds the lookup indexes.
func NewRoster(records []ExpertRecord) *Roster {
	r := &Roster{
		byCPF:  make(map[string]ExpertRecord, len(records)),
		byName: make(map[string]ExpertRecord, len(records)),
	}
	for _, rec := range records {
		if d := digits(rec.CPF); d != "" {
			r.byCPF[d] = rec
		}
		if n := layout.Fold(layout.NormalizeSpace(rec.Name)); n != "" {
			r.byName[n] = rec
		}
	}
	return r
}

// ByCPF looks an expert up by CPF, punctuation-insensitive.
func (r *Roster) ByCPF(cpf string) (ExpertRecord, bool) {
	rec, ok := r.byCPF[digits(cpf)]
	return rec, ok
}

// ByName looks an expert up by folded full name.
func (r *Roster) ByName(name string) (ExpertRecord, bool) {
	rec, ok := r.byName[layout.Fold(layout.NormalizeSpace(name))]
	return rec, ok
}

// Len returns the roster size.
func (r *Roster) Len() int { return len(r.byName) }

func digits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Catalogs bundles the three reference catalogs for one run.
type Catalogs struct {
	HashDB     HashDB
	Honorarium HonorariumTable
	Roster     *Roster
}

// Empty returns catalogs with no entries; lookups simply miss.
func Empty() *Catalogs {
	return &Catalogs{
		HashDB:     HashDB{},
		Honorarium: HonorariumTable{},
		Roster:     NewRoster(nil),
	}
}

// Load reads the catalogs from their YAML files. Empty paths load as
// empty catalogs; a malformed file is a configuration error and aborts
// the run.
func Load(hashPath, honorariumPath, rosterPath string) (*Catalogs, error) {
	c := Empty()
	if hashPath != "" {
		if err := readYAML(hashPath, &c.HashDB); err != nil {
			return nil, fmt.Errorf("load hash db: %w", err)
		}
	}
	if honorariumPath != "" {
		if err := readYAML(honorariumPath, &c.Honorarium); err != nil {
			return nil, fmt.Errorf("load honorarium table: %w", err)
		}
	}
	if rosterPath != "" {
		var records []ExpertRecord
		if err := readYAML(rosterPath, &records); err != nil {
			return nil, fmt.Errorf("load expert roster: %w", err)
		}
		c.Roster = NewRoster(records)
	}
	return c, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
