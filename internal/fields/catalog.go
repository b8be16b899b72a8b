// Package fields defines the fixed output field catalog and the
// regex/band-scoped extraction engine that fills it.
package fields

import (
	"regexp"
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
)

// Name identifies one of the fixed output fields. The catalog is
// closed: every Document carries exactly these keys, always.
type Name string

const (
	ProcessoAdministrativo Name = "PROCESSO_ADMINISTRATIVO"
	ProcessoJudicial       Name = "PROCESSO_JUDICIAL"
	Vara                   Name = "VARA"
	Comarca                Name = "COMARCA"
	Promovente             Name = "PROMOVENTE"
	Promovido              Name = "PROMOVIDO"
	Perito                 Name = "PERITO"
	CPFPerito              Name = "CPF_PERITO"
	Especialidade          Name = "ESPECIALIDADE"
	EspecieDaPericia       Name = "ESPECIE_DA_PERICIA"
	ValorArbitradoJZ       Name = "VALOR_ARBITRADO_JZ"
	ValorArbitradoDE       Name = "VALOR_ARBITRADO_DE"
	ValorArbitradoCM       Name = "VALOR_ARBITRADO_CM"
	ValorTabeladoAnexoI    Name = "VALOR_TABELADO_ANEXO_I"
	Adiantamento           Name = "ADIANTAMENTO"
	Percentual             Name = "PERCENTUAL"
	Parcela                Name = "PARCELA"
	Data                   Name = "DATA"
	Assinante              Name = "ASSINANTE"
	NumPerito              Name = "NUM_PERITO"
)

// All lists the catalog in output order.
var All = []Name{
	ProcessoAdministrativo,
	ProcessoJudicial,
	Vara,
	Comarca,
	Promovente,
	Promovido,
	Perito,
	CPFPerito,
	Especialidade,
	EspecieDaPericia,
	ValorArbitradoJZ,
	ValorArbitradoDE,
	ValorArbitradoCM,
	ValorTabeladoAnexoI,
	Adiantamento,
	Percentual,
	Parcela,
	Data,
	Assinante,
	NumPerito,
}

// Sentinels for absent fields: a field never found in text is still
// emitted, with these markers.
const (
	Missing        = "-"
	MethodNotFound = "not_found"
)

// Evidence ties a value back to the page it came from.
type Evidence struct {
	Page    int             `json:"page1"`
	BBox    *analysis.BBoxN `json:"bboxN,omitempty"`
	Snippet string          `json:"snippet,omitempty"`
}

// Field is one extracted value with its provenance.
type Field struct {
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
	Page       int       `json:"page1,omitempty"`
	Evidence   *Evidence `json:"evidence,omitempty"`
}

// Map is the Document's field bag, keyed by the fixed catalog.
type Map map[Name]Field

// NewMap seeds every catalog key with the not-found sentinel.
func NewMap() Map {
	m := make(Map, len(All))
	for _, name := range All {
		m[name] = Field{Value: Missing, Method: MethodNotFound}
	}
	return m
}

// Found reports whether the field holds a real value.
func (m Map) Found(name Name) bool {
	f, ok := m[name]
	return ok && f.Value != Missing
}

// Value returns the field's value, or the missing sentinel.
func (m Map) Value(name Name) string {
	if f, ok := m[name]; ok {
		return f.Value
	}
	return Missing
}

// Clear reverts a field to the not-found sentinel.
func (m Map) Clear(name Name) {
	m[name] = Field{Value: Missing, Method: MethodNotFound}
}

// Validation patterns. A field failing its predicate reverts to the
// sentinel rather than surfacing a wrong value.
var (
	moneyRe     = regexp.MustCompile(`^\d+\.\d{2}$`)
	cpfRe       = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	processRe   = regexp.MustCompile(`^[\d.\-/]{7,25}$`)
	percentRe   = regexp.MustCompile(`^\d{1,3}(\.\d+)?$`)
	parcelaRe   = regexp.MustCompile(`^\d{1,2}(/\d{1,2})?$`)
	numPeritoRe = regexp.MustCompile(`^\d{1,6}$`)
)

// Validate applies the per-field format predicate.
func (n Name) Validate(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || value == Missing {
		return false
	}
	switch n {
	case ValorArbitradoJZ, ValorArbitradoDE, ValorArbitradoCM, ValorTabeladoAnexoI, Adiantamento:
		return moneyRe.MatchString(value)
	case CPFPerito:
		return cpfRe.MatchString(value)
	case Data:
		return isoDateRe.MatchString(value)
	case ProcessoAdministrativo, ProcessoJudicial:
		return processRe.MatchString(value) && digitCount(value) >= 7
	case Percentual:
		return percentRe.MatchString(value)
	case Parcela:
		return parcelaRe.MatchString(value)
	case NumPerito:
		return numPeritoRe.MatchString(value)
	case Perito, Assinante, Promovente, Promovido:
		return personPlausible(value)
	case Especialidade:
		return len([]rune(value)) >= 3 && len([]rune(value)) <= 60
	case Vara, Comarca, EspecieDaPericia:
		return len([]rune(value)) >= 3 && len([]rune(value)) <= 80
	}
	return true
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// personPlausible rejects captures that cannot be a person's name:
// too short, too long, or digit-bearing.
func personPlausible(s string) bool {
	runes := []rune(s)
	if len(runes) < 5 || len(runes) > 80 {
		return false
	}
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return len(strings.Fields(s)) >= 2
}
