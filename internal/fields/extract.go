package fields

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/pbaptista/diesp/internal/analysis"
	"github.com/pbaptista/diesp/internal/layout"
	"github.com/pbaptista/diesp/internal/region"
)

// scope says which text a strategy runs against.
type scope int

const (
	scopeFirstTop scope = iota
	scopeLastBottom
	scopeWindow
)

// strategy is one entry of a field's ranked fallback chain: a scoped
// pattern, the capture group, a cleaner and the confidence it earns.
// Strategies run in order until one yields a validated value.
type strategy struct {
	method string
	weight float64
	scope  scope
	re     *regexp.Regexp
	group  int
	clean  func(string) (string, bool)
}

// Input is the material one document window offers the extractor.
type Input struct {
	Analysis      *analysis.Analysis
	FirstTop      *region.Region
	LastBottom    *region.Region
	StartPage     int
	EndPage       int
	SignaturePage int
}

// windowText concatenates the raw text of the window's pages.
func (in *Input) windowText() string {
	var b strings.Builder
	for n := in.StartPage; n <= in.EndPage; n++ {
		if p := in.Analysis.PageByNumber(n); p != nil {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Extractor runs the per-field strategy chains.
type Extractor struct {
	logger     *slog.Logger
	strategies map[Name][]strategy
}

// NewExtractor builds the extractor with its full strategy table.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:     logger.With("component", "fields"),
		strategies: buildStrategies(),
	}
}

// Extract fills a complete field map for the window. Every catalog key
// is present afterwards; fields no strategy could satisfy keep the
// not-found sentinel. Extraction never fails: a value that fails
// validation is simply skipped in favor of the next strategy.
func (e *Extractor) Extract(in Input) Map {
	m := NewMap()
	for _, name := range All {
		for _, st := range e.strategies[name] {
			text := e.scopeText(in, st.scope)
			if text == "" {
				continue
			}
			match := st.re.FindStringSubmatch(text)
			if match == nil || st.group >= len(match) {
				continue
			}
			raw := match[st.group]
			value, ok := st.clean(raw)
			if !ok || !name.Validate(value) {
				continue
			}
			page := e.scopePage(in, st.scope, match[0])
			m[name] = Field{
				Value:      value,
				Confidence: st.weight,
				Method:     st.method,
				Page:       page,
				Evidence:   e.locate(in, page, raw, match[0]),
			}
			break
		}
	}
	return m
}

func (e *Extractor) scopeText(in Input, s scope) string {
	switch s {
	case scopeFirstTop:
		if in.FirstTop != nil {
			return in.FirstTop.Text
		}
	case scopeLastBottom:
		if in.LastBottom != nil {
			return in.LastBottom.Text
		}
	case scopeWindow:
		return in.windowText()
	}
	return ""
}

// scopePage resolves the page a match came from: the region's own page
// for scoped strategies, otherwise the first window page whose raw
// text contains the match.
func (e *Extractor) scopePage(in Input, s scope, matched string) int {
	switch s {
	case scopeFirstTop:
		if in.FirstTop != nil {
			return in.FirstTop.Page
		}
	case scopeLastBottom:
		if in.LastBottom != nil {
			return in.LastBottom.Page
		}
	}
	needle := layout.NormalizeSpace(matched)
	if len(needle) > 60 {
		needle = needle[:60]
	}
	for n := in.StartPage; n <= in.EndPage; n++ {
		if p := in.Analysis.PageByNumber(n); p != nil {
			if strings.Contains(layout.NormalizeSpace(p.Text), needle) {
				return n
			}
		}
	}
	return in.StartPage
}

// locate builds the evidence for a value: best-effort bbox by token
// matching against the page's words, plus a bounded snippet.
func (e *Extractor) locate(in Input, page int, raw, matched string) *Evidence {
	ev := &Evidence{Page: page, Snippet: snippet(matched)}
	if p := in.Analysis.PageByNumber(page); p != nil {
		ev.BBox = LocateBBox(p.Words, raw)
	}
	return ev
}

func snippet(s string) string {
	s = layout.NormalizeSpace(s)
	const maxLen = 160
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return s
}

// amount captures a monetary mention; the directed (role-specific)
// value strategies append it after a bounded filler run.
const amount = `R\$\s*([\d.,]+)`

func buildStrategies() map[Name][]strategy {
	return map[Name][]strategy{
		ProcessoAdministrativo: {
			{"processo_label_first_top", 0.9, scopeFirstTop,
				regexp.MustCompile(`(?is)processo\s+(?:administrativo\s+)?n[ºo°]?\s*([\d./-]+)`), 1, CleanProcess},
			{"processo_label_window", 0.6, scopeWindow,
				regexp.MustCompile(`(?is)processo\s+(?:administrativo\s+)?n[ºo°]?\s*([\d./-]+)`), 1, CleanProcess},
		},
		ProcessoJudicial: {
			{"autos_label", 0.9, scopeWindow,
				regexp.MustCompile(`(?is)autos\s+do\s+processo\s+n[ºo°]?\s*([\d./-]+)`), 1, CleanProcess},
			{"cnj_pattern", 0.5, scopeWindow,
				regexp.MustCompile(`(\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4})`), 1, CleanProcess},
		},
		Vara: {
			{"vara_label", 0.8, scopeFirstTop,
				regexp.MustCompile(`(?i)(\d+ª?\s*vara[^\n,–]*)`), 1, CleanText},
			{"vara_window", 0.5, scopeWindow,
				regexp.MustCompile(`(?i)(\d+ª?\s*vara[^\n,–]*)`), 1, CleanText},
		},
		Comarca: {
			{"comarca_label", 0.8, scopeFirstTop,
				regexp.MustCompile(`(?i)comarca\s+(?:de\s+|da\s+|do\s+)?([\p{L}][\p{L} ]{2,40})`), 1, CleanText},
			{"comarca_window", 0.5, scopeWindow,
				regexp.MustCompile(`(?i)comarca\s+(?:de\s+|da\s+|do\s+)?([\p{L}][\p{L} ]{2,40})`), 1, CleanText},
		},
		Promovente: {
			{"movido_por", 0.85, scopeWindow,
				regexp.MustCompile(`(?is)movid[oa]\s+por\s+(.{3,80}?),\s*(?:CPF|CNPJ)`), 1, CleanPersonName},
		},
		Promovido: {
			{"em_face_de", 0.85, scopeWindow,
				regexp.MustCompile(`(?is)em\s+face\s+de\s+(.{3,80}?),\s*(?:CPF|CNPJ)`), 1, CleanPersonName},
		},
		Perito: {
			{"interessado_label", 0.9, scopeFirstTop,
				regexp.MustCompile(`(?i)interessado:\s*([^\n–]+?)\s*[–-]`), 1, CleanPersonName},
			{"perito_label", 0.8, scopeFirstTop,
				regexp.MustCompile(`(?i)perit[oa]:\s*([\p{L}. ]{5,60})`), 1, CleanPersonName},
			{"perito_label_window", 0.6, scopeWindow,
				regexp.MustCompile(`(?i)perit[oa]:\s*([\p{L}. ]{5,60})`), 1, CleanPersonName},
			{"aceitou_encargo", 0.5, scopeWindow,
				regexp.MustCompile(`(?i)senhor\(a\)\s+([\p{L} ]{5,60}),\s+aceitou`), 1, CleanPersonName},
		},
		CPFPerito: {
			{"cpf_label", 0.9, scopeWindow,
				regexp.MustCompile(`(?i)CPF\s*(?:n[ºo°]?\s*)?([\d.\-/]{11,18})`), 1, CleanCPF},
		},
		Especialidade: {
			{"interessado_suffix", 0.85, scopeFirstTop,
				regexp.MustCompile(`(?i)interessado:[^\n–-]+[–-]\s*([\p{L} ]{3,40})`), 1, CleanText},
			{"perito_em", 0.6, scopeWindow,
				regexp.MustCompile(`(?i)perit[oa]\s+(?:em|de)\s+([\p{L} ]{3,40})`), 1, CleanText},
			{"dash_profession", 0.5, scopeFirstTop,
				regexp.MustCompile(`(?i)[–-]\s*(m[eé]dic[oa][\p{L} ]{0,30}|engenheir[oa][\p{L} ]{0,30}|contador[a]?[\p{L} ]{0,30}|psic[oó]log[oa][\p{L} ]{0,30}|odont[oó]log[oa][\p{L} ]{0,30})`), 1, CleanText},
		},
		ValorArbitradoJZ: {
			{"arbitrado_juizo", 0.9, scopeWindow,
				regexp.MustCompile(`(?is)arbitrad[oa]s?\s+pelo\s+ju[íi]z.{0,80}?` + amount), 1, CleanMoney},
			{"juizo_context", 0.75, scopeWindow,
				regexp.MustCompile(`(?is)(?:ju[íi]zo|ju[íi]z|magistrad[oa]).{0,120}?` + amount), 1, CleanMoney},
			{"honorarios_generic", 0.45, scopeWindow,
				regexp.MustCompile(`(?is)honor[áa]rios.{0,120}?` + amount), 1, CleanMoney},
			{"valor_de_generic", 0.4, scopeWindow,
				regexp.MustCompile(`(?is)valor\s+de\s+` + amount), 1, CleanMoney},
		},
		ValorArbitradoDE: {
			{"autorizo_despesa", 0.9, scopeLastBottom,
				regexp.MustCompile(`(?is)autorizo\s+a\s+despesa.{0,160}?` + amount), 1, CleanMoney},
			{"autorizo_despesa_window", 0.8, scopeWindow,
				regexp.MustCompile(`(?is)autorizo\s+a\s+despesa.{0,160}?` + amount), 1, CleanMoney},
			{"diretoria_context", 0.6, scopeWindow,
				regexp.MustCompile(`(?is)diretor(?:ia)?\s+especial.{0,160}?` + amount), 1, CleanMoney},
		},
		ValorArbitradoCM: {
			{"conselho_context", 0.85, scopeWindow,
				regexp.MustCompile(`(?is)conselho\s+da\s+magistratura.{0,160}?` + amount), 1, CleanMoney},
		},
		ValorTabeladoAnexoI: {
			{"anexo_i", 0.85, scopeWindow,
				regexp.MustCompile(`(?is)anexo\s+i\b.{0,120}?` + amount), 1, CleanMoney},
			{"valor_tabelado", 0.7, scopeWindow,
				regexp.MustCompile(`(?is)valor\s+tabelado.{0,80}?` + amount), 1, CleanMoney},
		},
		Adiantamento: {
			{"adiantamento_context", 0.8, scopeWindow,
				regexp.MustCompile(`(?is)adiantamento.{0,120}?` + amount), 1, CleanMoney},
		},
		Percentual: {
			{"percent_sign", 0.7, scopeWindow,
				regexp.MustCompile(`(\d{1,3})\s*%`), 1, CleanDigits},
		},
		Parcela: {
			{"em_parcelas", 0.7, scopeWindow,
				regexp.MustCompile(`(?i)em\s+(\d{1,2})\s+parcelas?`), 1, CleanDigits},
			{"parcela_unica", 0.6, scopeWindow,
				regexp.MustCompile(`(?i)parcela\s+[úu]nica`), 0, func(string) (string, bool) { return "1", true }},
		},
		Data: {
			{"assinatura_data", 0.9, scopeLastBottom,
				regexp.MustCompile(`(?i)em\s+(\d{1,2}/\d{1,2}/\d{2,4})`), 1, CleanDate},
			{"data_extenso", 0.8, scopeLastBottom,
				regexp.MustCompile(`(?i)(\d{1,2}\s+de\s+\p{L}+\s+de\s+\d{4})`), 1, CleanDate},
			{"data_extenso_window", 0.6, scopeWindow,
				regexp.MustCompile(`(?i)(\d{1,2}\s+de\s+\p{L}+\s+de\s+\d{4})`), 1, CleanDate},
			{"data_window", 0.5, scopeWindow,
				regexp.MustCompile(`(?i)em\s+(\d{1,2}/\d{1,2}/\d{2,4})`), 1, CleanDate},
		},
		Assinante: {
			{"assinado_por", 0.9, scopeLastBottom,
				regexp.MustCompile(`(?i)assinado\s+eletronicamente\s+por\s+([\p{L} .]{5,60}?)(?:,|\s+em\s+\d|\n|$)`), 1, CleanPersonName},
			{"assinado_por_window", 0.7, scopeWindow,
				regexp.MustCompile(`(?i)assinado\s+eletronicamente\s+por\s+([\p{L} .]{5,60}?)(?:,|\s+em\s+\d|\n|$)`), 1, CleanPersonName},
		},
		NumPerito: {
			{"perito_num", 0.7, scopeWindow,
				regexp.MustCompile(`(?i)perit[oa]\s+n[ºo°]\s*(\d{1,6})`), 1, CleanDigits},
			{"cadastro_num", 0.6, scopeWindow,
				regexp.MustCompile(`(?i)cadastro\s+n[ºo°]?\s*(\d{1,6})`), 1, CleanDigits},
		},
	}
}
