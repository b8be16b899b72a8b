package config

import "github.com/pbaptista/diesp/internal/layout"

// DefaultConfig returns configuration tuned for TJPB DIESP despachos
// and council certificates. Every value can be overridden from the
// YAML config file.
func DefaultConfig() *Config {
	return &Config{
		Workers: 4,
		Lexicons: Lexicons{
			Header: []string{
				"PODER JUDICIÁRIO",
				"TRIBUNAL DE JUSTIÇA DA PARAÍBA",
				"TRIBUNAL DE JUSTIÇA",
			},
			Subheader: []string{
				"DIRETORIA ESPECIAL",
				"GERÊNCIA DE ORÇAMENTO",
				"GEORC",
			},
			Title: []string{
				"DESPACHO",
				"Despacho DIESP",
			},
			Footer: []string{
				"Documento assinado eletronicamente",
				"A autenticidade do documento pode ser conferida",
			},
			DespachoTitles: []string{
				"despacho",
			},
			HeuristicHints: []string{
				"despacho",
				"diretoria especial",
				"diesp",
			},
			SignerHints: []string{
				"Diretor Especial",
				"Diretora Especial",
				"Juiz Auxiliar da Presidência",
			},
			DirectorSigners: []string{
				"Diretor Especial",
				"Diretora Especial",
			},
			SignatureBoilerplate: []string{
				"Documento assinado eletronicamente por",
				"assinado eletronicamente",
			},
			AuthorizationHints: []string{
				"autorizo a despesa",
				"autorizo o pagamento",
				"GEORC",
			},
			CouncilHints: []string{
				"Conselho da Magistratura",
			},
			ForwardVerbs: []string{
				"encaminhem-se",
				"encaminhe-se",
				"remetam-se",
				"submeto os autos",
			},
			ProcessLabels: []string{
				"Processo nº",
				"Processo n°",
				"Processo Administrativo",
			},
			ExpertLabels: []string{
				"Interessado:",
				"Perito:",
				"Perita:",
			},
			VenueLabels: []string{
				"Vara",
				"Juízo",
				"Requerente:",
			},
			ComarcaLabels: []string{
				"Comarca",
			},
			CertidaoTemplates: []string{
				"CERTIDÃO Certifico que o Conselho da Magistratura, em sessão realizada em {{DATA}}, " +
					"apreciou o processo nº {{PROCESSO}} e fixou os honorários periciais em R$ {{VALOR}}.",
				"CERTIDÃO Certifico, para os devidos fins, que o Conselho da Magistratura homologou " +
					"o valor de R$ {{VALOR}} em favor do perito {{PERITO}} em {{DATA}}.",
			},
			LaudoKeywords: []string{
				"laudo pericial",
				"laudo técnico",
				"quesitos",
				"exame pericial",
				"metodologia",
				"conclusão do laudo",
			},
		},
		Layout: LayoutCfg{
			LineMergeY:    0.008,
			WordGapX:      1.0,
			ParagraphGapY: 0.015,
		},
		Bands: layout.DefaultThresholds(),
		Window: WindowCfg{
			MinPages:        2,
			MaxPages:        6,
			MinScore:        0.35,
			HeuristicSizes:  []int{2, 3, 4},
			MinDensity:      0.02,
			DensityTopPages: 6,
		},
		Reconcile: ReconcileCfg{
			TolerancePct:      15,
			SpecialtyMaxLen:   40,
			SpecialtyMaxWords: 6,
			SpecialtyAreas: map[string][]string{
				"MEDICINA": {
					"medico", "medica", "medicina", "psiquiatr", "ortoped",
					"cardiolog", "neurolog", "clinico geral",
				},
				"ODONTOLOGIA": {"odontolog", "dentista", "bucomaxilo"},
				"PSICOLOGIA":  {"psicolog"},
				"ENGENHARIA": {
					"engenheiro", "engenharia", "engenheira", "agrimensura", "topograf",
				},
				"CONTABILIDADE": {
					"contador", "contabil", "contadora", "pericia contabil",
				},
				"GRAFOTECNIA":        {"grafotecnic", "documentoscop", "grafoscop"},
				"ASSISTENCIA_SOCIAL": {"assistente social", "servico social"},
				"AVALIACAO_DE_BENS":  {"avaliacao de bens", "avaliador", "corretor de imoveis"},
			},
		},
		Catalogs: CatalogPaths{},
	}
}
