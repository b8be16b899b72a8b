package reconcile

import (
	"testing"

	"github.com/pbaptista/diesp/internal/catalog"
	"github.com/pbaptista/diesp/internal/config"
	"github.com/pbaptista/diesp/internal/fields"
)

func testCfg() config.ReconcileCfg {
	return config.DefaultConfig().Reconcile
}

func testCatalogs() *catalog.Catalogs {
	return &catalog.Catalogs{
		HashDB: catalog.HashDB{
			"fedcba9876543210": {
				Species:   "Exame grafotécnico completo",
				Expert:    "Carlos Henrique Dias",
				CPF:       "98765432100",
				Specialty: "GRAFOTECNIA",
			},
		},
		Honorarium: catalog.HonorariumTable{
			{ID: "M1", Area: "MEDICINA", Description: "Perícia médica clínica", Amount: 500},
			{ID: "M2", Area: "MEDICINA", Description: "Perícia psiquiátrica", Amount: 800},
			{ID: "O1", Area: "ODONTOLOGIA", Description: "Exame odontológico", Amount: 600},
		},
		Roster: catalog.NewRoster([]catalog.ExpertRecord{
			{Name: "Maria de Souza Lima", CPF: "12345678901", Specialty: "Médica Psiquiatra", Number: "P-042"},
		}),
	}
}

func newTestReconciler() *Reconciler {
	return New(testCfg(), testCatalogs(), nil)
}

func put(m fields.Map, name fields.Name, value string, page int) {
	m[name] = fields.Field{Value: value, Confidence: 0.8, Method: "test", Page: page}
}

func TestArbitratedValuePriority(t *testing.T) {
	r := newTestReconciler()

	m := fields.NewMap()
	put(m, fields.ValorArbitradoJZ, "500.00", 1)
	put(m, fields.ValorArbitradoDE, "470.00", 2)
	put(m, fields.ValorArbitradoCM, "450.00", 3)
	if v, ok := r.arbitratedValue(m); !ok || v != 500 {
		t.Errorf("arbitratedValue() = (%v, %v), want (500, true)", v, ok)
	}

	m = fields.NewMap()
	put(m, fields.ValorArbitradoDE, "470.00", 2)
	if v, ok := r.arbitratedValue(m); !ok || v != 470 {
		t.Errorf("arbitratedValue() = (%v, %v), want (470, true)", v, ok)
	}

	if _, ok := r.arbitratedValue(fields.NewMap()); ok {
		t.Error("arbitratedValue() = true on an empty map")
	}
}

func TestResolveSpecialty(t *testing.T) {
	t.Run("maps_profession_to_area", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Perito, "Maria Souza", 1)
		put(m, fields.Especialidade, "Médica Psiquiatra", 1)

		newTestReconciler().Run(m, "")
		if got := m.Value(fields.Especialidade); got != "MEDICINA" {
			t.Errorf("Especialidade = %q, want MEDICINA", got)
		}
		if m[fields.Especialidade].Method != "specialty_area" {
			t.Errorf("method = %q, want specialty_area", m[fields.Especialidade].Method)
		}
	})

	t.Run("drops_capture_from_other_page", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Perito, "Maria Souza", 1)
		put(m, fields.Especialidade, "Engenheiro Civil", 3)

		newTestReconciler().Run(m, "")
		if m.Found(fields.Especialidade) {
			t.Errorf("Especialidade = %q, want cleared", m.Value(fields.Especialidade))
		}
	})

	t.Run("drops_overlong_capture", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Especialidade,
			"perito nomeado para atuar nos presentes autos conforme despacho anterior", 1)

		newTestReconciler().Run(m, "")
		if m.Found(fields.Especialidade) {
			t.Errorf("Especialidade = %q, want cleared", m.Value(fields.Especialidade))
		}
	})

	t.Run("keeps_free_text_without_area", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Especialidade, "Tradutora Juramentada", 1)

		newTestReconciler().Run(m, "")
		if got := m.Value(fields.Especialidade); got != "Tradutora Juramentada" {
			t.Errorf("Especialidade = %q, want the original capture", got)
		}
	})
}

func TestResolveSpecies(t *testing.T) {
	t.Run("value_within_tolerance_matches_row", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Especialidade, "MEDICINA", 1)
		put(m, fields.ValorArbitradoJZ, "470.00", 1)

		newTestReconciler().Run(m, "")
		if got := m.Value(fields.EspecieDaPericia); got != "Perícia médica clínica" {
			t.Errorf("EspecieDaPericia = %q, want the 500-catalog row", got)
		}
		f := m[fields.EspecieDaPericia]
		if f.Method != "honorarium_match" || f.Confidence != 0.9 {
			t.Errorf("field = %+v, want honorarium_match at 0.9", f)
		}
		if got := m.Value(fields.ValorTabeladoAnexoI); got != "500.00" {
			t.Errorf("ValorTabeladoAnexoI = %q, want 500.00", got)
		}
	})

	t.Run("ambiguous_area_out_of_tolerance_stays_unset", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Especialidade, "MEDICINA", 1)
		put(m, fields.ValorArbitradoJZ, "300.00", 1)

		newTestReconciler().Run(m, "")
		if m.Found(fields.EspecieDaPericia) {
			t.Errorf("EspecieDaPericia = %q, want sentinel", m.Value(fields.EspecieDaPericia))
		}
	})

	t.Run("single_species_area_resolves_with_mismatch_flag", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Especialidade, "ODONTOLOGIA", 1)
		put(m, fields.ValorArbitradoJZ, "300.00", 1)

		newTestReconciler().Run(m, "")
		f := m[fields.EspecieDaPericia]
		if f.Value != "Exame odontológico" {
			t.Errorf("EspecieDaPericia = %q, want the single-row species", f.Value)
		}
		if f.Method != "honorarium_single_area_mismatch" || f.Confidence != 0.5 {
			t.Errorf("field = %+v, want mismatch method at 0.5", f)
		}
	})
}

func TestResolveExpert(t *testing.T) {
	t.Run("roster_hit_by_cpf_supersedes", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Perito, "Maria Souza", 1)
		put(m, fields.CPFPerito, "123.456.789-01", 1)

		newTestReconciler().Run(m, "")
		if got := m.Value(fields.Perito); got != "Maria de Souza Lima" {
			t.Errorf("Perito = %q, want the roster name", got)
		}
		if m[fields.Perito].Method != "roster" || m[fields.Perito].Confidence != 0.95 {
			t.Errorf("Perito field = %+v, want roster at 0.95", m[fields.Perito])
		}
		if got := m.Value(fields.Especialidade); got != "MEDICINA" {
			t.Errorf("Especialidade = %q, want MEDICINA from roster specialty", got)
		}
		if got := m.Value(fields.NumPerito); got != "P-042" {
			t.Errorf("NumPerito = %q, want P-042", got)
		}
	})

	t.Run("roster_hit_by_folded_name_fills_cpf", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Perito, "MARIA DE SOUZA LIMA", 1)

		newTestReconciler().Run(m, "")
		if got := m.Value(fields.CPFPerito); got != "123.456.789-01" {
			t.Errorf("CPFPerito = %q, want roster CPF", got)
		}
	})

	t.Run("party_duplicate_without_cpf_is_dropped", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Promovente, "João Pereira", 1)
		put(m, fields.Perito, "JOÃO PEREIRA", 2)
		put(m, fields.Especialidade, "Tradutora Juramentada", 2)

		newTestReconciler().Run(m, "")
		if m.Found(fields.Perito) || m.Found(fields.Especialidade) {
			t.Errorf("Perito = %q, Especialidade = %q, want both cleared",
				m.Value(fields.Perito), m.Value(fields.Especialidade))
		}
	})

	t.Run("party_duplicate_with_cpf_is_kept", func(t *testing.T) {
		m := fields.NewMap()
		put(m, fields.Promovente, "João Pereira", 1)
		put(m, fields.Perito, "João Pereira", 2)
		put(m, fields.CPFPerito, "111.222.333-44", 2)

		newTestReconciler().Run(m, "")
		if !m.Found(fields.Perito) {
			t.Error("Perito cleared despite a captured CPF")
		}
	})
}

func TestHashOverride(t *testing.T) {
	m := fields.NewMap()
	put(m, fields.Especialidade, "Médica Psiquiatra", 1)

	newTestReconciler().Run(m, "fedcba9876543210")

	checks := map[fields.Name]string{
		fields.EspecieDaPericia: "Exame grafotécnico completo",
		fields.Perito:           "Carlos Henrique Dias",
		fields.CPFPerito:        "987.654.321-00",
		fields.Especialidade:    "GRAFOTECNIA",
	}
	for name, want := range checks {
		f := m[name]
		if f.Value != want {
			t.Errorf("%s = %q, want %q", name, f.Value, want)
		}
		if f.Method != "hashdb" || f.Confidence != 1.0 {
			t.Errorf("%s field = %+v, want hashdb at 1.0", name, f)
		}
	}
}

func TestRunWarnsOnMissingProcess(t *testing.T) {
	warnings := newTestReconciler().Run(fields.NewMap(), "")
	found := false
	for _, w := range warnings {
		if w == WarnMissingProcess {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want %q", warnings, WarnMissingProcess)
	}

	m := fields.NewMap()
	put(m, fields.ProcessoAdministrativo, "2024.012345", 1)
	for _, w := range newTestReconciler().Run(m, "") {
		if w == WarnMissingProcess {
			t.Error("warned about missing process numbers with one present")
		}
	}
}

func TestApplyHints(t *testing.T) {
	r := newTestReconciler()

	m := fields.NewMap()
	put(m, fields.Perito, "Maria Souza", 1)
	r.ApplyHints(m, &catalog.HashEntry{
		Expert:    "Outra Pessoa",
		Specialty: "laudo pericial",
	})

	if got := m.Value(fields.Perito); got != "Maria Souza" {
		t.Errorf("Perito = %q, hint displaced an extracted value", got)
	}
	f := m[fields.Especialidade]
	if f.Value == fields.Missing {
		t.Fatal("Especialidade hint not applied")
	}
	if f.Method != "laudo_hint" || f.Confidence != 0.6 {
		t.Errorf("Especialidade field = %+v, want laudo_hint at 0.6", f)
	}

	r.ApplyHints(m, nil)
}
