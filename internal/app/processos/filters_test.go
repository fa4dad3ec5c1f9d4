package processos

import (
	"testing"
	"time"
)

func sampleProcesses() []Process {
	return []Process{
		{
			ID:            "p1",
			Numero:        "2025/001",
			Objeto:        "Aquisição de mobiliário escolar",
			Secretaria:    "Secretaria de Educação",
			Responsavel:   "Maria Souza",
			Status:        StatusEmAnalise,
			DataAbertura:  "15/01/2025",
			ValorEstimado: "R$ 10.000,00",
		},
		{
			ID:            "p2",
			Numero:        "2025/002",
			Objeto:        "Contratação de serviços de limpeza",
			Secretaria:    "Secretaria de Saúde",
			Responsavel:   "João Lima",
			Status:        StatusPublicado,
			DataAbertura:  "2025-03-10",
			ValorEstimado: "R$ 250.000,00",
		},
		{
			ID:            "p3",
			Numero:        "2024/117",
			Objeto:        "Reforma da praça central",
			Secretaria:    "Secretaria de Obras",
			Responsavel:   "Maria Souza",
			Status:        StatusFinalizado,
			DataAbertura:  "01/11/2024",
			ValorEstimado: "R$ 1.200.000,00",
		},
	}
}

func ids(list []Process) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Process, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("got %v, want %v", ids(got), want)
		}
	}
}

func TestFilterBySearch(t *testing.T) {
	list := sampleProcesses()

	t.Run("empty term is identity", func(t *testing.T) {
		got := FilterBySearch(list, "   ")
		if len(got) != len(list) {
			t.Fatalf("got %d records, want %d", len(got), len(list))
		}
		if &got[0] != &list[0] {
			t.Fatal("empty term should return the input slice unchanged")
		}
	})

	t.Run("matches numero", func(t *testing.T) {
		assertIDs(t, FilterBySearch(list, "2024"), "p3")
	})

	t.Run("matches objeto case-insensitively", func(t *testing.T) {
		assertIDs(t, FilterBySearch(list, "LIMPEZA"), "p2")
	})

	t.Run("matches secretaria", func(t *testing.T) {
		assertIDs(t, FilterBySearch(list, "educação"), "p1")
	})

	t.Run("does not match responsavel", func(t *testing.T) {
		assertIDs(t, FilterBySearch(list, "Souza"))
	})
}

func TestActiveAndFinalizedPartition(t *testing.T) {
	list := sampleProcesses()

	active := Active(list)
	finalized := Finalized(list)

	assertIDs(t, active, "p1", "p2")
	assertIDs(t, finalized, "p3")
	if len(active)+len(finalized) != len(list) {
		t.Fatalf("partition lost records: %d + %d != %d", len(active), len(finalized), len(list))
	}
}

func TestAdvancedFilter(t *testing.T) {
	list := sampleProcesses()
	floatPtr := func(v float64) *float64 { return &v }

	t.Run("zero filter is identity", func(t *testing.T) {
		got := AdvancedFilter{}.Apply(list)
		if len(got) != len(list) {
			t.Fatalf("got %d records, want %d", len(got), len(list))
		}
	})

	t.Run("constraints are conjunctive", func(t *testing.T) {
		f := AdvancedFilter{Responsavel: "maria", Status: StatusEmAnalise}
		assertIDs(t, f.Apply(list), "p1")
	})

	t.Run("date bounds normalize both layouts", func(t *testing.T) {
		f := AdvancedFilter{
			DataInicio: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			DataFim:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		}
		// p1 is dd/mm/yyyy, p2 is ISO; both fall inside 2025.
		assertIDs(t, f.Apply(list), "p1", "p2")
	})

	t.Run("value bounds are inclusive", func(t *testing.T) {
		f := AdvancedFilter{ValorMin: floatPtr(10000), ValorMax: floatPtr(250000)}
		assertIDs(t, f.Apply(list), "p1", "p2")
	})

	t.Run("unparseable fields pass the bound", func(t *testing.T) {
		odd := append(sampleProcesses(), Process{ID: "p4", DataAbertura: "em breve", ValorEstimado: "a definir"})
		f := AdvancedFilter{
			DataInicio: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			ValorMin:   floatPtr(100000),
		}
		got := f.Apply(odd)
		found := false
		for _, p := range got {
			if p.ID == "p4" {
				found = true
			}
		}
		if !found {
			t.Fatalf("record without parseable bounds should survive: %v", ids(got))
		}
	})
}
