package app_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"obras_portal/internal/app"
	"obras_portal/internal/domain"
)

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("exported csv does not parse: %v", err)
	}
	return recs
}

func TestProjectCSV_OneLinePerMonth(t *testing.T) {
	p := domain.Project{
		ID: "p1", Titulo: "Plaza, centro", MontoAsignado: 1500000.5,
		Meses: []domain.MonthEntry{
			{Mes: "2025-07", Avance: 55, Eventos: []domain.EventEntry{
				{Fecha: "2025-07-01", Texto: "Inicio"},
				{Fecha: "2025-07-15", Texto: "Hito: losa"},
			}},
			{Mes: "2025-08", Avance: 70, EjecutadoMes: 1200},
		},
	}
	b, err := app.ProjectCSV(p)
	if err != nil {
		t.Fatal(err)
	}
	recs := readCSV(t, b)
	if len(recs) != 3 {
		t.Fatalf("expected header + 2 lines, got %d", len(recs))
	}
	head, first, second := recs[0], recs[1], recs[2]
	col := func(rec []string, name string) string {
		for i, h := range head {
			if h == name {
				return rec[i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}
	if col(first, "titulo") != "Plaza, centro" || col(first, "montoAsignado") != "1500000.5" {
		t.Fatalf("unexpected project columns: %v", first)
	}
	if col(first, "eventos") != "2025-07-01: Inicio; 2025-07-15: Hito: losa" {
		t.Fatalf("unexpected events: %q", col(first, "eventos"))
	}
	if col(second, "mes") != "2025-08" || col(second, "ejecutadoMes") != "1200" {
		t.Fatalf("unexpected month columns: %v", second)
	}

	// the events column reads back into the same entries
	if got := app.ParseEvents(col(first, "eventos")); len(got) != 2 || got[1].Texto != "Hito: losa" {
		t.Fatalf("events do not round-trip: %+v", got)
	}
}

func TestProjectCSV_NoMonths(t *testing.T) {
	b, err := app.ProjectCSV(domain.Project{ID: "p2"})
	if err != nil {
		t.Fatal(err)
	}
	recs := readCSV(t, b)
	if len(recs) != 2 || recs[1][0] != "p2" || recs[1][13] != "" {
		t.Fatalf("unexpected export: %v", recs)
	}
}
