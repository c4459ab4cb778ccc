package app

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"obras_portal/internal/domain"
)

var exportHeader = []string{
	"id", "slug", "titulo", "categoria", "estado", "montoAsignado", "beneficiarios",
	"lat", "lng", "inicio", "finEstimada", "proveedor", "observaciones",
	"mes", "avance", "ejecutadoMes", "resumen", "eventos",
}

// ProjectCSV renders a project as CSV, one line per month. A project without
// months still yields one line with empty month columns.
func ProjectCSV(p domain.Project) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	base := []string{
		p.ID, p.Slug, p.Titulo, p.Categoria, p.Estado, num(p.MontoAsignado), p.Beneficiarios,
		num(p.Lat), num(p.Lng), p.Inicio, p.FinEstimada, p.Proveedor, p.Observaciones,
	}

	if len(p.Meses) == 0 {
		if err := w.Write(append(base, "", "", "", "", "")); err != nil {
			return nil, err
		}
	}
	for _, m := range p.Meses {
		rec := append(append([]string{}, base...),
			m.Mes, num(m.Avance), num(m.EjecutadoMes), m.Resumen, FormatEvents(m.Eventos))
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// FormatEvents is the inverse of ParseEvents.
func FormatEvents(evs []domain.EventEntry) string {
	parts := make([]string, 0, len(evs))
	for _, e := range evs {
		parts = append(parts, e.Fecha+": "+e.Texto)
	}
	return strings.Join(parts, "; ")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
