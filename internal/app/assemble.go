package app

import (
	"math"
	"sort"
	"strings"

	"obras_portal/internal/domain"
)

// monthKey correlates month and photo rows of the same project-period.
type monthKey struct{ projectID, mes string }

// Assemble joins the three tables into projects with their monthly history.
// Rows missing a mandatory key are skipped; every other field degrades to ""
// or 0. Projects keep input order, months are sorted ascending by Mes.
func Assemble(projectRows, monthRows, photoRows []domain.Row) []domain.Project {
	photos := photosByMonth(photoRows)
	months := monthsByProject(monthRows, photos)

	out := make([]domain.Project, 0, len(projectRows))
	for _, row := range projectRows {
		m := normalizedRow(row)
		id := pickTrim(m, projectAliases, "id")
		if id == "" {
			continue
		}

		meses := append([]domain.MonthEntry{}, months[id]...)
		sort.SliceStable(meses, func(i, j int) bool { return meses[i].Mes < meses[j].Mes })

		out = append(out, domain.Project{
			ID:            id,
			Slug:          pickTrim(m, projectAliases, "slug"),
			Titulo:        pickTrim(m, projectAliases, "titulo"),
			Categoria:     pickTrim(m, projectAliases, "categoria"),
			Fuente:        pickTrim(m, projectAliases, "fuente"),
			Estado:        pickTrim(m, projectAliases, "estado"),
			MontoAsignado: math.Max(0, PickNumber(row, 0, projectAliases["montoAsignado"]...)),
			Beneficiarios: pickTrim(m, projectAliases, "beneficiarios"),
			Lat:           ParseNumber(pickFrom(m, projectAliases["lat"]), 0),
			Lng:           ParseNumber(pickFrom(m, projectAliases["lng"]), 0),
			Inicio:        pickTrim(m, projectAliases, "inicio"),
			FinEstimada:   pickTrim(m, projectAliases, "finEstimada"),
			Proveedor:     pickTrim(m, projectAliases, "proveedor"),
			Observaciones: pickTrim(m, projectAliases, "observaciones"),
			Meses:         meses,
		})
	}
	return out
}

func photosByMonth(rows []domain.Row) map[monthKey][]domain.Photo {
	out := make(map[monthKey][]domain.Photo)
	for _, row := range rows {
		m := normalizedRow(row)
		id := pickTrim(m, photoAliases, "idProyecto")
		mes := pickTrim(m, photoAliases, "mes")
		src := pickTrim(m, photoAliases, "src")
		if id == "" || mes == "" || src == "" {
			continue
		}
		k := monthKey{id, mes}
		out[k] = append(out[k], domain.Photo{
			Src: NormalizeImageURL(src),
			Alt: pickTrim(m, photoAliases, "alt"),
		})
	}
	return out
}

func monthsByProject(rows []domain.Row, photos map[monthKey][]domain.Photo) map[string][]domain.MonthEntry {
	out := make(map[string][]domain.MonthEntry)
	for _, row := range rows {
		m := normalizedRow(row)
		id := pickTrim(m, monthAliases, "idProyecto")
		mes := pickTrim(m, monthAliases, "mes")
		if id == "" || mes == "" {
			continue
		}

		fotos := append([]domain.Photo{}, photos[monthKey{id, mes}]...)
		out[id] = append(out[id], domain.MonthEntry{
			Mes:          mes,
			Avance:       clamp(ParseNumber(pickFrom(m, monthAliases["avance"]), 0), 0, 100),
			EjecutadoMes: math.Max(0, ParseNumber(pickFrom(m, monthAliases["ejecutadoMes"]), 0)),
			Resumen:      pickTrim(m, monthAliases, "resumen"),
			Eventos:      ParseEvents(pickTrim(m, monthAliases, "eventos")),
			Fotos:        fotos,
		})
	}
	return out
}

// ParseEvents decodes "fecha:texto;fecha:texto". Only the first colon splits
// a fragment; fragments missing either part are dropped.
func ParseEvents(s string) []domain.EventEntry {
	out := []domain.EventEntry{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	for _, part := range strings.Split(s, ";") {
		fecha, texto, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		fecha, texto = strings.TrimSpace(fecha), strings.TrimSpace(texto)
		if fecha == "" || texto == "" {
			continue
		}
		out = append(out, domain.EventEntry{Fecha: fecha, Texto: texto})
	}
	return out
}
