package app

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"obras_portal/internal/adapters/observability"
	"obras_portal/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Candidate column names per logical field, in priority order.
var projectAliases = map[string][]string{
	"id":        {"id"},
	"slug":      {"slug"},
	"titulo":    {"titulo", "título", "nombre", "proyecto"},
	"categoria": {"categoria", "categoría", "rubro"},
	"fuente":    {"fuente", "origen"},
	"estado":    {"estado", "situacion", "situación"},
	"montoAsignado": {
		"montoAsignado", "monto_asignado", "monto asignado",
		"presupuesto", "presupuesto total", "presupuesto (clp)", "presupuesto(clp)",
	},
	"beneficiarios": {"beneficiarios", "benef"},
	"lat":           {"lat", "latitud"},
	"lng":           {"lng", "long", "longitud"},
	"inicio":        {"inicio", "fecha inicio", "fecha_inicio"},
	"finEstimada":   {"finEstimada", "fin estimada", "fecha fin", "fecha_fin", "termino", "término"},
	"proveedor":     {"proveedor", "contratista"},
	"observaciones": {"observaciones", "obs", "comentarios"},
}

var monthAliases = map[string][]string{
	"idProyecto":   {"idProyecto", "id_proyecto", "id proyecto", "id"},
	"mes":          {"mes", "month", "periodo"},
	"avance":       {"avance", "porcentaje", "%", "avance%"},
	"ejecutadoMes": {"ejecutadoMes", "ejecutado_mes", "ejecutado mes", "ejecutado"},
	"resumen":      {"resumen", "nota", "comentario"},
	"eventos":      {"eventos", "eventos_mes", "eventos mes"},
}

var photoAliases = map[string][]string{
	"idProyecto": {"idProyecto", "id_proyecto", "id proyecto", "id"},
	"mes":        {"mes", "month", "periodo"},
	"src":        {"src", "url", "foto", "imagen", "link"},
	"alt":        {"alt", "texto", "descripcion", "descripción", "caption"},
}

// monetaryKey matches normalized column names that may hold a budget.
var monetaryKey = regexp.MustCompile(`monto|presupuesto`)

/********** normalizer **********/

var (
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	keySeparator = regexp.MustCompile(`[\s_-]+`)
)

// NormalizeKey folds a column name to its canonical form: no diacritics,
// lowercase, no whitespace/underscore/hyphen. "Monto Asignado",
// "MONTO-ASIGNADO" and "montoasignado" all become "montoasignado".
func NormalizeKey(name string) string {
	s, _, err := transform.String(stripAccents, name)
	if err != nil {
		s = name
	}
	return keySeparator.ReplaceAllString(strings.ToLower(s), "")
}

func normalizedRow(row domain.Row) map[string]string {
	m := make(map[string]string, len(row))
	for _, c := range row {
		m[NormalizeKey(c.Name)] = c.Value
	}
	return m
}

/********** pickers **********/

// Pick returns the value of the first candidate column present in row with a
// non-blank value, or "" when none matches.
func Pick(row domain.Row, names ...string) string {
	return pickFrom(normalizedRow(row), names)
}

func pickFrom(m map[string]string, names []string) string {
	for _, n := range names {
		if v, ok := m[NormalizeKey(n)]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// PickNumber parses the first candidate column as a number. If that yields
// nothing it falls back to the first parseable column whose name mentions a
// budget ("monto", "presupuesto"), and finally to def.
func PickNumber(row domain.Row, def float64, names ...string) float64 {
	if n := ParseNumber(Pick(row, names...), math.NaN()); !math.IsNaN(n) {
		return n
	}

	for _, c := range row {
		if !monetaryKey.MatchString(NormalizeKey(c.Name)) {
			continue
		}
		if n := ParseNumber(c.Value, math.NaN()); !math.IsNaN(n) {
			field := ""
			if len(names) > 0 {
				field = names[0]
			}
			// this path can hide a genuinely missing value, keep it visible
			log.Warn().
				Str("field", field).
				Str("column", c.Name).
				Float64("value", n).
				Msg("numeric field recovered from monetary column scan")
			observability.ObserveFieldRecovery(field)
			return n
		}
	}
	return def
}

/********** tiny helpers **********/

func pickTrim(m map[string]string, aliases map[string][]string, key string) string {
	return strings.TrimSpace(pickFrom(m, aliases[key]))
}
