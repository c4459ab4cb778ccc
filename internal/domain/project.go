package domain

// Photo is one picture attached to a project month. Src is already normalized.
type Photo struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type EventEntry struct {
	Fecha string `json:"fecha"`
	Texto string `json:"texto"`
}

type MonthEntry struct {
	Mes          string       `json:"mes"`    // YYYY-MM
	Avance       float64      `json:"avance"` // 0..100
	EjecutadoMes float64      `json:"ejecutadoMes"`
	Resumen      string       `json:"resumen"`
	Eventos      []EventEntry `json:"eventos"`
	Fotos        []Photo      `json:"fotos"`
}

type Project struct {
	ID            string       `json:"id"`
	Slug          string       `json:"slug"`
	Titulo        string       `json:"titulo"`
	Categoria     string       `json:"categoria"`
	Fuente        string       `json:"fuente"`
	Estado        string       `json:"estado"`
	MontoAsignado float64      `json:"montoAsignado"`
	Beneficiarios string       `json:"beneficiarios"`
	Lat           float64      `json:"lat"`
	Lng           float64      `json:"lng"`
	Inicio        string       `json:"inicio"`
	FinEstimada   string       `json:"finEstimada"`
	Proveedor     string       `json:"proveedor"`
	Observaciones string       `json:"observaciones"`
	Meses         []MonthEntry `json:"meses"` // ascending by Mes
}
