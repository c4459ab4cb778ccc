package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"obras_portal/internal/app"
	"obras_portal/internal/domain"
)

const thumbWidth = 600

type Handlers struct {
	Q   *app.QueryService
	Ing *app.IngestionService // nil disables POST /v1/sync
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/projects", h.listProjects)
	s.mux.Get("/v1/projects/{id}", h.getProject)
	s.mux.Get("/v1/projects/{id}/export.csv", h.exportProject)
	if h.Ing != nil {
		s.mux.Post("/v1/sync", h.sync)
	}
}

// ---- views ----

type photoView struct {
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Thumb string `json:"thumb"`
}

type monthView struct {
	domain.MonthEntry
	Fotos []photoView `json:"fotos"`
}

type projectView struct {
	domain.Project
	Meses []monthView `json:"meses"`
}

func toView(p domain.Project) projectView {
	v := projectView{Project: p, Meses: make([]monthView, 0, len(p.Meses))}
	for _, m := range p.Meses {
		mv := monthView{MonthEntry: m, Fotos: make([]photoView, 0, len(m.Fotos))}
		for _, f := range m.Fotos {
			mv.Fotos = append(mv.Fotos, photoView{Src: f.Src, Alt: f.Alt, Thumb: app.ThumbnailURL(f.Src, thumbWidth)})
		}
		v.Meses = append(v.Meses, mv)
	}
	return v
}

// ---- helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// ---- handlers ----

func (h *Handlers) listProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Q.ListProjects(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list projects failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "projects unavailable")
		return
	}
	items := make([]projectView, 0, len(ps))
	for _, p := range ps {
		items = append(items, toView(p))
	}
	writeJSON(w, r, struct {
		Items []projectView `json:"items"`
	}{items})
}

func (h *Handlers) project(w http.ResponseWriter, r *http.Request) (domain.Project, bool) {
	p, err := h.Q.GetProject(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "project not found")
		return p, false
	case err != nil:
		log.Error().Err(err).Msg("get project failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "project unavailable")
		return p, false
	}
	return p, true
}

func (h *Handlers) getProject(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.project(w, r); ok {
		writeJSON(w, r, toView(p))
	}
}

func (h *Handlers) exportProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	body, err := app.ProjectCSV(p)
	if err != nil {
		log.Error().Err(err).Str("id", p.ID).Msg("csv export failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "export failed")
		return
	}
	name := p.Slug
	if name == "" {
		name = p.ID
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write export body")
	}
}

// sync forces a refresh: primary URLs get a cache-busting token.
func (h *Handlers) sync(w http.ResponseWriter, r *http.Request) {
	run, err := h.Ing.Sync(r.Context(), app.SyncOptions{Force: true})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrSourceUnavailable) {
			status = http.StatusBadGateway
		}
		writeProblem(w, status, "Sync Failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(run); err != nil {
		log.Error().Err(err).Msg("failed to write sync body")
	}
}
