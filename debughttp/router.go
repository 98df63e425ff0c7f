// Package debughttp serves dispatch cache diagnostics over HTTP.
//
//	GET /health
//	GET /dispatch/sites                   site summaries
//	GET /dispatch/sites/{id}              full report as JSON
//	GET /dispatch/sites/{id}?format=text  the report as printed by Dump
package debughttp

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/on-the-ground/dispatch_ive_go/registry"
	"github.com/on-the-ground/dispatch_ive_go/vtblmap"
	"github.com/sugawarayuuta/sonnet"
)

// Source provides the diagnostics served by the router. *registry.Registry
// implements it.
type Source interface {
	Sites() []registry.Summary
	Report(id uuid.UUID) (vtblmap.Report, error)
}

func NewRouter(src Source) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", healthHandler)
	h := &sitesHandler{src: src}
	h.mount(r)
	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type sitesHandler struct {
	src Source
}

func (h *sitesHandler) mount(r chi.Router) {
	r.Route("/dispatch/sites", func(r chi.Router) {
		r.Method(http.MethodGet, "/", HandlerFunc(h.list))
		r.Method(http.MethodGet, "/{id}", HandlerFunc(h.get))
	})
}

type sitesResponse struct {
	Sites []registry.Summary `json:"sites"`
}

func (h *sitesHandler) list(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, sitesResponse{Sites: h.src.Sites()})
	return nil
}

func (h *sitesHandler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return BadRequest("invalid site id")
	}
	rep, err := h.src.Report(id)
	if err != nil {
		return err
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, rep.String())
	default:
		return BadRequest("unknown format")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonnet.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = sonnet.Marshal(errorEnvelope{Err: Internal("failed to encode response")})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
