package operator

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/supplyhub/internal/platform/httpx"
)

// Handler exposes operator HTTP endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/operators", h.register) // POST /api/v1/operators
	r.Get("/api/v1/operators/{id}", h.get)   // GET  /api/v1/operators/{id}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	o, err := h.service.Register(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, o)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, o)
}
