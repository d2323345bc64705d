package qualification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/httpx"
)

// Handler exposes qualification HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/qualifications", func(r chi.Router) {
		r.Post("/", h.create)                // POST /api/v1/qualifications
		r.Get("/", h.search)                 // GET  /api/v1/qualifications?supplier_id=&status=&search=
		r.Get("/stats", h.countByStatus)     // GET  /api/v1/qualifications/stats
		r.Get("/{id}", h.get)                // GET  /api/v1/qualifications/{id}
		r.Put("/{id}", h.update)             // PUT  /api/v1/qualifications/{id}
		r.Post("/{id}/submit", h.action(h.service.SubmitForReview))
		r.Post("/{id}/approve", h.action(h.service.Approve))
		r.Post("/{id}/reject", h.action(h.service.Reject))
		r.Post("/{id}/expire", h.action(h.service.MarkExpired))
		r.Post("/{id}/renew", h.renew)       // POST /api/v1/qualifications/{id}/renew {"expiry_date": ...}
		r.Post("/{id}/activate", h.action(func(ctx context.Context, id string) (*Qualification, error) {
			return h.service.SetActive(ctx, id, true)
		}))
		r.Post("/{id}/deactivate", h.action(func(ctx context.Context, id string) (*Qualification, error) {
			return h.service.SetActive(ctx, id, false)
		}))
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	q, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, q)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Query:  q.Get("search"),
		Status: Status(q.Get("status")),
		Page:   database.PageFromQuery(q),
	}
	if sid := q.Get("supplier_id"); sid != "" {
		parsed, err := uuid.Parse(sid)
		if err != nil {
			httpx.Error(w, r, fmt.Errorf("%w: invalid supplier_id %q", ErrValidation, sid))
			return
		}
		f.SupplierID = parsed
	}
	res, err := h.service.Search(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) countByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountByStatus(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, counts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, q)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	q, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, q)
}

func (h *Handler) renew(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpiryDate time.Time `json:"expiry_date"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	q, err := h.service.Renew(r.Context(), chi.URLParam(r, "id"), req.ExpiryDate)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, q)
}

func (h *Handler) action(fn func(ctx context.Context, id string) (*Qualification, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.Respond(w, http.StatusOK, q)
	}
}
