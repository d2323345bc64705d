package evaluation

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/httpx"
)

// Handler exposes evaluation HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/evaluations", func(r chi.Router) {
		r.Post("/", h.create)                     // POST /api/v1/evaluations
		r.Get("/", h.search)                      // GET  /api/v1/evaluations?supplier_id=&status=&grade=&search=
		r.Get("/stats", h.countByStatus)          // GET  /api/v1/evaluations/stats
		r.Get("/latest", h.latest)                // GET  /api/v1/evaluations/latest?supplier_id=&period=
		r.Get("/{id}", h.get)                     // GET  /api/v1/evaluations/{id}
		r.Put("/{id}", h.update)                  // PUT  /api/v1/evaluations/{id}
		r.Post("/{id}/items", h.addItem)          // POST /api/v1/evaluations/{id}/items
		r.Put("/{id}/score", h.setScore)          // PUT  /api/v1/evaluations/{id}/score {"overall_score": ...}
		r.Get("/{id}/weighted-score", h.weighted) // GET  /api/v1/evaluations/{id}/weighted-score
		r.Post("/{id}/calculate-grade", h.action(h.service.CalculateGrade))
		r.Post("/{id}/submit", h.action(h.service.SubmitForReview))
		r.Post("/{id}/approve", h.action(h.service.Approve))
		r.Post("/{id}/reject", h.action(h.service.Reject))
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	e, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, e)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Query:  q.Get("search"),
		Status: Status(q.Get("status")),
		Grade:  Grade(q.Get("grade")),
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

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	e, err := h.service.Latest(r.Context(), q.Get("supplier_id"), q.Get("period"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, e)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	e, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, e)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	e, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, e)
}

func (h *Handler) setScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OverallScore *decimal.Decimal `json:"overall_score"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if req.OverallScore == nil {
		httpx.Error(w, r, fmt.Errorf("%w: overall_score is required", ErrValidation))
		return
	}
	e, err := h.service.SetOverallScore(r.Context(), chi.URLParam(r, "id"), *req.OverallScore)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, e)
}

func (h *Handler) weighted(w http.ResponseWriter, r *http.Request) {
	score, err := h.service.WeightedScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, score)
}

func (h *Handler) action(fn func(ctx context.Context, id string) (*Evaluation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.Respond(w, http.StatusOK, e)
	}
}
