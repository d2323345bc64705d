package contract

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/httpx"
)

// Handler exposes contract HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/contracts", func(r chi.Router) {
		r.Post("/", h.create)                                // POST  /api/v1/contracts
		r.Get("/", h.search)                                 // GET   /api/v1/contracts?search=&supplier_id=&status=&type=
		r.Get("/stats", h.countByStatus)                     // GET   /api/v1/contracts/stats
		r.Get("/number/{number}", h.getByNumber)             // GET   /api/v1/contracts/number/{number}
		r.Get("/{id}", h.get)                                // GET   /api/v1/contracts/{id}
		r.Put("/{id}", h.update)                             // PUT   /api/v1/contracts/{id}
		r.Patch("/{id}/status", h.setStatus)                 // PATCH /api/v1/contracts/{id}/status
		r.Post("/{id}/amount-changes", h.recordAmountChange) // POST  /api/v1/contracts/{id}/amount-changes
		r.Get("/{id}/amount-changes", h.amountChanges)       // GET   /api/v1/contracts/{id}/amount-changes
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, c)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Query:  q.Get("search"),
		Status: Status(q.Get("status")),
		Type:   Type(q.Get("type")),
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

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) recordAmountChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Reason string          `json:"reason"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.RecordAmountChange(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Reason)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, c)
}

func (h *Handler) amountChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := h.service.AmountChanges(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, changes)
}
