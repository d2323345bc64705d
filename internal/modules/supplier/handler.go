package supplier

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/httpx"
)

// Handler exposes supplier and contact HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/suppliers", func(r chi.Router) {
		r.Post("/", h.createSupplier)              // POST   /api/v1/suppliers
		r.Get("/", h.searchSuppliers)              // GET    /api/v1/suppliers?search=&status=&page=
		r.Get("/stats", h.countByStatus)           // GET    /api/v1/suppliers/stats
		r.Get("/duplicates", h.checkDuplicates)    // GET    /api/v1/suppliers/duplicates?registration_number=
		r.Get("/{id}", h.getSupplier)              // GET    /api/v1/suppliers/{id}
		r.Put("/{id}", h.updateSupplier)           // PUT    /api/v1/suppliers/{id}
		r.Delete("/{id}", h.deleteSupplier)        // DELETE /api/v1/suppliers/{id}
		r.Post("/{id}/submit", h.action(h.service.SubmitForReview))
		r.Post("/{id}/approve", h.action(h.service.Approve))
		r.Post("/{id}/reject", h.action(h.service.Reject))
		r.Post("/{id}/suspend", h.action(h.service.Suspend))
		r.Post("/{id}/activate", h.action(h.service.Activate))
		r.Post("/{id}/terminate", h.action(h.service.Terminate))
		r.Post("/{id}/contacts", h.addContact)     // POST   /api/v1/suppliers/{id}/contacts
		r.Get("/{id}/contacts", h.listContacts)    // GET    /api/v1/suppliers/{id}/contacts
	})
	r.Route("/api/v1/contacts", func(r chi.Router) {
		r.Put("/{id}", h.updateContact)
		r.Delete("/{id}", h.deleteContact)
		r.Post("/{id}/make-primary", h.contactAction(h.service.MakePrimaryContact))
		r.Post("/{id}/remove-primary", h.contactAction(h.service.RemovePrimaryContact))
	})
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	s, err := h.service.CreateSupplier(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, s)
}

func (h *Handler) searchSuppliers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.service.SearchSuppliers(r.Context(), Filter{
		Query:            q.Get("search"),
		Status:           Status(q.Get("status")),
		Type:             Type(q.Get("type")),
		CooperationModel: CooperationModel(q.Get("cooperation_model")),
		Page:             database.PageFromQuery(q),
	})
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

func (h *Handler) checkDuplicates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exclude := q.Get("exclude_id")
	body := map[string]bool{}
	if n := q.Get("registration_number"); n != "" {
		dup, err := h.service.CheckDuplicateRegistration(r.Context(), n, exclude)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		body["registration_number_exists"] = dup
	}
	if n := q.Get("tax_number"); n != "" {
		dup, err := h.service.CheckDuplicateTaxNumber(r.Context(), n, exclude)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		body["tax_number_exists"] = dup
	}
	if len(body) == 0 {
		httpx.Respond(w, http.StatusBadRequest, map[string]string{"error": "registration_number or tax_number is required"})
		return
	}
	httpx.Respond(w, http.StatusOK, body)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, s)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	s, err := h.service.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, s)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// action adapts a lifecycle service call to a handler.
func (h *Handler) action(fn func(ctx context.Context, id string) (*Supplier, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.Respond(w, http.StatusOK, s)
	}
}

func (h *Handler) addContact(w http.ResponseWriter, r *http.Request) {
	var in ContactInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.AddContact(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, c)
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.ListContacts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, contacts)
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	var in ContactInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.service.UpdateContact(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) contactAction(fn func(ctx context.Context, id string) (*Contact, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.Respond(w, http.StatusOK, c)
	}
}
