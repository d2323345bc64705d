package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
	"github.com/georgemunganga/supplyhub/internal/platform/metrics"
)

const entity = "supplier"

// Service defines the supplier management business logic.
type Service interface {
	// CreateSupplier validates in, rejects duplicate registration or tax
	// numbers, and stores a new DRAFT supplier.
	CreateSupplier(ctx context.Context, in Input) (*Supplier, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	FindSupplier(ctx context.Context, c Criteria) (*Supplier, error)
	UpdateSupplier(ctx context.Context, id string, in Input) (*Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
	SearchSuppliers(ctx context.Context, f Filter) (database.Result[*Supplier], error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// CheckDuplicateRegistration reports whether another supplier already
	// uses the registration number. excludeID may be empty.
	CheckDuplicateRegistration(ctx context.Context, number, excludeID string) (bool, error)
	CheckDuplicateTaxNumber(ctx context.Context, number, excludeID string) (bool, error)

	SubmitForReview(ctx context.Context, id string) (*Supplier, error)
	Approve(ctx context.Context, id string) (*Supplier, error)
	Reject(ctx context.Context, id string) (*Supplier, error)
	Suspend(ctx context.Context, id string) (*Supplier, error)
	Activate(ctx context.Context, id string) (*Supplier, error)
	Terminate(ctx context.Context, id string) (*Supplier, error)

	AddContact(ctx context.Context, supplierID string, in ContactInput) (*Contact, error)
	ListContacts(ctx context.Context, supplierID string) ([]*Contact, error)
	UpdateContact(ctx context.Context, id string, in ContactInput) (*Contact, error)
	DeleteContact(ctx context.Context, id string) error
	MakePrimaryContact(ctx context.Context, id string) (*Contact, error)
	RemovePrimaryContact(ctx context.Context, id string) (*Contact, error)
}

type service struct {
	repo     Repository
	contacts ContactRepository
	metrics  *metrics.Metrics
}

// NewService creates a new supplier service. m may be nil.
func NewService(repo Repository, contacts ContactRepository, m *metrics.Metrics) Service {
	return &service{repo: repo, contacts: contacts, metrics: m}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return parsed, nil
}

func (s *service) CreateSupplier(ctx context.Context, in Input) (*Supplier, error) {
	sup, err := New(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, sup); err != nil {
		return nil, err
	}

	defer s.metrics.TrackDB(entity, "create")()
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("supplier created",
		zap.String("supplier_id", sup.ID.String()), zap.String("name", sup.Name))
	return sup, nil
}

// checkUnique reports a friendlier error than the storage unique index.
func (s *service) checkUnique(ctx context.Context, sup *Supplier) error {
	dup, err := s.exists(ctx, Criteria{RegistrationNumber: sup.RegistrationNumber, ExcludeID: sup.ID})
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("registration number %q: %w", sup.RegistrationNumber, ErrDuplicate)
	}
	dup, err = s.exists(ctx, Criteria{TaxNumber: sup.TaxNumber, ExcludeID: sup.ID})
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("tax number %q: %w", sup.TaxNumber, ErrDuplicate)
	}
	return nil
}

func (s *service) exists(ctx context.Context, c Criteria) (bool, error) {
	_, err := s.repo.FindOneBy(ctx, c)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *service) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "get")()
	return s.repo.GetByID(ctx, parsed)
}

func (s *service) FindSupplier(ctx context.Context, c Criteria) (*Supplier, error) {
	if c.Name == "" && c.RegistrationNumber == "" && c.TaxNumber == "" {
		return nil, fmt.Errorf("%w: at least one of name, registration_number or tax_number is required", ErrValidation)
	}
	defer s.metrics.TrackDB(entity, "find_one")()
	return s.repo.FindOneBy(ctx, c)
}

// UpdateSupplier replaces the editable fields inside one repository
// transition, so a concurrent status change is never written back over.
func (s *service) UpdateSupplier(ctx context.Context, id string, in Input) (*Supplier, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	candidate := &Supplier{ID: parsed}
	if err := candidate.Update(in); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, candidate); err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "update")()
	return s.repo.Transition(ctx, parsed, func(sup *Supplier) error { return sup.Update(in) })
}

func (s *service) DeleteSupplier(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}
	defer s.metrics.TrackDB(entity, "delete")()
	return s.repo.Delete(ctx, parsed)
}

func (s *service) SearchSuppliers(ctx context.Context, f Filter) (database.Result[*Supplier], error) {
	f.Page.Normalize()
	if f.Status != "" && !f.Status.Valid() {
		return database.Result[*Supplier]{}, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	defer s.metrics.TrackDB(entity, "search")()
	items, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return database.Result[*Supplier]{}, err
	}
	return database.NewResult(items, f.Page, total), nil
}

func (s *service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	defer s.metrics.TrackDB(entity, "count_by_status")()
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	gauge := make(map[string]int, len(counts))
	for st, n := range counts {
		gauge[string(st)] = n
	}
	s.metrics.SetStatusCounts(entity, gauge)
	return counts, nil
}

func (s *service) CheckDuplicateRegistration(ctx context.Context, number, excludeID string) (bool, error) {
	c := Criteria{RegistrationNumber: number}
	return s.checkDuplicate(ctx, c, excludeID)
}

func (s *service) CheckDuplicateTaxNumber(ctx context.Context, number, excludeID string) (bool, error) {
	c := Criteria{TaxNumber: number}
	return s.checkDuplicate(ctx, c, excludeID)
}

func (s *service) checkDuplicate(ctx context.Context, c Criteria, excludeID string) (bool, error) {
	if c.RegistrationNumber == "" && c.TaxNumber == "" {
		return false, fmt.Errorf("%w: number is required", ErrValidation)
	}
	if excludeID != "" {
		parsed, err := parseID(excludeID)
		if err != nil {
			return false, err
		}
		c.ExcludeID = parsed
	}
	return s.exists(ctx, c)
}

func (s *service) SubmitForReview(ctx context.Context, id string) (*Supplier, error) {
	return s.transition(ctx, id, ActionSubmit, (*Supplier).SubmitForReview)
}

func (s *service) Approve(ctx context.Context, id string) (*Supplier, error) {
	return s.transition(ctx, id, ActionApprove, (*Supplier).Approve)
}

func (s *service) Reject(ctx context.Context, id string) (*Supplier, error) {
	return s.transition(ctx, id, ActionReject, (*Supplier).Reject)
}

func (s *service) Suspend(ctx context.Context, id string) (*Supplier, error) {
	return s.transition(ctx, id, ActionSuspend, (*Supplier).Suspend)
}

func (s *service) Activate(ctx context.Context, id string) (*Supplier, error) {
	return s.transition(ctx, id, ActionActivate, (*Supplier).Activate)
}

func (s *service) Terminate(ctx context.Context, id string) (*Supplier, error) {
	return s.transition(ctx, id, ActionTerminate, (*Supplier).Terminate)
}

func (s *service) transition(ctx context.Context, id, action string, fn func(*Supplier) error) (*Supplier, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var from Status
	sup, err := s.repo.Transition(ctx, parsed, func(sup *Supplier) error {
		from = sup.Status()
		return fn(sup)
	})
	s.metrics.RecordTransition(entity, action, metrics.OutcomeOf(err))
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("supplier status changed",
		zap.String("supplier_id", sup.ID.String()),
		zap.String("action", action),
		zap.String("from", string(from)),
		zap.String("to", string(sup.Status())))
	return sup, nil
}

func (s *service) AddContact(ctx context.Context, supplierID string, in ContactInput) (*Contact, error) {
	sup, err := s.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	c, err := NewContact(sup.ID, in)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ListContacts(ctx context.Context, supplierID string) ([]*Contact, error) {
	sup, err := s.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.ListBySupplier(ctx, sup.ID)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []*Contact{}
	}
	return contacts, nil
}

func (s *service) UpdateContact(ctx context.Context, id string, in ContactInput) (*Contact, error) {
	return s.editContact(ctx, id, func(c *Contact) error { return c.Update(in) })
}

func (s *service) MakePrimaryContact(ctx context.Context, id string) (*Contact, error) {
	return s.editContact(ctx, id, func(c *Contact) error { c.MakePrimary(); return nil })
}

func (s *service) RemovePrimaryContact(ctx context.Context, id string) (*Contact, error) {
	return s.editContact(ctx, id, func(c *Contact) error { c.RemovePrimary(); return nil })
}

func (s *service) editContact(ctx context.Context, id string, fn func(*Contact) error) (*Contact, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.contacts.Transition(ctx, parsed, fn)
}

func (s *service) DeleteContact(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return err
	}
	return s.contacts.Delete(ctx, parsed)
}
