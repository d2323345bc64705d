package qualification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
	"github.com/georgemunganga/supplyhub/internal/modules/supplier"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
	"github.com/georgemunganga/supplyhub/internal/platform/metrics"
)

const entity = "qualification"

// Suppliers resolves the owning supplier of a new qualification.
type Suppliers interface {
	GetByID(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error)
}

// Service defines the qualification business logic.
type Service interface {
	Create(ctx context.Context, in Input) (*Qualification, error)
	Get(ctx context.Context, id string) (*Qualification, error)
	Update(ctx context.Context, id string, in Input) (*Qualification, error)
	Search(ctx context.Context, f Filter) (database.Result[*Qualification], error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	SubmitForReview(ctx context.Context, id string) (*Qualification, error)
	Approve(ctx context.Context, id string) (*Qualification, error)
	Reject(ctx context.Context, id string) (*Qualification, error)
	Renew(ctx context.Context, id string, newExpiry time.Time) (*Qualification, error)
	MarkExpired(ctx context.Context, id string) (*Qualification, error)
	SetActive(ctx context.Context, id string, active bool) (*Qualification, error)

	// ExpireDue moves every approved qualification past its expiry date to
	// EXPIRED and returns how many were changed.
	ExpireDue(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	suppliers Suppliers
	metrics   *metrics.Metrics
	clock     database.Clock
}

// NewService creates a new qualification service. m may be nil; a nil
// clock defaults to UTC wall time.
func NewService(repo Repository, suppliers Suppliers, m *metrics.Metrics, clock database.Clock) Service {
	if clock == nil {
		clock = database.UTC
	}
	return &service{repo: repo, suppliers: suppliers, metrics: m, clock: clock}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return parsed, nil
}

func (s *service) Create(ctx context.Context, in Input) (*Qualification, error) {
	q, err := New(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.suppliers.GetByID(ctx, q.SupplierID); err != nil {
		return nil, err
	}
	_, err = s.repo.FindOneBy(ctx, Criteria{SupplierID: q.SupplierID, CertificateNumber: q.CertificateNumber})
	switch {
	case err == nil:
		return nil, fmt.Errorf("%q: %w", q.CertificateNumber, ErrDuplicate)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	defer s.metrics.TrackDB(entity, "create")()
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("qualification created",
		zap.String("qualification_id", q.ID.String()), zap.String("supplier_id", q.SupplierID.String()))
	return q, nil
}

func (s *service) Get(ctx context.Context, id string) (*Qualification, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "get")()
	return s.repo.GetByID(ctx, parsed)
}

// Update replaces the editable fields inside one repository transition.
// The review status and active flag are kept as stored.
func (s *service) Update(ctx context.Context, id string, in Input) (*Qualification, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "update")()
	return s.repo.Transition(ctx, parsed, func(q *Qualification) error { return q.Update(in) })
}

func (s *service) Search(ctx context.Context, f Filter) (database.Result[*Qualification], error) {
	f.Page.Normalize()
	if f.Status != "" && !f.Status.Valid() {
		return database.Result[*Qualification]{}, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	defer s.metrics.TrackDB(entity, "search")()
	items, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return database.Result[*Qualification]{}, err
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

func (s *service) SubmitForReview(ctx context.Context, id string) (*Qualification, error) {
	return s.transition(ctx, id, ActionSubmit, (*Qualification).SubmitForReview)
}

func (s *service) Approve(ctx context.Context, id string) (*Qualification, error) {
	return s.transition(ctx, id, ActionApprove, (*Qualification).Approve)
}

func (s *service) Reject(ctx context.Context, id string) (*Qualification, error) {
	return s.transition(ctx, id, ActionReject, (*Qualification).Reject)
}

func (s *service) Renew(ctx context.Context, id string, newExpiry time.Time) (*Qualification, error) {
	if !newExpiry.After(s.clock()) {
		return nil, fmt.Errorf("%w: new expiry date must be in the future", ErrValidation)
	}
	return s.transition(ctx, id, ActionRenew, func(q *Qualification) error { return q.Renew(newExpiry) })
}

func (s *service) MarkExpired(ctx context.Context, id string) (*Qualification, error) {
	return s.transition(ctx, id, ActionExpire, (*Qualification).MarkExpired)
}

func (s *service) SetActive(ctx context.Context, id string, active bool) (*Qualification, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Transition(ctx, parsed, func(q *Qualification) error {
		q.SetActive(active)
		return nil
	})
}

// errNotDue aborts the expiry of a qualification renewed since ListDue.
var errNotDue = errors.New("qualification no longer due")

func (s *service) ExpireDue(ctx context.Context) (int, error) {
	now := s.clock()
	ids, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range ids {
		_, err := s.transition(ctx, id.String(), ActionExpire, func(q *Qualification) error {
			if !q.IsExpired(now) {
				return errNotDue
			}
			return q.MarkExpired()
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, errNotDue), errors.Is(err, ErrNotFound), errors.Is(err, lifecycle.ErrIllegalTransition):
			// renewed, expired or removed since ListDue
		default:
			return expired, err
		}
	}
	if expired > 0 {
		logger.FromContext(ctx).Info("qualifications expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *service) transition(ctx context.Context, id, action string, fn func(*Qualification) error) (*Qualification, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var from Status
	q, err := s.repo.Transition(ctx, parsed, func(q *Qualification) error {
		from = q.Status()
		return fn(q)
	})
	s.metrics.RecordTransition(entity, action, metrics.OutcomeOf(err))
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("qualification status changed",
		zap.String("qualification_id", q.ID.String()),
		zap.String("action", action),
		zap.String("from", string(from)),
		zap.String("to", string(q.Status())))
	return q, nil
}
