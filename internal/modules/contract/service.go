package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/modules/supplier"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
	"github.com/georgemunganga/supplyhub/internal/platform/metrics"
)

const entity = "contract"

// Suppliers resolves the counterparty of a new contract.
type Suppliers interface {
	GetByID(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error)
}

// Service defines the contract business logic.
type Service interface {
	Create(ctx context.Context, in Input) (*Contract, error)
	Get(ctx context.Context, id string) (*Contract, error)
	GetByNumber(ctx context.Context, number string) (*Contract, error)
	Update(ctx context.Context, id string, in Input) (*Contract, error)
	Search(ctx context.Context, f Filter) (database.Result[*Contract], error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// SetStatus moves the contract to any known status.
	SetStatus(ctx context.Context, id string, status Status) (*Contract, error)

	// RecordAmountChange revises the contract amount and appends the
	// change to its history.
	RecordAmountChange(ctx context.Context, id string, amount decimal.Decimal, reason string) (*Contract, error)
	AmountChanges(ctx context.Context, id string) ([]AmountChange, error)
}

type service struct {
	repo      Repository
	suppliers Suppliers
	metrics   *metrics.Metrics
	clock     database.Clock
}

// NewService creates a new contract service. m may be nil; a nil clock
// defaults to UTC wall time.
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

func (s *service) Create(ctx context.Context, in Input) (*Contract, error) {
	c, err := New(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.suppliers.GetByID(ctx, c.SupplierID); err != nil {
		return nil, err
	}
	if err := s.checkNumber(ctx, c.ID, c.Number); err != nil {
		return nil, err
	}

	defer s.metrics.TrackDB(entity, "create")()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("contract created",
		zap.String("contract_id", c.ID.String()),
		zap.String("contract_number", c.Number),
		zap.String("amount", c.Amount.StringFixed(2)))
	return c, nil
}

// checkNumber fails with ErrDuplicate when a contract other than id holds
// number. An empty number is left to input validation.
func (s *service) checkNumber(ctx context.Context, id uuid.UUID, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}
	_, err := s.repo.FindOneBy(ctx, Criteria{Number: number, ExcludeID: id})
	switch {
	case err == nil:
		return fmt.Errorf("%q: %w", number, ErrDuplicate)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *service) Get(ctx context.Context, id string) (*Contract, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "get")()
	return s.repo.GetByID(ctx, parsed)
}

func (s *service) GetByNumber(ctx context.Context, number string) (*Contract, error) {
	if number == "" {
		return nil, fmt.Errorf("%w: contract_number is required", ErrValidation)
	}
	defer s.metrics.TrackDB(entity, "find_one")()
	return s.repo.FindOneBy(ctx, Criteria{Number: number})
}

// Update replaces the editable fields inside one repository transition.
// Status and amount are kept as stored.
func (s *service) Update(ctx context.Context, id string, in Input) (*Contract, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkNumber(ctx, parsed, in.Number); err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "update")()
	return s.repo.Transition(ctx, parsed, func(c *Contract) error { return c.Update(in) })
}

func (s *service) Search(ctx context.Context, f Filter) (database.Result[*Contract], error) {
	f.Page.Normalize()
	if f.Status != "" && !f.Status.Valid() {
		return database.Result[*Contract]{}, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	if f.Type != "" && !f.Type.Valid() {
		return database.Result[*Contract]{}, fmt.Errorf("%w: unknown contract_type %q", ErrValidation, f.Type)
	}
	defer s.metrics.TrackDB(entity, "search")()
	items, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return database.Result[*Contract]{}, err
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

func (s *service) SetStatus(ctx context.Context, id string, status Status) (*Contract, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var from Status
	c, err := s.repo.Transition(ctx, parsed, func(c *Contract) error {
		from = c.Status()
		return c.SetStatus(status)
	})
	s.metrics.RecordTransition(entity, "set_status", metrics.OutcomeOf(err))
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("contract status changed",
		zap.String("contract_id", c.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(c.Status())))
	return c, nil
}

func (s *service) RecordAmountChange(ctx context.Context, id string, amount decimal.Decimal, reason string) (*Contract, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var change AmountChange
	c, err := s.repo.Transition(ctx, parsed, func(c *Contract) error {
		var err error
		change, err = c.RecordAmountChange(amount, reason, s.clock())
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("contract amount changed",
		zap.String("contract_id", c.ID.String()),
		zap.Int("seq", change.Seq),
		zap.String("previous_amount", change.PreviousAmount.StringFixed(2)),
		zap.String("new_amount", change.NewAmount.StringFixed(2)))
	return c, nil
}

func (s *service) AmountChanges(ctx context.Context, id string) ([]AmountChange, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.AmountChanges(), nil
}
