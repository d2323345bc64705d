package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/modules/supplier"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
	"github.com/georgemunganga/supplyhub/internal/platform/metrics"
)

const entity = "evaluation"

// Suppliers resolves the supplier under evaluation.
type Suppliers interface {
	GetByID(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error)
}

// Score is the pair of scores reported for an evaluation.
type Score struct {
	OverallScore  decimal.Decimal `json:"overall_score"`
	WeightedScore decimal.Decimal `json:"weighted_score"`
	TotalWeight   decimal.Decimal `json:"total_weight"`
	Grade         Grade           `json:"grade,omitempty"`
}

// Service defines the evaluation business logic.
type Service interface {
	Create(ctx context.Context, in Input) (*Evaluation, error)
	Get(ctx context.Context, id string) (*Evaluation, error)
	// Latest returns the most recent evaluation of a supplier, optionally
	// restricted to one period.
	Latest(ctx context.Context, supplierID, period string) (*Evaluation, error)
	Update(ctx context.Context, id string, in Input) (*Evaluation, error)
	Search(ctx context.Context, f Filter) (database.Result[*Evaluation], error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	AddItem(ctx context.Context, id string, in ItemInput) (*Evaluation, error)
	SetOverallScore(ctx context.Context, id string, score decimal.Decimal) (*Evaluation, error)
	CalculateGrade(ctx context.Context, id string) (*Evaluation, error)
	WeightedScore(ctx context.Context, id string) (Score, error)

	SubmitForReview(ctx context.Context, id string) (*Evaluation, error)
	Approve(ctx context.Context, id string) (*Evaluation, error)
	Reject(ctx context.Context, id string) (*Evaluation, error)
}

type service struct {
	repo      Repository
	suppliers Suppliers
	metrics   *metrics.Metrics
}

// NewService creates a new evaluation service. m may be nil.
func NewService(repo Repository, suppliers Suppliers, m *metrics.Metrics) Service {
	return &service{repo: repo, suppliers: suppliers, metrics: m}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", ErrValidation, id)
	}
	return parsed, nil
}

func (s *service) Create(ctx context.Context, in Input) (*Evaluation, error) {
	e, err := New(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.suppliers.GetByID(ctx, e.SupplierID); err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "create")()
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("evaluation created",
		zap.String("evaluation_id", e.ID.String()),
		zap.String("supplier_id", e.SupplierID.String()),
		zap.String("period", e.Period))
	return e, nil
}

func (s *service) Get(ctx context.Context, id string) (*Evaluation, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "get")()
	return s.repo.GetByID(ctx, parsed)
}

func (s *service) Latest(ctx context.Context, supplierID, period string) (*Evaluation, error) {
	parsed, err := parseID(supplierID)
	if err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, "find_one")()
	return s.repo.FindOneBy(ctx, Criteria{SupplierID: parsed, Period: period})
}

func (s *service) Update(ctx context.Context, id string, in Input) (*Evaluation, error) {
	return s.edit(ctx, id, "update", func(e *Evaluation) error { return e.Update(in) })
}

func (s *service) Search(ctx context.Context, f Filter) (database.Result[*Evaluation], error) {
	f.Page.Normalize()
	if f.Status != "" && !f.Status.Valid() {
		return database.Result[*Evaluation]{}, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	if f.Grade != "" && !f.Grade.Valid() {
		return database.Result[*Evaluation]{}, fmt.Errorf("%w: unknown grade %q", ErrValidation, f.Grade)
	}
	defer s.metrics.TrackDB(entity, "search")()
	items, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return database.Result[*Evaluation]{}, err
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

func (s *service) AddItem(ctx context.Context, id string, in ItemInput) (*Evaluation, error) {
	return s.edit(ctx, id, "add_item", func(e *Evaluation) error {
		_, err := e.AddItem(in)
		return err
	})
}

func (s *service) SetOverallScore(ctx context.Context, id string, score decimal.Decimal) (*Evaluation, error) {
	return s.edit(ctx, id, "set_score", func(e *Evaluation) error { return e.SetOverallScore(score) })
}

func (s *service) CalculateGrade(ctx context.Context, id string) (*Evaluation, error) {
	e, err := s.edit(ctx, id, "calculate_grade", func(e *Evaluation) error {
		e.CalculateGrade()
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("evaluation graded",
		zap.String("evaluation_id", e.ID.String()),
		zap.String("overall_score", e.OverallScore.StringFixed(2)),
		zap.String("grade", string(e.Grade)))
	return e, nil
}

func (s *service) WeightedScore(ctx context.Context, id string) (Score, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return Score{}, err
	}
	return Score{
		OverallScore:  e.OverallScore,
		WeightedScore: e.WeightedScore().Round(2),
		TotalWeight:   e.TotalWeight(),
		Grade:         e.Grade,
	}, nil
}

// edit applies fn to the stored evaluation within one repository transition.
func (s *service) edit(ctx context.Context, id, op string, fn func(*Evaluation) error) (*Evaluation, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	defer s.metrics.TrackDB(entity, op)()
	return s.repo.Transition(ctx, parsed, fn)
}

func (s *service) SubmitForReview(ctx context.Context, id string) (*Evaluation, error) {
	return s.transition(ctx, id, ActionSubmit, (*Evaluation).SubmitForReview)
}

func (s *service) Approve(ctx context.Context, id string) (*Evaluation, error) {
	return s.transition(ctx, id, ActionApprove, (*Evaluation).Approve)
}

func (s *service) Reject(ctx context.Context, id string) (*Evaluation, error) {
	return s.transition(ctx, id, ActionReject, (*Evaluation).Reject)
}

func (s *service) transition(ctx context.Context, id, action string, fn func(*Evaluation) error) (*Evaluation, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var from Status
	e, err := s.repo.Transition(ctx, parsed, func(e *Evaluation) error {
		from = e.Status()
		return fn(e)
	})
	s.metrics.RecordTransition(entity, action, metrics.OutcomeOf(err))
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("evaluation status changed",
		zap.String("evaluation_id", e.ID.String()),
		zap.String("action", action),
		zap.String("from", string(from)),
		zap.String("to", string(e.Status())))
	return e, nil
}
