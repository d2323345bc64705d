// Package evaluation handles periodic supplier performance evaluations,
// their scored items and letter grades.
package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
)

var (
	ErrNotFound   = fmt.Errorf("evaluation %w", apperr.ErrNotFound)
	ErrValidation = fmt.Errorf("evaluation %w", apperr.ErrValidation)
)

const actionEdit = "edit"

// Evaluation rates one supplier over a period.
type Evaluation struct {
	ID           uuid.UUID       `json:"id"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	Title        string          `json:"title"`
	Period       string          `json:"period"`
	PeriodStart  *time.Time      `json:"period_start,omitempty"`
	PeriodEnd    *time.Time      `json:"period_end,omitempty"`
	Evaluator    string          `json:"evaluator"`
	OverallScore decimal.Decimal `json:"overall_score"`
	Grade        Grade           `json:"grade,omitempty"`
	Comments     string          `json:"comments,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	status Status
	items  []Item
	stored int
}

// Input carries the editable evaluation header fields.
type Input struct {
	SupplierID  uuid.UUID  `json:"supplier_id"`
	Title       string     `json:"title"`
	Period      string     `json:"period"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	Evaluator   string     `json:"evaluator"`
	Comments    string     `json:"comments,omitempty"`
}

func (in Input) check() error {
	switch {
	case in.SupplierID == uuid.Nil:
		return fmt.Errorf("%w: supplier_id is required", ErrValidation)
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case strings.TrimSpace(in.Period) == "":
		return fmt.Errorf("%w: period is required", ErrValidation)
	case strings.TrimSpace(in.Evaluator) == "":
		return fmt.Errorf("%w: evaluator is required", ErrValidation)
	}
	if in.PeriodStart != nil && in.PeriodEnd != nil && in.PeriodEnd.Before(*in.PeriodStart) {
		return fmt.Errorf("%w: period_end precedes period_start", ErrValidation)
	}
	return nil
}

// New validates in and returns a DRAFT evaluation with no items.
func New(in Input) (*Evaluation, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	e := &Evaluation{ID: uuid.New(), SupplierID: in.SupplierID, status: StatusDraft}
	e.apply(in)
	return e, nil
}

// Update replaces the header fields of an editable evaluation.
func (e *Evaluation) Update(in Input) error {
	if err := e.checkEditable(); err != nil {
		return err
	}
	in.SupplierID = e.SupplierID
	if err := in.check(); err != nil {
		return err
	}
	e.apply(in)
	return nil
}

func (e *Evaluation) apply(in Input) {
	e.Title = strings.TrimSpace(in.Title)
	e.Period = strings.TrimSpace(in.Period)
	e.PeriodStart = in.PeriodStart
	e.PeriodEnd = in.PeriodEnd
	e.Evaluator = strings.TrimSpace(in.Evaluator)
	e.Comments = in.Comments
}

func (e *Evaluation) Status() Status    { return e.status }
func (e *Evaluation) IsEditable() bool  { return e.status.IsEditable() }
func (e *Evaluation) IsCompleted() bool { return e.status.IsCompleted() }

func (e *Evaluation) checkEditable() error {
	if e.IsEditable() {
		return nil
	}
	return &lifecycle.TransitionError{
		Entity:   machine.Entity(),
		Action:   actionEdit,
		Current:  string(e.status),
		Required: []string{string(StatusDraft), string(StatusRejected)},
		Message:  "只有草稿或已拒绝状态的评估可以修改",
	}
}

// SetOverallScore stores the evaluator's overall score, which must lie
// within 0 and 100. The grade is not recalculated.
func (e *Evaluation) SetOverallScore(score decimal.Decimal) error {
	if err := e.checkEditable(); err != nil {
		return err
	}
	if score.IsNegative() || score.GreaterThan(hundred) {
		return fmt.Errorf("%w: overall_score must be between 0 and 100", ErrValidation)
	}
	e.OverallScore = score.Round(2)
	return nil
}

// CalculateGrade derives the grade from the overall score and stores it.
func (e *Evaluation) CalculateGrade() Grade {
	e.Grade = GradeFromScore(e.OverallScore)
	return e.Grade
}

// AddItem appends a scored item to an editable evaluation.
func (e *Evaluation) AddItem(in ItemInput) (Item, error) {
	if err := e.checkEditable(); err != nil {
		return Item{}, err
	}
	if err := in.check(); err != nil {
		return Item{}, err
	}
	item := Item{
		ID:           uuid.New(),
		EvaluationID: e.ID,
		Name:         strings.TrimSpace(in.Name),
		Type:         in.Type,
		Weight:       in.Weight,
		Score:        in.Score,
		MaxScore:     in.MaxScore,
		Unit:         in.Unit,
		Remark:       in.Remark,
	}
	e.items = append(e.items, item)
	return item, nil
}

// Items returns a copy of the evaluation items in insertion order.
func (e *Evaluation) Items() []Item {
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// WeightedScore is the sum of the item weighted scores. It is reported
// alongside OverallScore and never replaces it.
func (e *Evaluation) WeightedScore() decimal.Decimal { return TotalWeightedScore(e.items) }

// TotalWeight sums the item weights.
func (e *Evaluation) TotalWeight() decimal.Decimal { return TotalWeight(e.items) }

func (e *Evaluation) SubmitForReview() error { return e.fire(ActionSubmit) }
func (e *Evaluation) Approve() error         { return e.fire(ActionApprove) }
func (e *Evaluation) Reject() error          { return e.fire(ActionReject) }

func (e *Evaluation) fire(action string) error {
	next, err := machine.Fire(action, e.status)
	if err != nil {
		return err
	}
	e.status = next
	return nil
}

// Touch stamps the evaluation and any item not yet stamped.
func (e *Evaluation) Touch(now time.Time) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	for i := range e.items {
		if e.items[i].CreatedAt.IsZero() {
			e.items[i].CreatedAt = now
			e.items[i].UpdatedAt = now
		}
	}
}

// pendingItems returns the items added since the evaluation was loaded.
func (e *Evaluation) pendingItems() []Item { return e.items[e.stored:] }

func (e *Evaluation) markStored() { e.stored = len(e.items) }

func (e *Evaluation) clone() *Evaluation {
	c := *e
	c.items = e.Items()
	if e.PeriodStart != nil {
		d := *e.PeriodStart
		c.PeriodStart = &d
	}
	if e.PeriodEnd != nil {
		d := *e.PeriodEnd
		c.PeriodEnd = &d
	}
	return &c
}

func (e Evaluation) MarshalJSON() ([]byte, error) {
	type alias Evaluation
	return json.Marshal(struct {
		alias
		Status        Status          `json:"status"`
		StatusLabel   string          `json:"status_label"`
		GradeLabel    string          `json:"grade_label,omitempty"`
		Items         []Item          `json:"items"`
		WeightedScore decimal.Decimal `json:"weighted_score"`
		TotalWeight   decimal.Decimal `json:"total_weight"`
	}{alias(e), e.status, e.status.Label(), e.Grade.Label(), e.Items(), e.WeightedScore().Round(2), e.TotalWeight()})
}
