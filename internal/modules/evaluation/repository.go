package evaluation

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

// Criteria selects one evaluation by exact match. Empty fields are ignored.
type Criteria struct {
	SupplierID uuid.UUID
	Period     string
}

// Filter narrows an evaluation search. Query matches title, period and evaluator.
type Filter struct {
	Query      string
	SupplierID uuid.UUID
	Status     Status
	Grade      Grade
	Page       database.Page
}

// Repository defines data access for evaluations and their items. Items
// are written together with their evaluation and are never rewritten.
type Repository interface {
	Create(ctx context.Context, e *Evaluation) error
	Update(ctx context.Context, e *Evaluation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Evaluation, error)
	// FindOneBy returns the most recent evaluation matching c.
	FindOneBy(ctx context.Context, c Criteria) (*Evaluation, error)
	Search(ctx context.Context, f Filter) ([]*Evaluation, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// Transition applies fn to the stored evaluation and saves it as one
	// atomic step.
	Transition(ctx context.Context, id uuid.UUID, fn func(*Evaluation) error) (*Evaluation, error)
}
