package qualification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

// Criteria selects one qualification by exact match. Empty fields are ignored.
type Criteria struct {
	SupplierID        uuid.UUID
	CertificateNumber string
}

// Filter narrows a qualification search. Query matches name, type,
// certificate number and issuing authority.
type Filter struct {
	Query      string
	SupplierID uuid.UUID
	Status     Status
	Page       database.Page
}

// Repository defines data access for qualifications.
type Repository interface {
	Create(ctx context.Context, q *Qualification) error
	// Update writes every column, status included. Concurrent edits go
	// through Transition.
	Update(ctx context.Context, q *Qualification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Qualification, error)
	FindOneBy(ctx context.Context, c Criteria) (*Qualification, error)
	Search(ctx context.Context, f Filter) ([]*Qualification, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// ListDue returns the ids of APPROVED qualifications whose expiry date
	// lies before now.
	ListDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	// Transition applies fn to the stored qualification and saves it as one
	// atomic step.
	Transition(ctx context.Context, id uuid.UUID, fn func(*Qualification) error) (*Qualification, error)
}
