package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

// Criteria selects one contract by exact match. Empty fields are ignored.
type Criteria struct {
	Number     string
	SupplierID uuid.UUID
	ExcludeID  uuid.UUID
}

// Filter narrows a contract search. Query matches number and title.
type Filter struct {
	Query      string
	SupplierID uuid.UUID
	Status     Status
	Type       Type
	Page       database.Page
}

// Repository defines data access for contracts. GetByID, FindOneBy and
// Transition load the full amount history; Search does not.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	// Update saves the contract and appends any amount changes recorded
	// since it was loaded.
	Update(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	FindOneBy(ctx context.Context, c Criteria) (*Contract, error)
	Search(ctx context.Context, f Filter) ([]*Contract, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	Transition(ctx context.Context, id uuid.UUID, fn func(*Contract) error) (*Contract, error)
}
