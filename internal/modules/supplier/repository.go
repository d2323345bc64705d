package supplier

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

// Criteria selects a single supplier by exact field matches. Empty fields
// are ignored; ExcludeID skips one supplier, typically the one being edited.
type Criteria struct {
	Name               string
	RegistrationNumber string
	TaxNumber          string
	ExcludeID          uuid.UUID
}

// Filter narrows a supplier search. Query matches name, legal name, short
// name, registration and tax numbers.
type Filter struct {
	Query            string
	Status           Status
	Type             Type
	CooperationModel CooperationModel
	Page             database.Page
}

// Repository defines data access for suppliers.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	// Update writes every column, status included. Concurrent edits go
	// through Transition.
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindOneBy(ctx context.Context, c Criteria) (*Supplier, error)
	Search(ctx context.Context, f Filter) ([]*Supplier, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// Transition loads the supplier, applies fn and saves the result as one
	// atomic step. fn's error aborts the write and is returned unchanged.
	Transition(ctx context.Context, id uuid.UUID, fn func(*Supplier) error) (*Supplier, error)
}

// ContactRepository defines data access for supplier contacts.
type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*Contact, error)

	// Transition applies fn to the stored contact and saves it as one
	// atomic step.
	Transition(ctx context.Context, id uuid.UUID, fn func(*Contact) error) (*Contact, error)
}
