package operator

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for operators.
type Repository interface {
	Create(ctx context.Context, o *Operator) error
	GetByID(ctx context.Context, id uuid.UUID) (*Operator, error)
	GetByEmail(ctx context.Context, email string) (*Operator, error)
}
