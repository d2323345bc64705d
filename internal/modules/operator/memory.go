package operator

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

type memoryRepository struct {
	mu        sync.RWMutex
	clock     database.Clock
	operators map[uuid.UUID]Operator
}

// NewMemoryRepository returns a Repository held in process memory.
func NewMemoryRepository(clock database.Clock) Repository {
	return &memoryRepository{clock: clock, operators: make(map[uuid.UUID]Operator)}
}

func (r *memoryRepository) Create(_ context.Context, o *Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.operators {
		if other.Email == o.Email {
			return ErrDuplicate
		}
	}
	database.BeforeWrite(o, r.clock)
	r.operators[o.ID] = *o
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.operators[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(email)
	for _, o := range r.operators {
		if o.Email == email {
			return &o, nil
		}
	}
	return nil, ErrNotFound
}
