package contract

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

type memoryRepository struct {
	mu        sync.Mutex
	clock     database.Clock
	contracts map[uuid.UUID]*Contract
}

// NewMemoryRepository returns a Repository held in process memory.
func NewMemoryRepository(clock database.Clock) Repository {
	return &memoryRepository{clock: clock, contracts: make(map[uuid.UUID]*Contract)}
}

func (r *memoryRepository) Create(_ context.Context, c *Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(c) {
		return ErrDuplicate
	}
	r.save(c)
	return nil
}

func (r *memoryRepository) Update(_ context.Context, c *Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(c)
}

func (r *memoryRepository) update(c *Contract) error {
	stored, ok := r.contracts[c.ID]
	if !ok {
		return ErrNotFound
	}
	if r.conflicts(c) {
		return ErrDuplicate
	}
	// history is append-only: keep what is stored and add the new entries
	pending := c.pendingChanges()
	c.changes = append(stored.AmountChanges(), pending...)
	r.save(c)
	return nil
}

func (r *memoryRepository) save(c *Contract) {
	database.BeforeWrite(c, r.clock)
	c.markStored()
	r.contracts[c.ID] = c.clone()
}

func (r *memoryRepository) conflicts(c *Contract) bool {
	for id, other := range r.contracts {
		if id != c.ID && other.Number == c.Number {
			return true
		}
	}
	return false
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

func (r *memoryRepository) FindOneBy(_ context.Context, crit Criteria) (*Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *Contract
	for _, c := range r.contracts {
		if crit.ExcludeID != uuid.Nil && c.ID == crit.ExcludeID {
			continue
		}
		if crit.Number != "" && c.Number != crit.Number {
			continue
		}
		if crit.SupplierID != uuid.Nil && c.SupplierID != crit.SupplierID {
			continue
		}
		if found == nil || c.CreatedAt.Before(found.CreatedAt) {
			found = c
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.clone(), nil
}

func (r *memoryRepository) Search(_ context.Context, f Filter) ([]*Contract, int, error) {
	r.mu.Lock()
	var matched []*Contract
	for _, c := range r.contracts {
		if f.SupplierID != uuid.Nil && c.SupplierID != f.SupplierID {
			continue
		}
		if f.Status != "" && c.status != f.Status {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		if !database.ContainsFold(f.Query, c.Number, c.Title) {
			continue
		}
		matched = append(matched, c.clone())
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return database.Paginate(matched, f.Page), len(matched), nil
}

func (r *memoryRepository) CountByStatus(_ context.Context) (map[Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, c := range r.contracts {
		counts[c.status]++
	}
	return counts, nil
}

func (r *memoryRepository) Transition(_ context.Context, id uuid.UUID, fn func(*Contract) error) (*Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := stored.clone()
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := r.update(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteBySupplier drops every contract of the supplier.
func (r *memoryRepository) DeleteBySupplier(supplierID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.contracts {
		if v.SupplierID == supplierID {
			delete(r.contracts, id)
		}
	}
}
