package evaluation

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

type memoryRepository struct {
	mu          sync.Mutex
	clock       database.Clock
	evaluations map[uuid.UUID]*Evaluation
}

// NewMemoryRepository returns a Repository held in process memory.
func NewMemoryRepository(clock database.Clock) Repository {
	return &memoryRepository{clock: clock, evaluations: make(map[uuid.UUID]*Evaluation)}
}

func (r *memoryRepository) Create(_ context.Context, e *Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.save(e)
	return nil
}

func (r *memoryRepository) Update(_ context.Context, e *Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(e)
}

func (r *memoryRepository) update(e *Evaluation) error {
	stored, ok := r.evaluations[e.ID]
	if !ok {
		return ErrNotFound
	}
	e.items = append(stored.Items(), e.pendingItems()...)
	r.save(e)
	return nil
}

func (r *memoryRepository) save(e *Evaluation) {
	database.BeforeWrite(e, r.clock)
	e.markStored()
	r.evaluations[e.ID] = e.clone()
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.evaluations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.clone(), nil
}

func (r *memoryRepository) FindOneBy(_ context.Context, c Criteria) (*Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *Evaluation
	for _, e := range r.evaluations {
		if c.SupplierID != uuid.Nil && e.SupplierID != c.SupplierID {
			continue
		}
		if c.Period != "" && e.Period != c.Period {
			continue
		}
		if found == nil || e.CreatedAt.After(found.CreatedAt) {
			found = e
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.clone(), nil
}

func (r *memoryRepository) Search(_ context.Context, f Filter) ([]*Evaluation, int, error) {
	r.mu.Lock()
	var matched []*Evaluation
	for _, e := range r.evaluations {
		if f.SupplierID != uuid.Nil && e.SupplierID != f.SupplierID {
			continue
		}
		if f.Status != "" && e.status != f.Status {
			continue
		}
		if f.Grade != "" && e.Grade != f.Grade {
			continue
		}
		if !database.ContainsFold(f.Query, e.Title, e.Period, e.Evaluator) {
			continue
		}
		matched = append(matched, e.clone())
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
	for _, e := range r.evaluations {
		counts[e.status]++
	}
	return counts, nil
}

func (r *memoryRepository) Transition(_ context.Context, id uuid.UUID, fn func(*Evaluation) error) (*Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.evaluations[id]
	if !ok {
		return nil, ErrNotFound
	}
	e := stored.clone()
	if err := fn(e); err != nil {
		return nil, err
	}
	if err := r.update(e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteBySupplier drops every evaluation of the supplier.
func (r *memoryRepository) DeleteBySupplier(supplierID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.evaluations {
		if v.SupplierID == supplierID {
			delete(r.evaluations, id)
		}
	}
}
