package qualification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

type memoryRepository struct {
	mu    sync.Mutex
	clock database.Clock
	items map[uuid.UUID]*Qualification
}

// NewMemoryRepository returns a Repository held in process memory.
func NewMemoryRepository(clock database.Clock) Repository {
	return &memoryRepository{clock: clock, items: make(map[uuid.UUID]*Qualification)}
}

func (r *memoryRepository) Create(_ context.Context, q *Qualification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(q) {
		return ErrDuplicate
	}
	database.BeforeWrite(q, r.clock)
	r.items[q.ID] = q.clone()
	return nil
}

func (r *memoryRepository) Update(_ context.Context, q *Qualification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(q)
}

func (r *memoryRepository) update(q *Qualification) error {
	if _, ok := r.items[q.ID]; !ok {
		return ErrNotFound
	}
	if r.conflicts(q) {
		return ErrDuplicate
	}
	database.BeforeWrite(q, r.clock)
	r.items[q.ID] = q.clone()
	return nil
}

func (r *memoryRepository) conflicts(q *Qualification) bool {
	for id, other := range r.items {
		if id != q.ID && other.SupplierID == q.SupplierID && other.CertificateNumber == q.CertificateNumber {
			return true
		}
	}
	return false
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Qualification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return q.clone(), nil
}

func (r *memoryRepository) FindOneBy(_ context.Context, c Criteria) (*Qualification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *Qualification
	for _, q := range r.items {
		if c.SupplierID != uuid.Nil && q.SupplierID != c.SupplierID {
			continue
		}
		if c.CertificateNumber != "" && q.CertificateNumber != c.CertificateNumber {
			continue
		}
		if found == nil || q.CreatedAt.Before(found.CreatedAt) {
			found = q
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.clone(), nil
}

func (r *memoryRepository) Search(_ context.Context, f Filter) ([]*Qualification, int, error) {
	r.mu.Lock()
	var matched []*Qualification
	for _, q := range r.items {
		if f.SupplierID != uuid.Nil && q.SupplierID != f.SupplierID {
			continue
		}
		if f.Status != "" && q.status != f.Status {
			continue
		}
		if !database.ContainsFold(f.Query, q.Name, q.Type, q.CertificateNumber, q.IssuingAuthority) {
			continue
		}
		matched = append(matched, q.clone())
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
	for _, q := range r.items {
		counts[q.status]++
	}
	return counts, nil
}

func (r *memoryRepository) ListDue(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*Qualification
	for _, q := range r.items {
		if q.status == StatusApproved && q.IsExpired(now) {
			due = append(due, q)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ExpiryDate.Before(*due[j].ExpiryDate) })
	ids := make([]uuid.UUID, len(due))
	for i, q := range due {
		ids[i] = q.ID
	}
	return ids, nil
}

func (r *memoryRepository) Transition(_ context.Context, id uuid.UUID, fn func(*Qualification) error) (*Qualification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	q := stored.clone()
	if err := fn(q); err != nil {
		return nil, err
	}
	if err := r.update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteBySupplier drops every qualification of the supplier.
func (r *memoryRepository) DeleteBySupplier(supplierID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.items {
		if v.SupplierID == supplierID {
			delete(r.items, id)
		}
	}
}
