package supplier

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
	suppliers map[uuid.UUID]*Supplier
	cascade   []func(supplierID uuid.UUID)
}

// NewMemoryRepository returns a Repository held in process memory. Each
// cascade func is called with the id of a deleted supplier so dependent
// stores can drop its rows, as ON DELETE CASCADE does in postgres.
func NewMemoryRepository(clock database.Clock, cascade ...func(supplierID uuid.UUID)) Repository {
	return &memoryRepository{clock: clock, suppliers: make(map[uuid.UUID]*Supplier), cascade: cascade}
}

func (r *memoryRepository) Create(_ context.Context, s *Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(s) {
		return ErrDuplicate
	}
	database.BeforeWrite(s, r.clock)
	r.suppliers[s.ID] = s.clone()
	return nil
}

func (r *memoryRepository) Update(_ context.Context, s *Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(s)
}

func (r *memoryRepository) update(s *Supplier) error {
	if _, ok := r.suppliers[s.ID]; !ok {
		return ErrNotFound
	}
	if r.conflicts(s) {
		return ErrDuplicate
	}
	database.BeforeWrite(s, r.clock)
	r.suppliers[s.ID] = s.clone()
	return nil
}

// conflicts mirrors the unique indexes on registration and tax numbers.
func (r *memoryRepository) conflicts(s *Supplier) bool {
	for id, other := range r.suppliers {
		if id == s.ID {
			continue
		}
		if other.RegistrationNumber == s.RegistrationNumber || other.TaxNumber == s.TaxNumber {
			return true
		}
	}
	return false
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	if _, ok := r.suppliers[id]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.suppliers, id)
	r.mu.Unlock()

	for _, fn := range r.cascade {
		fn(id)
	}
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

func (r *memoryRepository) FindOneBy(_ context.Context, c Criteria) (*Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *Supplier
	for _, s := range r.suppliers {
		if c.ExcludeID != uuid.Nil && s.ID == c.ExcludeID {
			continue
		}
		if c.Name != "" && s.Name != c.Name {
			continue
		}
		if c.RegistrationNumber != "" && s.RegistrationNumber != c.RegistrationNumber {
			continue
		}
		if c.TaxNumber != "" && s.TaxNumber != c.TaxNumber {
			continue
		}
		if found == nil || s.CreatedAt.Before(found.CreatedAt) {
			found = s
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.clone(), nil
}

func (r *memoryRepository) Search(_ context.Context, f Filter) ([]*Supplier, int, error) {
	r.mu.Lock()
	var matched []*Supplier
	for _, s := range r.suppliers {
		if f.Status != "" && s.status != f.Status {
			continue
		}
		if f.Type != "" && s.Type != f.Type {
			continue
		}
		if f.CooperationModel != "" && s.CooperationModel != f.CooperationModel {
			continue
		}
		if !database.ContainsFold(f.Query, s.Name, s.LegalName, s.ShortName, s.RegistrationNumber, s.TaxNumber) {
			continue
		}
		matched = append(matched, s.clone())
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
	for _, s := range r.suppliers {
		counts[s.status]++
	}
	return counts, nil
}

func (r *memoryRepository) Transition(_ context.Context, id uuid.UUID, fn func(*Supplier) error) (*Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := stored.clone()
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := r.update(s); err != nil {
		return nil, err
	}
	return s, nil
}

type contactMemoryRepository struct {
	mu       sync.Mutex
	clock    database.Clock
	contacts map[uuid.UUID]Contact
}

// NewContactMemoryRepository returns a ContactRepository held in process memory.
func NewContactMemoryRepository(clock database.Clock) ContactRepository {
	return &contactMemoryRepository{clock: clock, contacts: make(map[uuid.UUID]Contact)}
}

func (r *contactMemoryRepository) Create(_ context.Context, c *Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[c.ID]; ok {
		return ErrDuplicate
	}
	database.BeforeWrite(c, r.clock)
	r.contacts[c.ID] = *c
	return nil
}

func (r *contactMemoryRepository) Update(_ context.Context, c *Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(c)
}

func (r *contactMemoryRepository) update(c *Contact) error {
	if _, ok := r.contacts[c.ID]; !ok {
		return ErrContactNotFound
	}
	database.BeforeWrite(c, r.clock)
	r.contacts[c.ID] = *c
	return nil
}

func (r *contactMemoryRepository) Transition(_ context.Context, id uuid.UUID, fn func(*Contact) error) (*Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contacts[id]
	if !ok {
		return nil, ErrContactNotFound
	}
	c := stored
	if err := fn(&c); err != nil {
		return nil, err
	}
	if err := r.update(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteBySupplier drops every contact of the supplier.
func (r *contactMemoryRepository) DeleteBySupplier(supplierID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.contacts {
		if c.SupplierID == supplierID {
			delete(r.contacts, id)
		}
	}
}

func (r *contactMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[id]; !ok {
		return ErrContactNotFound
	}
	delete(r.contacts, id)
	return nil
}

func (r *contactMemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, ErrContactNotFound
	}
	return &c, nil
}

func (r *contactMemoryRepository) ListBySupplier(_ context.Context, supplierID uuid.UUID) ([]*Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Contact
	for _, c := range r.contacts {
		if c.SupplierID == supplierID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
