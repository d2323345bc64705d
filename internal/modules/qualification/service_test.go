package qualification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
	"github.com/georgemunganga/supplyhub/internal/modules/supplier"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

type fixture struct {
	svc      Service
	supplier *supplier.Supplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newWrappedFixture(t, nil)
}

// newWrappedFixture passes the memory repository through wrap when wrap is
// not nil.
func newWrappedFixture(t *testing.T, wrap func(Repository) Repository) *fixture {
	t.Helper()
	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := database.Clock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	})

	suppliers := supplier.NewMemoryRepository(clock)
	s, err := supplier.New(supplier.Input{
		Name: "华东包装", LegalName: "华东包装材料有限公司", LegalAddress: "上海",
		RegistrationNumber: "REG-1", TaxNumber: "TAX-1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := suppliers.Create(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	repo := NewMemoryRepository(clock)
	if wrap != nil {
		repo = wrap(repo)
	}
	return &fixture{
		svc:      NewService(repo, suppliers, nil, clock),
		supplier: s,
	}
}

// interleavingRepository runs hook once, at the first read that follows
// arming it: before GetByID or Transition, or right after ListDue.
type interleavingRepository struct {
	Repository
	hook func()
}

func (r *interleavingRepository) fire() {
	if fn := r.hook; fn != nil {
		r.hook = nil
		fn()
	}
}

func (r *interleavingRepository) GetByID(ctx context.Context, id uuid.UUID) (*Qualification, error) {
	r.fire()
	return r.Repository.GetByID(ctx, id)
}

func (r *interleavingRepository) Transition(ctx context.Context, id uuid.UUID, fn func(*Qualification) error) (*Qualification, error) {
	r.fire()
	return r.Repository.Transition(ctx, id, fn)
}

func (r *interleavingRepository) ListDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	ids, err := r.Repository.ListDue(ctx, now)
	r.fire()
	return ids, err
}

func TestUpdateKeepsInterleavedApproval(t *testing.T) {
	repo := &interleavingRepository{}
	f := newWrappedFixture(t, func(r Repository) Repository {
		repo.Repository = r
		return repo
	})
	ctx := context.Background()
	q, err := f.svc.Create(ctx, validInput(f.supplier.ID))
	if err != nil {
		t.Fatal(err)
	}
	id := q.ID.String()
	if _, err := f.svc.SubmitForReview(ctx, id); err != nil {
		t.Fatal(err)
	}

	repo.hook = func() {
		if _, err := f.svc.Approve(ctx, id); err != nil {
			t.Error(err)
		}
	}
	in := validInput(f.supplier.ID)
	in.IssuingAuthority = "国家认证认可监督管理委员会"
	updated, err := f.svc.Update(ctx, id, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status() != StatusApproved || updated.IssuingAuthority != in.IssuingAuthority {
		t.Errorf("updated = %s %q", updated.Status(), updated.IssuingAuthority)
	}
	stored, _ := f.svc.Get(ctx, id)
	if stored.Status() != StatusApproved {
		t.Errorf("stored status = %s, approval was overwritten", stored.Status())
	}
}

func TestExpireDueSkipsRenewedSinceListing(t *testing.T) {
	repo := &interleavingRepository{}
	f := newWrappedFixture(t, func(r Repository) Repository {
		repo.Repository = r
		return repo
	})
	ctx := context.Background()
	in := validInput(f.supplier.ID)
	in.ExpiryDate = date(2025, 1, 1)
	q, err := f.svc.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	id := q.ID.String()
	f.svc.SubmitForReview(ctx, id)
	if _, err := f.svc.Approve(ctx, id); err != nil {
		t.Fatal(err)
	}

	repo.hook = func() {
		if _, err := f.svc.Renew(ctx, id, *date(2030, 1, 1)); err != nil {
			t.Error(err)
		}
	}
	n, err := f.svc.ExpireDue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expired %d, want 0", n)
	}
	got, _ := f.svc.Get(ctx, id)
	if got.Status() != StatusApproved || !got.ExpiryDate.Equal(*date(2030, 1, 1)) {
		t.Errorf("status = %s expiry = %v", got.Status(), got.ExpiryDate)
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, validInput(f.supplier.ID))
	if err != nil {
		t.Fatal(err)
	}
	if q.CreatedAt.IsZero() {
		t.Error("not stamped")
	}

	if _, err := f.svc.Create(ctx, validInput(f.supplier.ID)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate certificate err = %v", err)
	}
	if _, err := f.svc.Create(ctx, validInput(uuid.New())); !errors.Is(err, supplier.ErrNotFound) {
		t.Errorf("unknown supplier err = %v", err)
	}
}

func TestExpireDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mk := func(cert string, expiry *time.Time, approve bool) *Qualification {
		in := validInput(f.supplier.ID)
		in.CertificateNumber = cert
		in.ExpiryDate = expiry
		q, err := f.svc.Create(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		if approve {
			f.svc.SubmitForReview(ctx, q.ID.String())
			if _, err := f.svc.Approve(ctx, q.ID.String()); err != nil {
				t.Fatal(err)
			}
		}
		return q
	}
	overdue := mk("A", date(2025, 1, 1), true)
	current := mk("B", date(2026, 1, 1), true)
	draft := mk("C", date(2024, 1, 1), false)

	n, err := f.svc.ExpireDue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expired %d, want 1", n)
	}

	want := map[uuid.UUID]Status{overdue.ID: StatusExpired, current.ID: StatusApproved, draft.ID: StatusDraft}
	for id, status := range want {
		q, _ := f.svc.Get(ctx, id.String())
		if q.Status() != status {
			t.Errorf("%s status = %s, want %s", q.CertificateNumber, q.Status(), status)
		}
	}

	if n, _ := f.svc.ExpireDue(ctx); n != 0 {
		t.Errorf("second sweep expired %d", n)
	}

	renewed, err := f.svc.Renew(ctx, overdue.ID.String(), *date(2027, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if renewed.Status() != StatusApproved || !renewed.IsActive {
		t.Errorf("renewed = %s active=%v", renewed.Status(), renewed.IsActive)
	}
	if _, err := f.svc.Renew(ctx, overdue.ID.String(), *date(2020, 1, 1)); !errors.Is(err, ErrValidation) {
		t.Errorf("renew into past err = %v", err)
	}
}

func TestSearchAndCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, cert := range []string{"ISO9001-01", "ISO14001-02", "LIC-03"} {
		in := validInput(f.supplier.ID)
		in.CertificateNumber = cert
		if _, err := f.svc.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	res, err := f.svc.Search(ctx, Filter{Query: "iso", SupplierID: f.supplier.ID})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Errorf("iso total = %d", res.Total)
	}
	res, _ = f.svc.Search(ctx, Filter{SupplierID: uuid.New()})
	if res.Total != 0 || res.Items == nil {
		t.Errorf("other supplier = %+v", res)
	}

	counts, err := f.svc.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusDraft] != 3 || counts[StatusExpired] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestHandler(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodPost, "/api/v1/qualifications", `{
		"supplier_id": "`+f.supplier.ID.String()+`",
		"name": "ISO9001",
		"qualification_type": "ISO",
		"certificate_number": "ISO-1",
		"expiry_date": "2026-12-31T00:00:00Z"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	var q struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		IsValid  bool   `json:"is_valid"`
		IsActive bool   `json:"is_active"`
	}
	json.Unmarshal(rec.Body.Bytes(), &q)
	base := "/api/v1/qualifications/" + q.ID

	tests := []struct {
		path     string
		body     string
		expected int
	}{
		{"/renew", `{"expiry_date":"2030-01-01T00:00:00Z"}`, http.StatusUnprocessableEntity},
		{"/submit", "", http.StatusOK},
		{"/approve", "", http.StatusOK},
		{"/approve", "", http.StatusUnprocessableEntity},
		{"/deactivate", "", http.StatusOK},
		{"/renew", `{"expiry_date":"2030-01-01T00:00:00Z"}`, http.StatusOK},
		{"/renew", `not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(http.MethodPost, base+tt.path, tt.body)
		if rec.Code != tt.expected {
			t.Fatalf("%s: code = %d, want %d (%s)", tt.path, rec.Code, tt.expected, rec.Body)
		}
	}

	rec = do(http.MethodGet, base, "")
	json.Unmarshal(rec.Body.Bytes(), &q)
	if q.Status != "APPROVED" || !q.IsValid || !q.IsActive {
		t.Errorf("final = %+v", q)
	}

	if rec := do(http.MethodGet, "/api/v1/qualifications?supplier_id=bad", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad supplier filter = %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/api/v1/qualifications/stats", ""); rec.Code != http.StatusOK {
		t.Errorf("stats = %d", rec.Code)
	}
}

func TestConcurrentExpireOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, _ := f.svc.Create(ctx, validInput(f.supplier.ID))
	f.svc.SubmitForReview(ctx, q.ID.String())
	f.svc.Approve(ctx, q.ID.String())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); _, errs[0] = f.svc.MarkExpired(ctx, q.ID.String()) }()
	go func() { defer wg.Done(); _, errs[1] = f.svc.MarkExpired(ctx, q.ID.String()) }()
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if errors.Is(err, lifecycle.ErrIllegalTransition) {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("errors = %v, want exactly one illegal transition", errs)
	}
}
