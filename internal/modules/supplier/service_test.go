package supplier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/metrics"
)

var validID = uuid.MustParse("0b5e3c1e-6c1a-4b0e-9d52-6f1f7a3b2c01")

// tickingClock advances one second per call so that writes are ordered.
func tickingClock() database.Clock {
	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestService() Service {
	clock := tickingClock()
	return NewService(NewMemoryRepository(clock), NewContactMemoryRepository(clock), nil)
}

func TestCreateSupplierStampsAndDefaults(t *testing.T) {
	svc := newTestService()
	s, err := svc.CreateSupplier(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	if s.CreatedAt.IsZero() || !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", s.CreatedAt, s.UpdatedAt)
	}

	got, err := svc.GetSupplier(context.Background(), s.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if got.Status() != StatusDraft {
		t.Errorf("stored status = %s", got.Status())
	}
}

func TestCreateSupplierRejectsDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.CreateSupplier(ctx, validInput()); err != nil {
		t.Fatal(err)
	}

	sameReg := validInput()
	sameReg.TaxNumber = "913100009999999999"
	if _, err := svc.CreateSupplier(ctx, sameReg); !errors.Is(err, ErrDuplicate) {
		t.Errorf("same registration err = %v", err)
	}

	sameTax := validInput()
	sameTax.RegistrationNumber = "91310000MA1FL0002X"
	if _, err := svc.CreateSupplier(ctx, sameTax); !errors.Is(err, ErrDuplicate) {
		t.Errorf("same tax number err = %v", err)
	}
}

func TestCheckDuplicate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s, err := svc.CreateSupplier(ctx, validInput())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		check    func() (bool, error)
		expected bool
	}{
		{"registration taken", func() (bool, error) {
			return svc.CheckDuplicateRegistration(ctx, s.RegistrationNumber, "")
		}, true},
		{"registration excluded self", func() (bool, error) {
			return svc.CheckDuplicateRegistration(ctx, s.RegistrationNumber, s.ID.String())
		}, false},
		{"registration free", func() (bool, error) {
			return svc.CheckDuplicateRegistration(ctx, "OTHER", "")
		}, false},
		{"tax taken", func() (bool, error) {
			return svc.CheckDuplicateTaxNumber(ctx, s.TaxNumber, "")
		}, true},
		{"tax excluded self", func() (bool, error) {
			return svc.CheckDuplicateTaxNumber(ctx, s.TaxNumber, s.ID.String())
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}

	if _, err := svc.CheckDuplicateTaxNumber(ctx, "X", "not-a-uuid"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad exclude id err = %v", err)
	}
}

func TestTransitionPersistsAndStamps(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s, _ := svc.CreateSupplier(ctx, validInput())

	submitted, err := svc.SubmitForReview(ctx, s.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if !submitted.UpdatedAt.After(s.UpdatedAt) {
		t.Errorf("updated_at not advanced: %v <= %v", submitted.UpdatedAt, s.UpdatedAt)
	}
	if !submitted.CreatedAt.Equal(s.CreatedAt) {
		t.Errorf("created_at changed")
	}

	if _, err := svc.Approve(ctx, s.ID.String()); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Approve(ctx, s.ID.String())
	if !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("second approve err = %v", err)
	}

	stored, _ := svc.GetSupplier(ctx, s.ID.String())
	if stored.Status() != StatusApproved {
		t.Errorf("status after failed approve = %s", stored.Status())
	}
}

func TestTransitionFailureLeavesStoreUntouched(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s, _ := svc.CreateSupplier(ctx, validInput())

	if _, err := svc.Suspend(ctx, s.ID.String()); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("suspend draft err = %v", err)
	}
	stored, _ := svc.GetSupplier(ctx, s.ID.String())
	if stored.Status() != StatusDraft || !stored.UpdatedAt.Equal(s.UpdatedAt) {
		t.Errorf("stored = %s at %v", stored.Status(), stored.UpdatedAt)
	}
}

func TestConcurrentApproveOnlyOneWins(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s, _ := svc.CreateSupplier(ctx, validInput())
	if _, err := svc.SubmitForReview(ctx, s.ID.String()); err != nil {
		t.Fatal(err)
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(ctx, s.ID.String())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, lifecycle.ErrIllegalTransition) {
			t.Errorf("unexpected err %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d approvals succeeded, want 1", ok)
	}
}

func TestTransitionRecordsMetrics(t *testing.T) {
	m := metrics.New("test")
	clock := tickingClock()
	svc := NewService(NewMemoryRepository(clock), NewContactMemoryRepository(clock), m)
	ctx := context.Background()
	s, _ := svc.CreateSupplier(ctx, validInput())

	svc.Approve(ctx, s.ID.String())
	svc.SubmitForReview(ctx, s.ID.String())
	if _, err := svc.CountByStatus(ctx); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`test_transitions_total{action="approve",entity="supplier",outcome="rejected"} 1`,
		`test_transitions_total{action="submit",entity="supplier",outcome="ok"} 1`,
		`test_entities_by_status{entity="supplier",status="PENDING_REVIEW"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestSearchAndCountByStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	names := []string{"华东包装", "华南物流", "北方钢铁"}
	var ids []string
	for i, name := range names {
		in := validInput()
		in.Name = name
		in.LegalName = name + "有限公司"
		in.RegistrationNumber = "REG-" + string(rune('A'+i))
		in.TaxNumber = "TAX-" + string(rune('A'+i))
		s, err := svc.CreateSupplier(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, s.ID.String())
	}
	svc.SubmitForReview(ctx, ids[0])
	svc.Approve(ctx, ids[0])

	res, err := svc.SearchSuppliers(ctx, Filter{Query: "华"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || len(res.Items) != 2 {
		t.Errorf("search 华: total=%d items=%d", res.Total, len(res.Items))
	}
	if res.Items[0].Name != "华南物流" {
		t.Errorf("newest first, got %s", res.Items[0].Name)
	}

	res, _ = svc.SearchSuppliers(ctx, Filter{Status: StatusApproved})
	if res.Total != 1 || res.Items[0].ID.String() != ids[0] {
		t.Errorf("approved filter = %+v", res)
	}

	res, _ = svc.SearchSuppliers(ctx, Filter{Page: database.Page{Number: 2, Size: 2}})
	if res.Total != 3 || len(res.Items) != 1 || res.TotalPages != 2 {
		t.Errorf("page 2 = total %d items %d pages %d", res.Total, len(res.Items), res.TotalPages)
	}

	if _, err := svc.SearchSuppliers(ctx, Filter{Status: "ARCHIVED"}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown status err = %v", err)
	}

	counts, err := svc.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusDraft] != 2 || counts[StatusApproved] != 1 || counts[StatusTerminated] != 0 {
		t.Errorf("counts = %v", counts)
	}
	if _, ok := counts[StatusSuspended]; !ok {
		t.Error("every status should be present in counts")
	}
}

func TestFindSupplier(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s, _ := svc.CreateSupplier(ctx, validInput())

	got, err := svc.FindSupplier(ctx, Criteria{TaxNumber: s.TaxNumber})
	if err != nil || got.ID != s.ID {
		t.Fatalf("FindSupplier = %v, %v", got, err)
	}
	if _, err := svc.FindSupplier(ctx, Criteria{Name: "不存在"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := svc.FindSupplier(ctx, Criteria{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty criteria err = %v", err)
	}
}

func TestUpdateAndDeleteSupplier(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s, _ := svc.CreateSupplier(ctx, validInput())

	in := validInput()
	in.Remark = "年度框架供应商"
	updated, err := svc.UpdateSupplier(ctx, s.ID.String(), in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Remark != in.Remark || updated.Status() != StatusDraft {
		t.Errorf("updated = %+v", updated)
	}

	if err := svc.DeleteSupplier(ctx, s.ID.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetSupplier(ctx, s.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v", err)
	}
	if _, err := svc.GetSupplier(ctx, "nope"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad id err = %v", err)
	}
}

// interleavingRepository runs beforeFind once, ahead of the next FindOneBy.
type interleavingRepository struct {
	Repository
	beforeFind func()
}

func (r *interleavingRepository) FindOneBy(ctx context.Context, c Criteria) (*Supplier, error) {
	if fn := r.beforeFind; fn != nil {
		r.beforeFind = nil
		fn()
	}
	return r.Repository.FindOneBy(ctx, c)
}

func TestUpdateSupplierKeepsInterleavedTransition(t *testing.T) {
	clock := tickingClock()
	repo := &interleavingRepository{Repository: NewMemoryRepository(clock)}
	svc := NewService(repo, NewContactMemoryRepository(clock), nil)
	ctx := context.Background()
	s, err := svc.CreateSupplier(ctx, validInput())
	if err != nil {
		t.Fatal(err)
	}
	id := s.ID.String()
	if _, err := svc.SubmitForReview(ctx, id); err != nil {
		t.Fatal(err)
	}

	repo.beforeFind = func() {
		if _, err := svc.Approve(ctx, id); err != nil {
			t.Error(err)
		}
	}
	in := validInput()
	in.Remark = "年度框架供应商"
	updated, err := svc.UpdateSupplier(ctx, id, in)
	if err != nil {
		t.Fatal(err)
	}
	if repo.beforeFind != nil {
		t.Fatal("update did not run the duplicate check")
	}
	if updated.Status() != StatusApproved || updated.Remark != in.Remark {
		t.Errorf("updated = %s %q", updated.Status(), updated.Remark)
	}
	stored, _ := svc.GetSupplier(ctx, id)
	if stored.Status() != StatusApproved {
		t.Errorf("stored status = %s, approval was overwritten", stored.Status())
	}
}

func TestUpdateSupplierErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	first, _ := svc.CreateSupplier(ctx, validInput())
	other := validInput()
	other.RegistrationNumber = "91310000MA1FL0009X"
	other.TaxNumber = "913100000000000009"
	second, err := svc.CreateSupplier(ctx, other)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateSupplier(ctx, second.ID.String(), validInput()); !errors.Is(err, ErrDuplicate) {
		t.Errorf("taking first's numbers err = %v", err)
	}
	bad := validInput()
	bad.Name = " "
	if _, err := svc.UpdateSupplier(ctx, first.ID.String(), bad); !errors.Is(err, ErrValidation) {
		t.Errorf("invalid input err = %v", err)
	}
	fresh := validInput()
	fresh.RegistrationNumber = "91310000MA1FL0404X"
	fresh.TaxNumber = "913100000000000404"
	if _, err := svc.UpdateSupplier(ctx, uuid.NewString(), fresh); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown supplier err = %v", err)
	}
}

func TestMemoryDeleteCascades(t *testing.T) {
	clock := tickingClock()
	contacts := NewContactMemoryRepository(clock)
	var dropped []uuid.UUID
	repo := NewMemoryRepository(clock,
		contacts.(*contactMemoryRepository).DeleteBySupplier,
		func(id uuid.UUID) { dropped = append(dropped, id) })
	svc := NewService(repo, contacts, nil)
	ctx := context.Background()

	s, _ := svc.CreateSupplier(ctx, validInput())
	c, err := svc.AddContact(ctx, s.ID.String(), ContactInput{Name: "张三"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteSupplier(ctx, s.ID.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := contacts.GetByID(ctx, c.ID); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("contact after supplier delete err = %v", err)
	}
	if len(dropped) != 1 || dropped[0] != s.ID {
		t.Errorf("cascade calls = %v", dropped)
	}
	if err := svc.DeleteSupplier(ctx, s.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if len(dropped) != 1 {
		t.Error("cascade ran for a missing supplier")
	}
}

func TestContacts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s, _ := svc.CreateSupplier(ctx, validInput())

	first, err := svc.AddContact(ctx, s.ID.String(), ContactInput{Name: "张三"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.AddContact(ctx, s.ID.String(), ContactInput{Name: "李四", IsPrimary: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.MakePrimaryContact(ctx, first.ID.String()); err != nil {
		t.Fatal(err)
	}

	contacts, err := svc.ListContacts(ctx, s.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	primaries := 0
	for _, c := range contacts {
		if c.IsPrimary {
			primaries++
		}
	}
	if len(contacts) != 2 || primaries != 2 {
		t.Errorf("contacts=%d primaries=%d, want 2/2", len(contacts), primaries)
	}

	if _, err := svc.RemovePrimaryContact(ctx, second.ID.String()); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteContact(ctx, first.ID.String()); err != nil {
		t.Fatal(err)
	}
	contacts, _ = svc.ListContacts(ctx, s.ID.String())
	if len(contacts) != 1 || contacts[0].IsPrimary {
		t.Errorf("remaining = %+v", contacts)
	}

	if _, err := svc.AddContact(ctx, uuid.NewString(), ContactInput{Name: "王五"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown supplier err = %v", err)
	}
	if _, err := svc.MakePrimaryContact(ctx, first.ID.String()); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("deleted contact err = %v", err)
	}
}
