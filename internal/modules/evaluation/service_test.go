package evaluation

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

func newTestService(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	var mu sync.Mutex
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
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
	return NewService(NewMemoryRepository(clock), suppliers, nil), s.ID
}

func inputFor(supplierID uuid.UUID) Input {
	in := validInput()
	in.SupplierID = supplierID
	return in
}

func TestServiceScoringFlow(t *testing.T) {
	svc, supplierID := newTestService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, inputFor(supplierID))
	if err != nil {
		t.Fatal(err)
	}
	id := e.ID.String()

	items := []ItemInput{
		qualityItem(),
		{Name: "交付准时率", Type: ItemQuantitative, Weight: d("40"), Score: d("95"), MaxScore: d("100")},
		{Name: "服务态度", Type: ItemQualitative, Weight: d("30"), Score: d("4"), MaxScore: d("5")},
	}
	for _, in := range items {
		if _, err := svc.AddItem(ctx, id, in); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.SetOverallScore(ctx, id, d("91")); err != nil {
		t.Fatal(err)
	}
	graded, err := svc.CalculateGrade(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if graded.Grade != GradeA {
		t.Errorf("grade = %s", graded.Grade)
	}

	score, err := svc.WeightedScore(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	// 26.55 + 38 + 24
	if !score.WeightedScore.Equal(d("88.55")) || !score.TotalWeight.Equal(d("100")) {
		t.Errorf("score = %+v", score)
	}
	if !score.OverallScore.Equal(d("91")) {
		t.Errorf("overall score was replaced: %s", score.OverallScore)
	}

	got, _ := svc.Get(ctx, id)
	if len(got.Items()) != 3 || got.Items()[0].Name != "产品质量" {
		t.Errorf("items = %+v", got.Items())
	}
	for _, it := range got.Items() {
		if it.CreatedAt.IsZero() {
			t.Errorf("item %s not stamped", it.Name)
		}
	}
}

func TestServiceLifecycle(t *testing.T) {
	svc, supplierID := newTestService(t)
	ctx := context.Background()
	e, _ := svc.Create(ctx, inputFor(supplierID))
	id := e.ID.String()

	if _, err := svc.SubmitForReview(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem(ctx, id, qualityItem()); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Errorf("AddItem while pending err = %v", err)
	}
	if _, err := svc.Approve(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Reject(ctx, id); !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Errorf("reject confirmed err = %v", err)
	}

	counts, err := svc.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusConfirmed] != 1 || counts[StatusDraft] != 0 || len(counts) != len(Statuses) {
		t.Errorf("counts = %v", counts)
	}
}

func TestServiceErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, inputFor(uuid.New())); !errors.Is(err, supplier.ErrNotFound) {
		t.Errorf("unknown supplier err = %v", err)
	}
	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad id err = %v", err)
	}
	if _, err := svc.Approve(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := svc.Search(ctx, Filter{Grade: "F"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad grade err = %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc, supplierID := newTestService(t)
	ctx := context.Background()
	for i, period := range []string{"2024-Q1", "2024-Q2", "2023-Q4"} {
		in := inputFor(supplierID)
		in.Period = period
		e, err := svc.Create(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		if i == 1 {
			svc.SetOverallScore(ctx, e.ID.String(), d("72"))
			svc.CalculateGrade(ctx, e.ID.String())
		}
	}

	res, err := svc.Search(ctx, Filter{Query: "2024-"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || res.Items[0].Period != "2024-Q2" {
		t.Errorf("search = %+v", res)
	}
	res, _ = svc.Search(ctx, Filter{Grade: GradeC})
	if res.Total != 1 {
		t.Errorf("grade C total = %d", res.Total)
	}

	latest, err := svc.Latest(ctx, supplierID.String(), "")
	if err != nil || latest.Period != "2023-Q4" {
		t.Errorf("latest = %+v, %v", latest, err)
	}
	latest, err = svc.Latest(ctx, supplierID.String(), "2024-Q2")
	if err != nil || latest.Grade != GradeC {
		t.Errorf("latest 2024-Q2 = %+v, %v", latest, err)
	}
	if _, err := svc.Latest(ctx, supplierID.String(), "2025-Q1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing period err = %v", err)
	}
}

func TestHandler(t *testing.T) {
	svc, supplierID := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodPost, "/api/v1/evaluations",
		`{"supplier_id":"`+supplierID.String()+`","title":"季度评估","period":"2024-Q1","evaluator":"采购部"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)
	base := "/api/v1/evaluations/" + created.ID

	rec = do(http.MethodPost, base+"/items",
		`{"name":"产品质量","item_type":"QUANTITATIVE","weight":30,"score":88.5,"max_score":100}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item = %d %s", rec.Code, rec.Body)
	}

	rec = do(http.MethodGet, base+"/weighted-score", "")
	var score struct {
		WeightedScore string `json:"weighted_score"`
	}
	json.Unmarshal(rec.Body.Bytes(), &score)
	if rec.Code != http.StatusOK || score.WeightedScore != "26.55" {
		t.Errorf("weighted score = %d %s", rec.Code, rec.Body)
	}

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		expected int
	}{
		{"score missing", http.MethodPut, base + "/score", `{}`, http.StatusBadRequest},
		{"score out of range", http.MethodPut, base + "/score", `{"overall_score":101}`, http.StatusBadRequest},
		{"score", http.MethodPut, base + "/score", `{"overall_score":88}`, http.StatusOK},
		{"grade", http.MethodPost, base + "/calculate-grade", "", http.StatusOK},
		{"approve draft", http.MethodPost, base + "/approve", "", http.StatusUnprocessableEntity},
		{"submit", http.MethodPost, base + "/submit", "", http.StatusOK},
		{"edit while pending", http.MethodPut, base + "/score", `{"overall_score":50}`, http.StatusUnprocessableEntity},
		{"reject", http.MethodPost, base + "/reject", "", http.StatusOK},
		{"stats", http.MethodGet, "/api/v1/evaluations/stats", "", http.StatusOK},
		{"latest", http.MethodGet, "/api/v1/evaluations/latest?supplier_id=" + supplierID.String(), "", http.StatusOK},
		{"latest bad supplier", http.MethodGet, "/api/v1/evaluations/latest?supplier_id=x", "", http.StatusBadRequest},
		{"bad supplier filter", http.MethodGet, "/api/v1/evaluations?supplier_id=x", "", http.StatusBadRequest},
		{"unknown", http.MethodGet, "/api/v1/evaluations/" + uuid.NewString(), "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(tt.method, tt.path, tt.body); rec.Code != tt.expected {
				t.Errorf("code = %d, want %d (%s)", rec.Code, tt.expected, rec.Body)
			}
		})
	}

	rec = do(http.MethodGet, base, "")
	var got struct {
		Grade      string `json:"grade"`
		GradeLabel string `json:"grade_label"`
		Status     string `json:"status"`
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Grade != "B" || got.GradeLabel != "良好" || got.Status != string(StatusRejected) {
		t.Errorf("evaluation = %s", rec.Body)
	}
}
