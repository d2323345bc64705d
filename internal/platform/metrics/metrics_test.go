package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New("test")
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/suppliers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/suppliers/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/suppliers/{id}", "404"))
	if got != 2 {
		t.Errorf("request count = %v, want 2", got)
	}
}

func TestRecordTransition(t *testing.T) {
	m := New("test")
	m.RecordTransition("supplier", "approve", OutcomeOK)
	m.RecordTransition("supplier", "approve", OutcomeRejected)
	m.RecordTransition("supplier", "approve", OutcomeRejected)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("supplier", "approve", OutcomeRejected)); got != 2 {
		t.Errorf("rejected = %v, want 2", got)
	}

	var nilMetrics *Metrics
	nilMetrics.RecordTransition("supplier", "approve", OutcomeOK)
	nilMetrics.TrackDB("supplier", "search")()
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"illegal transition", &lifecycle.TransitionError{Entity: "supplier", Action: "approve"}, OutcomeRejected},
		{"wrapped illegal", fmt.Errorf("approve: %w", lifecycle.ErrIllegalTransition), OutcomeRejected},
		{"other", errors.New("connection reset"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutcomeOf(tt.err); got != tt.want {
				t.Errorf("OutcomeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetStatusCountsReplacesPrevious(t *testing.T) {
	m := New("test")
	m.SetStatusCounts("contract", map[string]int{"DRAFT": 3, "ACTIVE": 1})
	m.SetStatusCounts("contract", map[string]int{"ACTIVE": 4})

	if got := testutil.ToFloat64(m.byStatus.WithLabelValues("contract", "ACTIVE")); got != 4 {
		t.Errorf("ACTIVE = %v, want 4", got)
	}
	if n := testutil.CollectAndCount(m.byStatus); n != 1 {
		t.Errorf("series = %d, want 1 after replacement", n)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("supplyhub")
	m.RecordTransition("evaluation", "submit", OutcomeOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "supplyhub_transitions_total") {
		t.Error("expected transitions counter in exposition output")
	}
}
