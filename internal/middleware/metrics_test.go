package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordingHTTPMetrics struct {
	statuses  []int
	durations []time.Duration
}

func (r *recordingHTTPMetrics) RecordHTTPRequest(statusCode int, duration time.Duration) {
	r.statuses = append(r.statuses, statusCode)
	r.durations = append(r.durations, duration)
}

func TestMetricsMiddleware_RecordsStatusAndDuration(t *testing.T) {
	recorder := &recordingHTTPMetrics{}
	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/users", nil))

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusConflict {
		t.Errorf("statuses = %v, want [409]", recorder.statuses)
	}
	if recorder.durations[0] < 0 {
		t.Errorf("duration = %v, should be >= 0", recorder.durations[0])
	}
}

func TestMetricsMiddleware_ImplicitOK(t *testing.T) {
	recorder := &recordingHTTPMetrics{}
	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v, want [200]", recorder.statuses)
	}
}
