package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestHandler_ServesRegisteredMetrics はスクレイプ応答に記録済みのメトリクスが含まれることを検証する。
func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSignIn("success")
	c.RecordRateLimited("signin")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`taskman_signin_total{outcome="success"} 1`,
		`taskman_rate_limited_total{limit="signin"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("response should contain %s, got:\n%s", want, body)
		}
	}
}

// TestHandler_OnlyExposesGivenRegistry は別レジストリのメトリクスが混ざらないことを検証する。
func TestHandler_OnlyExposesGivenRegistry(t *testing.T) {
	other := prometheus.NewRegistry()
	NewCollector(other).RecordSignIn("success")

	empty := prometheus.NewRegistry()
	w := httptest.NewRecorder()
	Handler(empty).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if strings.Contains(w.Body.String(), "taskman_signin_total") {
		t.Errorf("metrics from another registry leaked:\n%s", w.Body.String())
	}
}
