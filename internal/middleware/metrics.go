package middleware

import (
	"net/http"
	"time"
)

// HTTPMetricsRecorder はHTTPリクエストの計測インターフェース。
// metrics.Collectorが実装する。
type HTTPMetricsRecorder interface {
	RecordHTTPRequest(statusCode int, duration time.Duration)
}

// NewMetricsMiddleware はレスポンスのステータスコードと処理時間を記録するミドルウェアを返す。
func NewMetricsMiddleware(recorder HTTPMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			recorder.RecordHTTPRequest(rec.statusCode, time.Since(start))
		})
	}
}
