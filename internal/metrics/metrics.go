// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectorは認証コアとHTTPミドルウェアの両方の記録先になる。
var (
	_ auth.MetricsRecorder           = (*Collector)(nil)
	_ middleware.HTTPMetricsRecorder = (*Collector)(nil)
	_ middleware.RateLimitRecorder   = (*Collector)(nil)
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signIns         *prometheus.CounterVec
	tokensIssued    *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	rateLimited     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_signin_total",
			Help: "結果別のサインイン試行数",
		}, []string{"outcome"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_tokens_issued_total",
			Help: "種別別の発行トークン数",
		}, []string{"type"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_token_rejections_total",
			Help: "理由別のトークン拒否数",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskman_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskman_rate_limited_total",
			Help: "レート制限で拒否されたリクエスト数",
		}, []string{"limit"}),
	}

	reg.MustRegister(
		c.signIns,
		c.tokensIssued,
		c.tokenRejections,
		c.httpRequests,
		c.httpLatency,
		c.rateLimited,
	)

	return c
}

// RecordSignIn はサインインの結果を記録する。
func (c *Collector) RecordSignIn(outcome string) {
	c.signIns.WithLabelValues(outcome).Inc()
}

// RecordTokenIssued はトークン発行を記録する。
func (c *Collector) RecordTokenIssued(tokenType model.TokenType) {
	c.tokensIssued.WithLabelValues(string(tokenType)).Inc()
}

// RecordTokenRejection はトークン拒否をエラーコード単位で記録する。
func (c *Collector) RecordTokenRejection(reason string) {
	c.tokenRejections.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest はレスポンスのステータスコードと処理時間を記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(limitType string) {
	c.rateLimited.WithLabelValues(limitType).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
