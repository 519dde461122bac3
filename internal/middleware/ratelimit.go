package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"golang.org/x/time/rate"
)

// レート制限の種別。メトリクスのラベルとログに使用する。
const (
	LimitGeneral = "general"
	LimitSignIn  = "signin"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec、ユーザー単位）
	GeneralBurst    int           // API全般のバーストサイズ
	SignInRate      rate.Limit    // サインインのレート（req/sec、クライアントIP単位）
	SignInBurst     int           // サインインのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// RateLimiterConfigPerMinute は1分あたりのリクエスト数からレート制限設定を生成する。
// バーストサイズは1分あたりのリクエスト数と同じにする。
func RateLimiterConfigPerMinute(generalPerMin, signInPerMin int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(generalPerMin) / 60.0),
		GeneralBurst:    generalPerMin,
		SignInRate:      rate.Limit(float64(signInPerMin) / 60.0),
		SignInBurst:     signInPerMin,
		CleanupInterval: 5 * time.Minute,
	}
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min/user、サインイン 10 req/min/IP
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfigPerMinute(120, 10)
}

// RateLimitRecorder はレート制限による拒否の計測インターフェース。
type RateLimitRecorder interface {
	RecordRateLimited(limitType string)
}

type noopRateLimitRecorder struct{}

func (noopRateLimitRecorder) RecordRateLimited(string) {}

// keyLimiter はキーごとのレートリミッターとアクセス時刻を保持する。
type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet はキー（ユーザーIDまたはIP）ごとのリミッターの集合。
type limiterSet struct {
	mu       sync.RWMutex
	limiters map[string]*keyLimiter
	rate     rate.Limit
	burst    int
}

func newLimiterSet(r rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limiters: make(map[string]*keyLimiter),
		rate:     r,
		burst:    burst,
	}
}

// get はキーのリミッターを取得または作成する。
func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.RLock()
	kl, exists := s.limiters[key]
	s.mu.RUnlock()

	if exists {
		s.mu.Lock()
		kl.lastAccess = time.Now()
		s.mu.Unlock()
		return kl.limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// ダブルチェック
	if kl, exists := s.limiters[key]; exists {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(s.rate, s.burst)
	s.limiters[key] = &keyLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

func (s *limiterSet) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// evict は最終アクセスがttlより古いエントリを削除する。
func (s *limiterSet) evict(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, kl := range s.limiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(s.limiters, key)
		}
	}
}

// RateLimiter はレート制限を管理する。
// 認証済みユーザー単位のAPI全般の制限と、クライアントIP単位のサインインの制限の2種類を提供する。
type RateLimiter struct {
	config   RateLimiterConfig
	general  *limiterSet
	signIn   *limiterSet
	recorder RateLimitRecorder
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
// recorderがnilの場合は拒否を計測しない。
func NewRateLimiter(config RateLimiterConfig, recorder RateLimitRecorder) *RateLimiter {
	if recorder == nil {
		recorder = noopRateLimitRecorder{}
	}
	rl := &RateLimiter{
		config:   config,
		general:  newLimiterSet(config.GeneralRate, config.GeneralBurst),
		signIn:   newLimiterSet(config.SignInRate, config.SignInBurst),
		recorder: recorder,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。複数回呼び出してもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// 認証ミドルウェアの後に配置し、コンテキストのユーザーIDをキーにする。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				WriteServiceError(w, model.NewMissingBearerTokenError())
				return
			}

			if !rl.general.get(user.ID).Allow() {
				rl.reject(w, LimitGeneral, rl.config.GeneralRate, slog.String("user_id", user.ID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SignInMiddleware はサインイン専用のレート制限ミドルウェアを返す。
// 未認証のリクエストが対象のため、クライアントIPをキーにする。
func (rl *RateLimiter) SignInMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !rl.signIn.get(ip).Allow() {
				rl.reject(w, LimitSignIn, rl.config.SignInRate, slog.String("client_ip", ip))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// SignInLimiterCount は現在管理されているサインインリミッターのエントリ数を返す。
func (rl *RateLimiter) SignInLimiterCount() int {
	return rl.signIn.count()
}

func (rl *RateLimiter) reject(w http.ResponseWriter, limitType string, r rate.Limit, key slog.Attr) {
	rl.recorder.RecordRateLimited(limitType)
	slog.Warn("rate limit exceeded", key, slog.String("limit_type", limitType))
	writeRateLimitResponse(w, r)
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	now := time.Now()
	ttl := rl.config.CleanupInterval * 2
	rl.general.evict(now, ttl)
	rl.signIn.evict(now, ttl)
}

// clientIP はRemoteAddrからポートを除いたアドレスを返す。
// プロキシヘッダーは偽装できるため参照しない。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := 1
	if r > 0 {
		retryAfterSec = int(math.Ceil(1.0 / float64(r)))
	}
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, model.NewRateLimitedError())
}
