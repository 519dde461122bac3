package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/database"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	// MetricsがnilならHTTP計測を行わず、MetricsHandlerがnilなら/metricsを公開しない。
	Logger            *slog.Logger
	Metrics           middleware.HTTPMetricsRecorder
	MetricsHandler    http.Handler
	HealthChecker     database.Pinger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	UserResolver      middleware.CurrentUserResolver

	// APIのパスプレフィックス（例: /api/v1）
	APIPrefix string

	// サービス
	AuthService     AuthServiceInterface
	UserService     UserServiceInterface
	CategoryService LookupServiceInterface
	StatusService   LookupServiceInterface
	ItemService     ItemServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS
//	  認証が必要なルート: Auth → RateLimit(General)
//	  サインイン・サインアップ: RateLimit(SignIn)
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "NOT_FOUND",
			Message:  "指定されたパスは存在しません。",
			Category: "resource",
			Action:   "URLを確認してください。",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
			Code:     "METHOD_NOT_ALLOWED",
			Message:  "このメソッドは許可されていません。",
			Category: "validation",
			Action:   "HTTPメソッドを確認してください。",
		})
	})

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthService)
	categoryHandler := NewLookupHandler(deps.CategoryService)
	statusHandler := NewLookupHandler(deps.StatusService)
	itemHandler := NewItemHandler(deps.ItemService)

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 認証が必要なルートのミドルウェア: Auth → RateLimit(General)
	authenticated := chi.Chain(
		middleware.NewAuthMiddleware(deps.UserResolver),
		deps.RateLimiter.GeneralMiddleware(),
	)
	signInLimit := deps.RateLimiter.SignInMiddleware()

	r.Route(deps.APIPrefix, func(r chi.Router) {
		// --- 認証不要のルート ---
		r.Route("/auth", func(r chi.Router) {
			r.With(signInLimit).Post("/signin", authHandler.SignIn)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/signout", authHandler.SignOut)
		})

		// ユーザー管理（サインアップのみ認証不要）
		r.Route("/users", func(r chi.Router) {
			r.With(signInLimit).Post("/signup", userHandler.Signup)

			r.Group(func(r chi.Router) {
				r.Use(authenticated...)

				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
				r.Get("/me", userHandler.GetMe)
				r.Patch("/me", userHandler.UpdateMe)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", userHandler.GetUser)
					r.Patch("/", userHandler.UpdateUser)
					r.Delete("/", userHandler.DeleteUser)
				})
			})
		})

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(authenticated...)

			// カテゴリ・ステータス
			mountLookupRoutes(r, "/categories", categoryHandler)
			mountLookupRoutes(r, "/statuses", statusHandler)

			// アイテム
			r.Route("/items", func(r chi.Router) {
				r.Get("/", itemHandler.ListItems)
				r.Post("/", itemHandler.CreateItem)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", itemHandler.GetItem)
					r.Patch("/", itemHandler.UpdateItem)
					r.Delete("/", itemHandler.DeleteItem)
				})
			})
		})
	})

	return r
}

func mountLookupRoutes(r chi.Router, pattern string, h *LookupHandler) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}
