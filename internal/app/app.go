package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/config"
	"github.com/hitoshi/taskman/internal/database"
	"github.com/hitoshi/taskman/internal/handler"
	"github.com/hitoshi/taskman/internal/item"
	"github.com/hitoshi/taskman/internal/logger"
	"github.com/hitoshi/taskman/internal/lookup"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
	"github.com/hitoshi/taskman/internal/user"
	"github.com/prometheus/client_golang/prometheus"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定に従ってログレベルを反映する
	logger.SetLevel(cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if !cmd.NeedsConfig() {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("project", cfg.ProjectName),
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(context.Background(), db); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", slog.String("driver", cfg.DatabaseDriver))

	// 2. 依存関係のワイヤリングと管理者の初期登録
	srv, err := newServer(context.Background(), cfg, db, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer srv.limiter.Stop()

	// 3. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.String("api_prefix", cfg.APIPrefix),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// server はワイヤリング済みのHTTPハンドラーとバックグラウンド資源をまとめる。
type server struct {
	router  http.Handler
	limiter *middleware.RateLimiter
}

// newServer はリポジトリ、認証コア、ドメインサービス、ルーターを構築する。
// 起動時に管理者アカウントが存在しなければ作成する。
func newServer(ctx context.Context, cfg *config.Config, db *sql.DB, reg *prometheus.Registry) (*server, error) {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	categoryRepo := repository.NewPostgresCategoryRepo(db)
	statusRepo := repository.NewPostgresStatusRepo(db)
	itemRepo := repository.NewPostgresItemRepo(db)

	// 2. メトリクス
	collector := metrics.NewCollector(reg)

	// 3. 認証コア
	codec := auth.NewTokenCodec([]byte(cfg.JWTSecretKey))
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	guard := auth.NewGuard(codec, userRepo, collector)
	authService := auth.NewService(userRepo, hasher, codec, guard, auth.Config{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		CookiePath:      cfg.APIPrefix + "/auth",
		CookieDomain:    cfg.CookieDomain,
		CookieSecure:    cfg.CookieSecure,
	}, collector)

	// 4. ドメインサービス
	sanitizer := security.NewTextSanitizer()
	userService := user.NewService(userRepo, hasher, guard, authService)
	categoryService := lookup.NewService(categoryRepo, guard, sanitizer)
	statusService := lookup.NewService(statusRepo, guard, sanitizer)
	itemService := item.NewService(itemRepo, categoryService, statusService, guard, sanitizer)

	// 5. 管理者の初期登録（既存の場合は何もしない）
	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("failed to bootstrap admin user: %w", err)
	}

	// 6. ルーターの構築（レート制限はreq/min設定をreq/secに変換）
	limiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitSignIn),
		collector,
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(reg),
		HealthChecker:     db,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,
		UserResolver:      guard,
		APIPrefix:         cfg.APIPrefix,

		AuthService:     authService,
		UserService:     userService,
		CategoryService: categoryService,
		StatusService:   statusService,
		ItemService:     itemService,
	})

	return &server{router: router, limiter: limiter}, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// 解析できないURLは全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
