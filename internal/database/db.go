package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// サポートするdatabase/sqlドライバ名
const (
	DriverPQ  = "postgres" // github.com/lib/pq
	DriverPGX = "pgx"      // github.com/jackc/pgx/v5/stdlib
)

// コネクションプールの既定値
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultConnMaxIdleTime = 1 * time.Minute
	DefaultPingTimeout     = 5 * time.Second
)

// Open はPostgreSQLデータベース接続プールを開く。
// driverには"postgres"(lib/pq)または"pgx"を指定する。
// sql.Openは接続を試行しないため、実際の接続確認にはPingを使用すること。
func Open(driver, databaseURL string) (*sql.DB, error) {
	if driver != DriverPQ && driver != DriverPGX {
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	db, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	db.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	return db, nil
}

// Pinger はヘルスチェックに必要なインターフェース。*sql.DBが実装する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Ping はタイムアウト付きで接続を確認する。
// ctxに期限がない場合はDefaultPingTimeoutを使用する。
func Ping(ctx context.Context, db Pinger) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPingTimeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
