package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrDuplicate は一意制約違反を表す。
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidReference は外部キー制約違反を表す。
	ErrInvalidReference = errors.New("invalid reference")
)

// PostgreSQLのSQLSTATE
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// sqlState はlib/pqとpgxのどちらのドライバのエラーからもSQLSTATEを取り出す。
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translateError は制約違反をリポジトリのセンチネルエラーに変換する。
// それ以外のエラーはそのまま返す。
func translateError(err error) error {
	switch sqlState(err) {
	case sqlStateUniqueViolation:
		return ErrDuplicate
	case sqlStateForeignKeyViolation:
		return ErrInvalidReference
	default:
		return err
	}
}
