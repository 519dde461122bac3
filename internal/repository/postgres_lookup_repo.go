package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
)

// PostgresLookupRepo はPostgreSQLを使用したカテゴリ・ステータスのリポジトリ。
// テーブル名は種別から固定で決まり、外部入力を含まない。
type PostgresLookupRepo struct {
	db    *sql.DB
	kind  model.LookupKind
	table string
}

// NewPostgresCategoryRepo はcategoriesテーブルを扱うリポジトリを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresLookupRepo {
	return &PostgresLookupRepo{db: db, kind: model.LookupCategory, table: "categories"}
}

// NewPostgresStatusRepo はstatusesテーブルを扱うリポジトリを生成する。
func NewPostgresStatusRepo(db *sql.DB) *PostgresLookupRepo {
	return &PostgresLookupRepo{db: db, kind: model.LookupStatus, table: "statuses"}
}

// Kind はこのリポジトリが扱う種別を返す。
func (r *PostgresLookupRepo) Kind() model.LookupKind {
	return r.kind
}

// FindByID は指定IDのレコードを取得する。見つからない場合はnilを返す。
func (r *PostgresLookupRepo) FindByID(ctx context.Context, id string) (*model.Lookup, error) {
	l, err := r.scan(r.db.QueryRowContext(ctx,
		`SELECT id, title FROM `+r.table+` WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find %s by ID: %w", r.kind, err)
	}
	return l, nil
}

// List は一覧をタイトル順で返す。
func (r *PostgresLookupRepo) List(ctx context.Context, page model.Page) ([]*model.Lookup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title FROM `+r.table+` ORDER BY title LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	var result []*model.Lookup
	for rows.Next() {
		l := &model.Lookup{Kind: r.kind}
		if err := rows.Scan(&l.ID, &l.Title); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.kind, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.table, err)
	}
	return result, nil
}

// Insert はレコードを作成する。タイトル重複時はErrDuplicateを返す。
func (r *PostgresLookupRepo) Insert(ctx context.Context, title string) (*model.Lookup, error) {
	l, err := r.scan(r.db.QueryRowContext(ctx,
		`INSERT INTO `+r.table+` (id, title) VALUES ($1, $2) RETURNING id, title`,
		uuid.New().String(), title,
	))
	if err != nil {
		if errors.Is(translateError(err), ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert %s: %w", r.kind, err)
	}
	return l, nil
}

// Update はタイトルを更新する。見つからない場合はnil、重複時はErrDuplicateを返す。
func (r *PostgresLookupRepo) Update(ctx context.Context, id, title string) (*model.Lookup, error) {
	l, err := r.scan(r.db.QueryRowContext(ctx,
		`UPDATE `+r.table+` SET title = $2 WHERE id = $1 RETURNING id, title`,
		id, title,
	))
	if err != nil {
		if errors.Is(translateError(err), ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.kind, err)
	}
	return l, nil
}

// Delete は指定IDのレコードを削除し、削除した場合はtrueを返す。
func (r *PostgresLookupRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM `+r.table+` WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", r.kind, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *PostgresLookupRepo) scan(row *sql.Row) (*model.Lookup, error) {
	l := &model.Lookup{Kind: r.kind}
	err := row.Scan(&l.ID, &l.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// compile-time interface check
var _ LookupRepository = (*PostgresLookupRepo)(nil)
