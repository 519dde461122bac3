package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/taskman/internal/model"
)

const itemColumns = `id, title, description, category_id, status_id, user_id, created_at, updated_at`

// PostgresItemRepo はPostgreSQLを使用したアイテムリポジトリ。
type PostgresItemRepo struct {
	db *sql.DB
}

// NewPostgresItemRepo はPostgresItemRepoを生成する。
func NewPostgresItemRepo(db *sql.DB) *PostgresItemRepo {
	return &PostgresItemRepo{db: db}
}

// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
func (r *PostgresItemRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return item, nil
}

// List はアイテム一覧を作成日時の新しい順で返す。
// ownerIDがnilの場合は全ユーザーのアイテムを返す。
func (r *PostgresItemRepo) List(ctx context.Context, ownerID *string, page model.Page) ([]*model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE ($1::uuid IS NULL OR user_id = $1::uuid)
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`,
		ownerID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*model.Item
	for rows.Next() {
		it := &model.Item{}
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.CategoryID, &it.StatusID, &it.UserID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// Insert はアイテムを作成する。
func (r *PostgresItemRepo) Insert(ctx context.Context, item *model.Item) (*model.Item, error) {
	created, err := scanItem(r.db.QueryRowContext(ctx,
		`INSERT INTO items (id, title, description, category_id, status_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+itemColumns,
		item.ID, item.Title, item.Description, item.CategoryID, item.StatusID, item.UserID,
	))
	if err != nil {
		if errors.Is(translateError(err), ErrInvalidReference) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return created, nil
}

// Update はnil以外のフィールドのみ更新する。見つからない場合はnilを返す。
// CategoryID・StatusIDに空文字列を指定すると参照を外す。
func (r *PostgresItemRepo) Update(ctx context.Context, id string, update model.ItemUpdate) (*model.Item, error) {
	updated, err := scanItem(r.db.QueryRowContext(ctx,
		`UPDATE items SET
		   title       = COALESCE($2, title),
		   description = COALESCE($3, description),
		   category_id = CASE WHEN $4::text IS NULL THEN category_id ELSE NULLIF($4::text, '')::uuid END,
		   status_id   = CASE WHEN $5::text IS NULL THEN status_id ELSE NULLIF($5::text, '')::uuid END,
		   updated_at  = now()
		 WHERE id = $1
		 RETURNING `+itemColumns,
		id, update.Title, update.Description, update.CategoryID, update.StatusID,
	))
	if err != nil {
		if errors.Is(translateError(err), ErrInvalidReference) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return updated, nil
}

// Delete は指定IDのアイテムを削除し、削除した場合はtrueを返す。
func (r *PostgresItemRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func scanItem(row *sql.Row) (*model.Item, error) {
	it := &model.Item{}
	err := row.Scan(&it.ID, &it.Title, &it.Description, &it.CategoryID, &it.StatusID, &it.UserID, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// compile-time interface check
var _ ItemRepository = (*PostgresItemRepo)(nil)
