package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/taskman/internal/model"
)

const userColumns = `id, first_name, last_name, email, hashed_password, role, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail は正規化済みメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// List はユーザー一覧をメールアドレス順で返す。
func (r *PostgresUserRepo) List(ctx context.Context, page model.Page) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY email LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Insert はユーザーを作成する。メールアドレス重複時はErrDuplicateを返す。
func (r *PostgresUserRepo) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	created, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, first_name, last_name, email, hashed_password, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		user.ID, user.FirstName, user.LastName, user.Email, user.HashedPassword, user.Role,
	))
	if err != nil {
		if errors.Is(translateError(err), ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return created, nil
}

// InsertIfEmailAbsent は同じメールアドレスのユーザーがいない場合のみ作成する。
func (r *PostgresUserRepo) InsertIfEmailAbsent(ctx context.Context, user *model.User) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, email, hashed_password, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO NOTHING`,
		user.ID, user.FirstName, user.LastName, user.Email, user.HashedPassword, user.Role,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Update はnil以外のフィールドのみ更新する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	var role *string
	if update.Role != nil {
		s := string(*update.Role)
		role = &s
	}

	updated, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET
		   first_name      = COALESCE($2, first_name),
		   last_name       = COALESCE($3, last_name),
		   email           = COALESCE($4, email),
		   hashed_password = COALESCE($5, hashed_password),
		   role            = COALESCE($6, role),
		   updated_at      = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, update.FirstName, update.LastName, update.Email, update.HashedPassword, role,
	))
	if err != nil {
		if errors.Is(translateError(err), ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// Delete は指定IDのユーザーを削除し、削除した場合はtrueを返す。
func (r *PostgresUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// scanUser は1行をUserに読み込む。行がない場合は(nil, nil)を返す。
func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
