// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// メールアドレスの一意性はストア側の制約で保証する。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は正規化済みメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List はユーザー一覧をメールアドレス順で返す。
	List(ctx context.Context, page model.Page) ([]*model.User, error)

	// Insert はユーザーを作成する。メールアドレス重複時はErrDuplicateを返す。
	Insert(ctx context.Context, user *model.User) (*model.User, error)

	// InsertIfEmailAbsent は同じメールアドレスのユーザーがいない場合のみ作成する。
	// 作成した場合はtrueを返す。
	InsertIfEmailAbsent(ctx context.Context, user *model.User) (bool, error)

	// Update はnil以外のフィールドのみ更新する。見つからない場合はnilを返す。
	// メールアドレス重複時はErrDuplicateを返す。
	Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error)

	// Delete は指定IDのユーザーを削除し、削除した場合はtrueを返す。
	// 所有するitemsはCASCADE削除される。
	Delete(ctx context.Context, id string) (bool, error)
}

// LookupRepository はカテゴリ・ステータスの永続化インターフェース。
// 種別ごとに別テーブルを使用し、タイトルは種別内で一意。
type LookupRepository interface {
	// Kind はこのリポジトリが扱う種別を返す。
	Kind() model.LookupKind

	// FindByID は指定IDのレコードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Lookup, error)

	// List は一覧をタイトル順で返す。
	List(ctx context.Context, page model.Page) ([]*model.Lookup, error)

	// Insert はレコードを作成する。タイトル重複時はErrDuplicateを返す。
	Insert(ctx context.Context, title string) (*model.Lookup, error)

	// Update はタイトルを更新する。見つからない場合はnil、重複時はErrDuplicateを返す。
	Update(ctx context.Context, id, title string) (*model.Lookup, error)

	// Delete は指定IDのレコードを削除し、削除した場合はtrueを返す。
	// 参照しているitemsの外部キーはNULLになる。
	Delete(ctx context.Context, id string) (bool, error)
}

// ItemRepository はアイテムデータの永続化インターフェース。
type ItemRepository interface {
	// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Item, error)

	// List はアイテム一覧を作成日時の新しい順で返す。
	// ownerIDがnilの場合は全ユーザーのアイテムを返す。
	List(ctx context.Context, ownerID *string, page model.Page) ([]*model.Item, error)

	// Insert はアイテムを作成する。
	// 存在しないカテゴリ・ステータスを参照した場合はErrInvalidReferenceを返す。
	Insert(ctx context.Context, item *model.Item) (*model.Item, error)

	// Update はnil以外のフィールドのみ更新する。見つからない場合はnilを返す。
	// CategoryID・StatusIDに空文字列を指定すると参照を外す。
	Update(ctx context.Context, id string, update model.ItemUpdate) (*model.Item, error)

	// Delete は指定IDのアイテムを削除し、削除した場合はtrueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}
