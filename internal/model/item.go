// Package model はドメインモデルを定義する。
package model

import "time"

// Item はユーザーが所有するタスク（アイテム）を表す。
// カテゴリとステータスは任意で、参照先削除時はNULLになる。
type Item struct {
	ID          string
	Title       string
	Description *string
	CategoryID  *string
	StatusID    *string
	UserID      string // 所有者
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemUpdate はアイテムの部分更新内容を表す。nilのフィールドは変更しない。
type ItemUpdate struct {
	Title       *string
	Description *string
	CategoryID  *string
	StatusID    *string
}

// IsEmpty は変更対象のフィールドが1つもないかを返す。
func (u ItemUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.CategoryID == nil && u.StatusID == nil
}

// Page はページネーション指定を表す。
type Page struct {
	Offset int
	Limit  int
}
