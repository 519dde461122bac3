// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Role はユーザーの権限ロールを表す。
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid は定義済みロールかどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User は認可判定の基準となるユーザーレコードを表す。
// 認可のたびにストアから再取得し、キャッシュしない。
type User struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsAdmin は管理者ロールかどうかを返す。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserUpdate はユーザーの部分更新内容を表す。nilのフィールドは変更しない。
type UserUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	HashedPassword *string
	Role           *Role
}

// IsEmpty は変更対象のフィールドが1つもないかを返す。
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.HashedPassword == nil && u.Role == nil
}

// NormalizeEmail はメールアドレスを前後空白除去・小文字化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
