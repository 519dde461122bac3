// Package auth はパスワードハッシュ、トークン発行・検証、サインインと認可判定を提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes はbcryptが参照するパスワードの最大バイト数。
const MaxPasswordBytes = 72

// PasswordHasher はbcryptによるパスワードのハッシュ化と検証を行う。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash はパスワードをソルト付きでハッシュ化する。
// 同じ平文でも呼び出しごとに異なるダイジェストを返す。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文とダイジェストが一致するかを返す。
// ダイジェストが不正な形式の場合もfalseを返す。
// bcryptは先頭72バイトしか比較しないため、それを超える平文は一致扱いにしない。
// 比較自体は常に行い、長さによって応答時間が変わらないようにする。
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	matched := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	return matched && len(plaintext) <= MaxPasswordBytes
}
