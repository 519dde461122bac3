// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// Bearerトークン抽出の失敗理由。ログ用で、レスポンスには含めない。
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthScheme = errors.New("invalid authorization scheme: expected Bearer")
	ErrEmptyToken        = errors.New("empty bearer token")
)

// CurrentUserResolver はアクセストークンから現在のユーザーを解決するインターフェース。
// auth.Guardが実装する。
type CurrentUserResolver interface {
	ResolveCurrentUser(ctx context.Context, accessToken string) (*model.User, error)
}

// ExtractBearerToken は"Authorization: Bearer <token>"ヘッダーからトークンを取り出す。
// スキーム名は大文字小文字を区別しない。
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingAuthHeader
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthScheme
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// NewAuthMiddleware はBearerトークンを検証し、現在のユーザーをコンテキストに注入するミドルウェアを返す。
// ユーザーはリクエストごとにストアから再取得される。
func NewAuthMiddleware(resolver CurrentUserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractBearerToken(r)
			if err != nil {
				WriteServiceError(w, model.NewMissingBearerTokenError())
				return
			}

			user, err := resolver.ResolveCurrentUser(r.Context(), token)
			if err != nil {
				WriteServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}
