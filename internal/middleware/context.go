package middleware

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	userContextKey        = contextKey("user")
	requestInfoContextKey = contextKey("request_info")
)

// requestInfo はアクセスログ用にリクエスト処理中に判明した情報を保持する。
// ロギングミドルウェアが生成し、内側のミドルウェアが書き込む。
type requestInfo struct {
	userID string
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.userID = user.ID
	}
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ値を返す。
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok && user != nil
}

func withRequestInfo(ctx context.Context) (context.Context, *requestInfo) {
	info := &requestInfo{}
	return context.WithValue(ctx, requestInfoContextKey, info), info
}
