package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/taskman/internal/model"
)

// UserFinder はユーザーIDでユーザーを取得するインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Guard はアクセストークンから呼び出し元ユーザーを解決し、ロールを判定する。
// ユーザーは毎回ストアから再取得するため、ロール変更や削除は即座に反映される。
type Guard struct {
	codec   *TokenCodec
	users   UserFinder
	metrics MetricsRecorder
}

// NewGuard はGuardを生成する。recorderがnilの場合はメトリクスを記録しない。
func NewGuard(codec *TokenCodec, users UserFinder, recorder MetricsRecorder) *Guard {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Guard{codec: codec, users: users, metrics: recorder}
}

// ResolveCurrentUser はアクセストークンを検証し、subjectのユーザーを返す。
// リフレッシュトークンはアクセストークンとして受け付けない。
func (g *Guard) ResolveCurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	subject, err := g.verify(accessToken, model.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by token subject: %w", err)
	}
	if user == nil {
		g.metrics.RecordTokenRejection(model.ErrCodeUserNotFound)
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// RequireAdmin は管理者ロールでなければInsufficientPrivilegesを返す。
func (g *Guard) RequireAdmin(user *model.User) (*model.User, error) {
	if user == nil || !user.IsAdmin() {
		return nil, model.NewInsufficientPrivilegesError()
	}
	return user, nil
}

// ResolveRefreshSubject はリフレッシュCookieの値を検証し、subjectのユーザーIDを返す。
func (g *Guard) ResolveRefreshSubject(cookieValue string) (string, error) {
	if cookieValue == "" {
		g.metrics.RecordTokenRejection(model.ErrCodeMissingRefreshToken)
		return "", model.NewMissingRefreshTokenError()
	}
	return g.verify(cookieValue, model.TokenTypeRefresh)
}

// RequireOwnerOrAdmin は所有者本人または管理者でなければInsufficientPrivilegesを返す。
func (g *Guard) RequireOwnerOrAdmin(user *model.User, ownerID string) error {
	if !CanAccess(user, ownerID) {
		return model.NewInsufficientPrivilegesError()
	}
	return nil
}

// CanAccess は所有者本人または管理者であればtrueを返す。
func CanAccess(user *model.User, ownerID string) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || user.ID == ownerID
}

// verify はトークンを検証し、種別が期待どおりであればsubjectを返す。
func (g *Guard) verify(token string, expected model.TokenType) (string, error) {
	claims, err := g.codec.Verify(token)
	if err != nil {
		var apiErr *model.APIError
		if errors.Is(err, ErrTokenExpired) {
			apiErr = model.NewTokenExpiredError()
		} else {
			apiErr = model.NewInvalidTokenError()
		}
		g.metrics.RecordTokenRejection(apiErr.Code)
		return "", apiErr
	}

	if claims.TokenType != expected {
		g.metrics.RecordTokenRejection(model.ErrCodeWrongTokenType)
		return "", model.NewWrongTokenTypeError(expected)
	}

	if claims.Subject == "" {
		g.metrics.RecordTokenRejection(model.ErrCodeMissingSubject)
		return "", model.NewMissingSubjectError()
	}

	return claims.Subject, nil
}
