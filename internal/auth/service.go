package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// RefreshCookieName はリフレッシュトークンを保持するCookie名。
const RefreshCookieName = "refresh_token"

// dummyPassword はユーザー未検出時にも同じコストの検証を行うための平文。
const dummyPassword = "taskman-timing-equalizer"

// UserStore はサインインとトークン更新に必要なユーザー検索インターフェース。
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Config は認証サービスの設定。起動時に1回構築し、変更しない。
type Config struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// リフレッシュCookieの属性
	CookiePath   string
	CookieDomain string
	CookieSecure bool
}

// Service はサインイン、アクセストークン更新、サインアウトを提供する。
// トークンはステートレスで、サーバー側に失効リストは持たない。
type Service struct {
	users     UserStore
	hasher    *PasswordHasher
	codec     *TokenCodec
	guard     *Guard
	config    Config
	metrics   MetricsRecorder
	dummyHash string
}

// NewService はServiceを生成する。recorderがnilの場合はメトリクスを記録しない。
func NewService(
	users UserStore,
	hasher *PasswordHasher,
	codec *TokenCodec,
	guard *Guard,
	config Config,
	recorder MetricsRecorder,
) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		slog.Warn("failed to prepare dummy password hash", slog.String("error", err.Error()))
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		guard:     guard,
		config:    config,
		metrics:   recorder,
		dummyHash: dummyHash,
	}
}

// SignIn はメールアドレスとパスワードを検証し、アクセストークンとリフレッシュトークンを発行する。
// ユーザー未検出はUserNotFound、パスワード不一致はInvalidCredentialsを返す。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.TokenPair, error) {
	// 1. メールアドレスの正規化と検索
	user, err := s.users.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	// 2. パスワード検証
	if user == nil {
		// 応答時間でユーザーの有無を推測されないよう、同じコストの検証を行う
		s.hasher.Verify(password, s.dummyHash)
		s.metrics.RecordSignIn(SignInUserNotFound)
		return nil, model.NewUserNotFoundError()
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		s.metrics.RecordSignIn(SignInInvalidCredentials)
		slog.Info("sign in rejected", slog.String("user_id", user.ID), slog.String("reason", "invalid_credentials"))
		return nil, model.NewInvalidCredentialsError()
	}

	// 3. トークン発行
	pair, err := s.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSignIn(SignInSuccess)
	slog.Info("user signed in", slog.String("user_id", user.ID))

	return pair, nil
}

// Refresh はリフレッシュトークンを検証し、新しいアクセストークンを発行する。
// 発行済みのリフレッシュトークンはローテーションしない。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	subject, err := s.guard.ResolveRefreshSubject(refreshToken)
	if err != nil {
		return "", err
	}

	// 発行後に削除されたユーザーを拒否するため、存在を再確認する
	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		return "", fmt.Errorf("failed to find user by refresh subject: %w", err)
	}
	if user == nil {
		s.metrics.RecordTokenRejection(model.ErrCodeUserNotFound)
		return "", model.NewUserNotFoundError()
	}

	return s.issue(user.ID, model.TokenTypeAccess, s.config.AccessTokenTTL)
}

// IssuePair はユーザーIDに対してアクセストークンとリフレッシュトークンを発行する。
func (s *Service) IssuePair(userID string) (*model.TokenPair, error) {
	access, err := s.issue(userID, model.TokenTypeAccess, s.config.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(userID, model.TokenTypeRefresh, s.config.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshCookie はリフレッシュトークンを配送するHTTP Only Cookieを返す。
// MaxAgeはリフレッシュトークンの有効期間と一致させる。
func (s *Service) RefreshCookie(refreshToken string) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     s.config.CookiePath,
		Domain:   s.config.CookieDomain,
		MaxAge:   int(s.config.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SignOut はリフレッシュCookieを削除するCookieを返す。
// サーバー側の状態は持たないため、取得済みのリフレッシュトークンは期限まで有効なまま残る。
func (s *Service) SignOut() *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     s.config.CookiePath,
		Domain:   s.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *Service) issue(userID string, tokenType model.TokenType, ttl time.Duration) (string, error) {
	token, err := s.codec.Issue(userID, tokenType, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to issue %s token: %w", tokenType, err)
	}
	s.metrics.RecordTokenIssued(tokenType)
	return token, nil
}
