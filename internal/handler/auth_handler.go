package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// tokenTypeBearer はトークンレスポンスのtoken_type。
const tokenTypeBearer = "bearer"

// RefreshCookieIssuer はリフレッシュCookieの生成インターフェース。
type RefreshCookieIssuer interface {
	RefreshCookie(refreshToken string) *http.Cookie
}

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	RefreshCookieIssuer
	SignIn(ctx context.Context, email, password string) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	SignOut() *http.Cookie
}

// AuthHandler はサインイン、トークン更新、サインアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse はアクセストークンのAPIレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// SignIn はメールアドレスとパスワードで認証する。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		middleware.WriteServiceError(w, model.NewInvalidRequestError("emailとpasswordは必須です"))
		return
	}

	pair, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}

	http.SetCookie(w, h.service.RefreshCookie(pair.RefreshToken))
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   tokenTypeBearer,
	})
}

// Refresh はリフレッシュCookieから新しいアクセストークンを発行する。
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var value string
	if cookie, err := r.Cookie(auth.RefreshCookieName); err == nil {
		value = cookie.Value
	}

	// 空の値はガードがMISSING_REFRESH_TOKENとして扱う
	accessToken, err := h.service.Refresh(r.Context(), value)
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
	})
}

// SignOut はリフレッシュCookieを削除する。常に成功する。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.service.SignOut())
	writeJSON(w, http.StatusOK, messageResponse{Message: "signed out"})
}
