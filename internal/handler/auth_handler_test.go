package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signInFn  func(ctx context.Context, email, password string) (*model.TokenPair, error)
	refreshFn func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.TokenPair, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return "", nil
}

func (m *mockAuthService) RefreshCookie(refreshToken string) *http.Cookie {
	return &http.Cookie{Name: auth.RefreshCookieName, Value: refreshToken, Path: "/api/v1/auth", HttpOnly: true}
}

func (m *mockAuthService) SignOut() *http.Cookie {
	return &http.Cookie{Name: auth.RefreshCookieName, Value: "", Path: "/api/v1/auth", MaxAge: -1, HttpOnly: true}
}

// --- SignIn ---

func TestAuthHandler_SignIn_Success_SetsCookieAndReturnsToken(t *testing.T) {
	var gotEmail, gotPassword string
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string) (*model.TokenPair, error) {
			gotEmail, gotPassword = email, password
			return &model.TokenPair{AccessToken: "access-xyz", RefreshToken: "refresh-xyz"}, nil
		},
	}
	h := NewAuthHandler(svc)

	w := httptest.NewRecorder()
	h.SignIn(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotEmail != "a@b.com" || gotPassword != "secret" {
		t.Errorf("service received (%q, %q)", gotEmail, gotPassword)
	}

	body := decodeBody(t, w)
	if body["access_token"] != "access-xyz" {
		t.Errorf("access_token = %v, want %q", body["access_token"], "access-xyz")
	}
	if body["token_type"] != "bearer" {
		t.Errorf("token_type = %v, want %q", body["token_type"], "bearer")
	}
	if _, ok := body["refresh_token"]; ok {
		t.Error("refresh token must not appear in the body")
	}

	cookie := findCookie(w, auth.RefreshCookieName)
	if cookie == nil {
		t.Fatal("refresh cookie should be set")
	}
	if cookie.Value != "refresh-xyz" || !cookie.HttpOnly {
		t.Errorf("cookie = %+v", cookie)
	}
}

func TestAuthHandler_SignIn_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown email", model.NewUserNotFoundError(), http.StatusNotFound, model.ErrCodeUserNotFound},
		{"wrong password", model.NewInvalidCredentialsError(), http.StatusUnauthorized, model.ErrCodeInvalidCredentials},
		{"storage failure", errors.New("connection refused"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{
				signInFn: func(ctx context.Context, email, password string) (*model.TokenPair, error) {
					return nil, tt.err
				},
			})

			w := httptest.NewRecorder()
			h.SignIn(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/signin", map[string]string{
				"email":    "a@b.com",
				"password": "wrong",
			}))

			assertErrorCode(t, w, tt.wantStatus, tt.wantCode)
			if findCookie(w, auth.RefreshCookieName) != nil {
				t.Error("refresh cookie must not be set on failure")
			}
		})
	}
}

func TestAuthHandler_SignIn_InvalidBody_ReturnsBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"broken json", `{"email":`},
		{"empty body", ``},
		{"missing password", `{"email":"a@b.com"}`},
		{"unknown field", `{"email":"a@b.com","password":"x","role":"admin"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{
				signInFn: func(ctx context.Context, email, password string) (*model.TokenPair, error) {
					t.Fatal("service should not be called")
					return nil, nil
				},
			})

			w := httptest.NewRecorder()
			h.SignIn(w, jsonRequest(t, http.MethodPost, "/api/v1/auth/signin", tt.body))

			assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeInvalidRequest)
		})
	}
}

// --- Refresh ---

func TestAuthHandler_Refresh_ReadsCookie(t *testing.T) {
	var got string
	h := NewAuthHandler(&mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
			got = refreshToken
			return "new-access", nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: "refresh-abc"})
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got != "refresh-abc" {
		t.Errorf("service received %q, want %q", got, "refresh-abc")
	}
	body := decodeBody(t, w)
	if body["access_token"] != "new-access" || body["token_type"] != "bearer" {
		t.Errorf("body = %v", body)
	}
}

func TestAuthHandler_Refresh_NoCookie_PassesEmptyValue(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
			if refreshToken != "" {
				t.Errorf("refreshToken = %q, want empty", refreshToken)
			}
			return "", model.NewMissingRefreshTokenError()
		},
	})

	w := httptest.NewRecorder()
	h.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))

	assertErrorCode(t, w, http.StatusUnauthorized, model.ErrCodeMissingRefreshToken)
}

func TestAuthHandler_Refresh_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"expired", model.NewTokenExpiredError(), http.StatusUnauthorized, model.ErrCodeTokenExpired},
		{"forged", model.NewInvalidTokenError(), http.StatusUnauthorized, model.ErrCodeInvalidToken},
		{"access token presented", model.NewWrongTokenTypeError(model.TokenTypeRefresh), http.StatusUnauthorized, model.ErrCodeWrongTokenType},
		{"user gone", model.NewUserNotFoundError(), http.StatusNotFound, model.ErrCodeUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{
				refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
					return "", tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
			req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: "some-token"})
			w := httptest.NewRecorder()
			h.Refresh(w, req)

			assertErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

// --- SignOut ---

func TestAuthHandler_SignOut_ClearsCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.SignOut(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signout", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	cookie := findCookie(w, auth.RefreshCookieName)
	if cookie == nil {
		t.Fatal("expected cookie clearing header")
	}
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Errorf("cookie should be expired: %+v", cookie)
	}
}
