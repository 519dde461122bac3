package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
)

// --- モック ---

type mockResolver struct {
	resolveFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockResolver) ResolveCurrentUser(ctx context.Context, token string) (*model.User, error) {
	return m.resolveFn(ctx, token)
}

// withUser はテスト用にコンテキストへユーザーを注入したリクエストを返す。
func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(ContextWithUser(req.Context(), &model.User{ID: userID, Role: model.RoleUser}))
}

// --- ExtractBearerToken ---

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"lowercase scheme", "bearer abc", "abc", nil},
		{"missing header", "", "", ErrMissingAuthHeader},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", ErrInvalidAuthScheme},
		{"no space", "Bearerabc", "", ErrInvalidAuthScheme},
		{"empty token", "Bearer ", "", ErrEmptyToken},
		{"whitespace token", "Bearer    ", "", ErrEmptyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			got, err := ExtractBearerToken(req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- NewAuthMiddleware ---

func TestAuthMiddleware_InjectsUser(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, token string) (*model.User, error) {
			if token != "good-token" {
				t.Errorf("token = %q", token)
			}
			return &model.User{ID: "user-1", Role: model.RoleAdmin}, nil
		},
	}

	var captured *model.User
	handler := NewAuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured == nil || captured.ID != "user-1" || !captured.IsAdmin() {
		t.Errorf("context user = %+v", captured)
	}
}

func TestAuthMiddleware_MissingHeader_Returns401(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, token string) (*model.User, error) {
			t.Fatal("resolver should not be called")
			return nil, nil
		},
	}
	handler := NewAuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want %q", got, "Bearer")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeMissingBearerToken {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeMissingBearerToken)
	}
}

func TestAuthMiddleware_ResolverErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"expired", model.NewTokenExpiredError(), http.StatusUnauthorized, model.ErrCodeTokenExpired},
		{"invalid", model.NewInvalidTokenError(), http.StatusUnauthorized, model.ErrCodeInvalidToken},
		{"wrong type", model.NewWrongTokenTypeError(model.TokenTypeAccess), http.StatusUnauthorized, model.ErrCodeWrongTokenType},
		{"user vanished", model.NewUserNotFoundError(), http.StatusNotFound, model.ErrCodeUserNotFound},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockResolver{
				resolveFn: func(ctx context.Context, token string) (*model.User, error) {
					return nil, tt.err
				},
			}
			handler := NewAuthMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("expected no user in empty context")
	}
}
