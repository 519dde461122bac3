package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr), "expected *model.APIError, got %T: %v", err, err)
	assert.Equal(t, code, apiErr.Code)
}

func TestGuard_ResolveCurrentUser_Success(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"))
	alice := &model.User{ID: "u-alice", Email: "alice@example.com", Role: model.RoleUser}
	guard := NewGuard(codec, usersByID(alice), nil)

	tok, err := codec.Issue(alice.ID, model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	user, err := guard.ResolveCurrentUser(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, alice, user)
}

func TestGuard_ResolveCurrentUser_RejectsRefreshToken(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"))
	alice := &model.User{ID: "u-alice", Role: model.RoleUser}
	rec := &recordingMetrics{}
	guard := NewGuard(codec, usersByID(alice), rec)

	tok, err := codec.Issue(alice.ID, model.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = guard.ResolveCurrentUser(context.Background(), tok)
	requireAPIErrorCode(t, err, model.ErrCodeWrongTokenType)
	assert.Equal(t, []string{model.ErrCodeWrongTokenType}, rec.rejections)
}

func TestGuard_ResolveCurrentUser_TokenFailures(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"))
	forger := NewTokenCodec([]byte("other"))
	guard := NewGuard(codec, usersByID(), nil)

	expired, err := codec.Issue("u1", model.TokenTypeAccess, -time.Second)
	require.NoError(t, err)
	forged, err := forger.Issue("u1", model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	noSubject, err := codec.Issue("", model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"expired", expired, model.ErrCodeTokenExpired},
		{"forged", forged, model.ErrCodeInvalidToken},
		{"garbage", "not-a-token", model.ErrCodeInvalidToken},
		{"no subject", noSubject, model.ErrCodeMissingSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := guard.ResolveCurrentUser(context.Background(), tt.token)
			requireAPIErrorCode(t, err, tt.code)
		})
	}
}

func TestGuard_ResolveCurrentUser_DeletedUser(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"))
	guard := NewGuard(codec, usersByID(), nil)

	tok, err := codec.Issue("u-gone", model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = guard.ResolveCurrentUser(context.Background(), tok)
	requireAPIErrorCode(t, err, model.ErrCodeUserNotFound)
}

func TestGuard_ResolveCurrentUser_StorageFailurePropagates(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"))
	dbErr := errors.New("connection refused")
	calls := 0
	guard := NewGuard(codec, &mockUserStore{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			calls++
			return nil, dbErr
		},
	}, nil)

	tok, err := codec.Issue("u1", model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = guard.ResolveCurrentUser(context.Background(), tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)

	var apiErr *model.APIError
	assert.False(t, errors.As(err, &apiErr), "storage failure must not become an APIError")
	assert.Equal(t, 1, calls, "storage failure must not be retried")
}

func TestGuard_ResolveCurrentUser_RereadsRoleEveryCall(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"))
	bob := &model.User{ID: "u-bob", Role: model.RoleAdmin}
	guard := NewGuard(codec, usersByID(bob), nil)

	tok, err := codec.Issue(bob.ID, model.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	user, err := guard.ResolveCurrentUser(context.Background(), tok)
	require.NoError(t, err)
	_, err = guard.RequireAdmin(user)
	require.NoError(t, err)

	// 降格は次のリクエストから反映される
	bob.Role = model.RoleUser
	user, err = guard.ResolveCurrentUser(context.Background(), tok)
	require.NoError(t, err)
	_, err = guard.RequireAdmin(user)
	requireAPIErrorCode(t, err, model.ErrCodeInsufficientPrivileges)
}

func TestGuard_RequireAdmin(t *testing.T) {
	guard := NewGuard(NewTokenCodec([]byte("secret")), usersByID(), nil)

	admin := &model.User{ID: "a", Role: model.RoleAdmin}
	got, err := guard.RequireAdmin(admin)
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	for _, role := range []model.Role{model.RoleUser, model.RoleGuest} {
		_, err := guard.RequireAdmin(&model.User{ID: "x", Role: role})
		requireAPIErrorCode(t, err, model.ErrCodeInsufficientPrivileges)
	}

	_, err = guard.RequireAdmin(nil)
	requireAPIErrorCode(t, err, model.ErrCodeInsufficientPrivileges)
}

func TestGuard_ResolveRefreshSubject(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"))
	guard := NewGuard(codec, usersByID(), nil)

	refresh, err := codec.Issue("u1", model.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	access, err := codec.Issue("u1", model.TokenTypeAccess, time.Hour)
	require.NoError(t, err)
	noSubject, err := codec.Issue("", model.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	expired, err := codec.Issue("u1", model.TokenTypeRefresh, -time.Second)
	require.NoError(t, err)

	subject, err := guard.ResolveRefreshSubject(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", subject)

	tests := []struct {
		name  string
		value string
		code  string
	}{
		{"missing", "", model.ErrCodeMissingRefreshToken},
		{"access token", access, model.ErrCodeWrongTokenType},
		{"no subject", noSubject, model.ErrCodeMissingSubject},
		{"expired", expired, model.ErrCodeTokenExpired},
		{"garbage", "xyz", model.ErrCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := guard.ResolveRefreshSubject(tt.value)
			requireAPIErrorCode(t, err, tt.code)
		})
	}
}

func TestCanAccess(t *testing.T) {
	owner := &model.User{ID: "owner", Role: model.RoleUser}
	other := &model.User{ID: "other", Role: model.RoleUser}
	guest := &model.User{ID: "guest", Role: model.RoleGuest}
	admin := &model.User{ID: "admin", Role: model.RoleAdmin}

	assert.True(t, CanAccess(owner, "owner"))
	assert.False(t, CanAccess(other, "owner"))
	assert.False(t, CanAccess(guest, "owner"))
	assert.True(t, CanAccess(admin, "owner"))
	assert.False(t, CanAccess(nil, "owner"))

	guard := NewGuard(NewTokenCodec([]byte("secret")), usersByID(), nil)
	assert.NoError(t, guard.RequireOwnerOrAdmin(owner, "owner"))
	requireAPIErrorCode(t, guard.RequireOwnerOrAdmin(other, "owner"), model.ErrCodeInsufficientPrivileges)
}
