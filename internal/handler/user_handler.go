package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
// 権限判定はサービス層で行う。
type UserServiceInterface interface {
	List(ctx context.Context, actor *model.User, page model.Page) ([]*model.User, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.User, error)
	Create(ctx context.Context, actor *model.User, in user.CreateInput) (*model.User, error)
	Signup(ctx context.Context, in user.CreateInput) (*model.User, *model.TokenPair, error)
	UpdateMe(ctx context.Context, actor *model.User, in user.UpdateInput) (*model.User, error)
	AdminUpdate(ctx context.Context, actor *model.User, id string, in user.UpdateInput) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	cookies RefreshCookieIssuer
}

// NewUserHandler はUserHandlerを生成する。
// cookiesはサインアップ時のリフレッシュCookie生成に使用する。
func NewUserHandler(service UserServiceInterface, cookies RefreshCookieIssuer) *UserHandler {
	return &UserHandler{
		service: service,
		cookies: cookies,
	}
}

type createUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (req createUserRequest) toInput() user.CreateInput {
	return user.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
}

// updateUserRequest はユーザー更新リクエストのボディ。省略したフィールドは変更しない。
type updateUserRequest struct {
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Email     *string     `json:"email"`
	Password  *string     `json:"password"`
	Role      *model.Role `json:"role"`
}

func (req updateUserRequest) toInput() user.UpdateInput {
	return user.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	}
}

// userResponse はユーザーの公開ビュー。パスワードハッシュは含めない。
type userResponse struct {
	UserID    string     `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type usersResponse struct {
	Users []userResponse `json:"users"`
	Count int            `json:"count"`
}

type signupResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ListUsers はユーザー一覧を返す。
// GET /users?offset=&limit=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	users, err := h.service.List(r.Context(), actor, page)
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}

	resp := usersResponse{Users: make([]userResponse, 0, len(users)), Count: len(users)}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMe は認証済みユーザー自身を返す。
// GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(actor))
}

// GetUser は指定ユーザーを返す。
// GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// CreateUser は管理者がユーザーを作成する。
// POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.service.Create(r.Context(), actor, req.toInput())
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Signup は認証なしでユーザーを登録し、トークンを発行する。
// POST /users/signup
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, pair, err := h.service.Signup(r.Context(), req.toInput())
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}

	http.SetCookie(w, h.cookies.RefreshCookie(pair.RefreshToken))
	writeJSON(w, http.StatusCreated, signupResponse{
		AccessToken: pair.AccessToken,
		TokenType:   tokenTypeBearer,
		UserID:      u.ID,
	})
}

// UpdateMe は自分自身のプロフィールを更新する。roleは変更できない。
// PATCH /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.service.UpdateMe(r.Context(), actor, req.toInput())
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// UpdateUser は管理者が任意のユーザーを更新する。
// PATCH /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.service.AdminUpdate(r.Context(), actor, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// DeleteUser は管理者がユーザーを削除する。所有アイテムも削除される。
// DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "user deleted"})
}
