package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// LookupServiceInterface はカテゴリ・ステータスハンドラーが必要とするサービスインターフェース。
type LookupServiceInterface interface {
	Kind() model.LookupKind
	List(ctx context.Context, page model.Page) ([]*model.Lookup, error)
	Get(ctx context.Context, id string) (*model.Lookup, error)
	Create(ctx context.Context, actor *model.User, title string) (*model.Lookup, error)
	Update(ctx context.Context, actor *model.User, id, title string) (*model.Lookup, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

// LookupHandler はカテゴリまたはステータスのHTTPハンドラー。
// レスポンスのキー名は種別から決まる（category_id / categories など）。
type LookupHandler struct {
	service LookupServiceInterface
	idKey   string
	listKey string
}

// NewLookupHandler はLookupHandlerを生成する。
func NewLookupHandler(service LookupServiceInterface) *LookupHandler {
	h := &LookupHandler{service: service}
	switch service.Kind() {
	case model.LookupStatus:
		h.idKey, h.listKey = "status_id", "statuses"
	default:
		h.idKey, h.listKey = "category_id", "categories"
	}
	return h
}

type lookupRequest struct {
	Title *string `json:"title"`
}

func (h *LookupHandler) toResponse(l *model.Lookup) map[string]string {
	return map[string]string{
		h.idKey: l.ID,
		"title": l.Title,
	}
}

// List は一覧を返す。認証済みユーザーなら誰でも参照できる。
// GET /categories, GET /statuses
func (h *LookupHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), page)
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}

	views := make([]map[string]string, 0, len(list))
	for _, l := range list {
		views = append(views, h.toResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		h.listKey: views,
		"count":   len(views),
	})
}

// Get は指定IDのレコードを返す。
// GET /categories/{id}, GET /statuses/{id}
func (h *LookupHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(l))
}

// Create はレコードを作成する。
// POST /categories, POST /statuses
func (h *LookupHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req lookupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	l, err := h.service.Create(r.Context(), actor, deref(req.Title))
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toResponse(l))
}

// Update はタイトルを変更する。
// PATCH /categories/{id}, PATCH /statuses/{id}
func (h *LookupHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req lookupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	l, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), deref(req.Title))
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(l))
}

// Delete はレコードを削除する。
// DELETE /categories/{id}, DELETE /statuses/{id}
func (h *LookupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: string(h.service.Kind()) + " deleted"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
