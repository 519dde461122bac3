package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/item"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// ItemServiceInterface はアイテムハンドラーが必要とするサービスインターフェース。
type ItemServiceInterface interface {
	List(ctx context.Context, actor *model.User, page model.Page) ([]*model.Item, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.Item, error)
	Create(ctx context.Context, actor *model.User, in item.Input) (*model.Item, error)
	Update(ctx context.Context, actor *model.User, id string, in item.Input) (*model.Item, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

// ItemHandler はアイテム管理のHTTPハンドラー。
type ItemHandler struct {
	service ItemServiceInterface
}

// NewItemHandler はItemHandlerを生成する。
func NewItemHandler(service ItemServiceInterface) *ItemHandler {
	return &ItemHandler{service: service}
}

// itemRequest はアイテム作成・更新リクエストのボディ。
// 更新時にcategory_id・status_idへ空文字列を指定すると参照を外す。
type itemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	StatusID    *string `json:"status_id"`
}

func (req itemRequest) toInput() item.Input {
	return item.Input{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		StatusID:    req.StatusID,
	}
}

// itemResponse はアイテムのAPIレスポンス。
type itemResponse struct {
	ItemID      string    `json:"item_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CategoryID  *string   `json:"category_id"`
	StatusID    *string   `json:"status_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type itemsResponse struct {
	Items []itemResponse `json:"items"`
	Count int            `json:"count"`
}

func toItemResponse(it *model.Item) itemResponse {
	return itemResponse{
		ItemID:      it.ID,
		UserID:      it.UserID,
		Title:       it.Title,
		Description: it.Description,
		CategoryID:  it.CategoryID,
		StatusID:    it.StatusID,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// ListItems はアイテム一覧を返す。管理者は全件、それ以外は自分のアイテムのみ。
// GET /items?offset=&limit=
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), actor, page)
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}

	resp := itemsResponse{Items: make([]itemResponse, 0, len(items)), Count: len(items)}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetItem はアイテム詳細を返す。
// GET /items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	it, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(it))
}

// CreateItem は呼び出し元を所有者としてアイテムを作成する。
// POST /items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.service.Create(r.Context(), actor, req.toInput())
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

// UpdateItem はアイテムを部分更新する。
// PATCH /items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(it))
}

// DeleteItem はアイテムを削除する。
// DELETE /items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "item deleted"})
}
