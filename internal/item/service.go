// Package item はアイテム（タスク）の管理機能を提供する。
package item

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

const (
	maxTitleLength       = 150
	maxDescriptionLength = 1000
)

// ReferenceChecker はカテゴリ・ステータスの存在確認インターフェース。
type ReferenceChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Input はアイテムの作成・更新の入力。
// 更新ではnilのフィールドは変更せず、CategoryID・StatusIDの空文字列は参照を外す。
type Input struct {
	Title       *string
	Description *string
	CategoryID  *string
	StatusID    *string
}

// Service はアイテムのサービス層。
// 管理者はすべてのアイテム、それ以外は自分のアイテムのみ操作できる。
type Service struct {
	itemRepo   repository.ItemRepository
	categories ReferenceChecker
	statuses   ReferenceChecker
	guard      *auth.Guard
	sanitizer  security.TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	itemRepo repository.ItemRepository,
	categories ReferenceChecker,
	statuses ReferenceChecker,
	guard *auth.Guard,
	sanitizer security.TextSanitizer,
) *Service {
	return &Service{
		itemRepo:   itemRepo,
		categories: categories,
		statuses:   statuses,
		guard:      guard,
		sanitizer:  sanitizer,
	}
}

// List はアイテム一覧を返す。管理者以外は自分のアイテムのみ。
func (s *Service) List(ctx context.Context, actor *model.User, page model.Page) ([]*model.Item, error) {
	if actor == nil {
		return nil, model.NewInsufficientPrivilegesError()
	}

	var owner *string
	if !actor.IsAdmin() {
		owner = &actor.ID
	}

	items, err := s.itemRepo.List(ctx, owner, page)
	if err != nil {
		return nil, fmt.Errorf("アイテム一覧の取得に失敗しました: %w", err)
	}
	return items, nil
}

// Get は指定IDのアイテムを返す。所有者または管理者のみ。
func (s *Service) Get(ctx context.Context, actor *model.User, id string) (*model.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewItemNotFoundError(id)
	}

	found, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("アイテムの取得に失敗しました: %w", err)
	}
	if found == nil {
		return nil, model.NewItemNotFoundError(id)
	}
	if err := s.guard.RequireOwnerOrAdmin(actor, found.UserID); err != nil {
		return nil, err
	}
	return found, nil
}

// Create は呼び出し元を所有者としてアイテムを作成する。
func (s *Service) Create(ctx context.Context, actor *model.User, in Input) (*model.Item, error) {
	if actor == nil {
		return nil, model.NewInsufficientPrivilegesError()
	}
	if in.Title == nil {
		return nil, model.NewInvalidRequestError("titleは必須です")
	}

	upd, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, upd); err != nil {
		return nil, err
	}

	created, err := s.itemRepo.Insert(ctx, &model.Item{
		ID:          uuid.New().String(),
		Title:       *upd.Title,
		Description: upd.Description,
		CategoryID:  emptyToNil(upd.CategoryID),
		StatusID:    emptyToNil(upd.StatusID),
		UserID:      actor.ID,
	})
	if err != nil {
		return nil, s.translateWriteError(ctx, upd, err, "作成")
	}

	slog.Info("item created",
		slog.String("item_id", created.ID),
		slog.String("user_id", actor.ID),
	)
	return created, nil
}

// Update はアイテムを部分更新する。所有者または管理者のみ。
func (s *Service) Update(ctx context.Context, actor *model.User, id string, in Input) (*model.Item, error) {
	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	upd, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return current, nil
	}
	if err := s.checkReferences(ctx, upd); err != nil {
		return nil, err
	}

	updated, err := s.itemRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.translateWriteError(ctx, upd, err, "更新")
	}
	// 取得後に削除された
	if updated == nil {
		return nil, model.NewItemNotFoundError(id)
	}
	return updated, nil
}

// Delete はアイテムを削除する。所有者または管理者のみ。
func (s *Service) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}

	deleted, err := s.itemRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("アイテムの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewItemNotFoundError(id)
	}

	slog.Info("item deleted",
		slog.String("item_id", id),
		slog.String("deleted_by", actor.ID),
	)
	return nil
}

// normalize は入力を検証し、サニタイズ済みの更新内容に変換する。
func (s *Service) normalize(in Input) (model.ItemUpdate, error) {
	var upd model.ItemUpdate

	if in.Title != nil {
		title := s.sanitizer.NormalizeTitle(*in.Title)
		if !security.LengthBetween(title, 1, maxTitleLength) {
			return upd, model.NewInvalidRequestError(fmt.Sprintf("titleは1〜%d文字で指定してください", maxTitleLength))
		}
		upd.Title = &title
	}
	if in.Description != nil {
		desc := s.sanitizer.SanitizeText(*in.Description)
		if !security.LengthBetween(desc, 1, maxDescriptionLength) {
			return upd, model.NewInvalidRequestError(fmt.Sprintf("descriptionは1〜%d文字で指定してください", maxDescriptionLength))
		}
		upd.Description = &desc
	}
	upd.CategoryID = in.CategoryID
	upd.StatusID = in.StatusID
	return upd, nil
}

// checkReferences は指定されたカテゴリ・ステータスが存在するかを確認する。
func (s *Service) checkReferences(ctx context.Context, upd model.ItemUpdate) error {
	if id := upd.CategoryID; id != nil && *id != "" {
		ok, err := s.categories.Exists(ctx, *id)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewCategoryNotFoundError(*id)
		}
	}
	if id := upd.StatusID; id != nil && *id != "" {
		ok, err := s.statuses.Exists(ctx, *id)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewStatusNotFoundError(*id)
		}
	}
	return nil
}

// translateWriteError は確認後に参照先が削除された場合の外部キー違反を未検出エラーに変換する。
// どちらの参照が消えたかは再確認して決める。
func (s *Service) translateWriteError(ctx context.Context, upd model.ItemUpdate, err error, op string) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		if refErr := s.checkReferences(ctx, upd); refErr != nil {
			return refErr
		}
	}
	return fmt.Errorf("アイテムの%sに失敗しました: %w", op, err)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
