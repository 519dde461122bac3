// Package lookup はカテゴリとステータスの管理機能を提供する。
// どちらもタイトルのみを持つ参照テーブルで、種別ごとにServiceを1つ生成する。
package lookup

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

const maxTitleLength = 100

// Service はカテゴリまたはステータスのサービス層。
// 参照は認証済みユーザー全員、変更は管理者のみ。
type Service struct {
	repo      repository.LookupRepository
	guard     *auth.Guard
	sanitizer security.TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.LookupRepository, guard *auth.Guard, sanitizer security.TextSanitizer) *Service {
	return &Service{
		repo:      repo,
		guard:     guard,
		sanitizer: sanitizer,
	}
}

// Kind はこのServiceが扱う種別を返す。
func (s *Service) Kind() model.LookupKind {
	return s.repo.Kind()
}

// List は一覧を返す。
func (s *Service) List(ctx context.Context, page model.Page) ([]*model.Lookup, error) {
	list, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%s一覧の取得に失敗しました: %w", s.Kind(), err)
	}
	return list, nil
}

// Get は指定IDのレコードを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Lookup, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, s.Kind().NotFoundError(id)
	}
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%sの取得に失敗しました: %w", s.Kind(), err)
	}
	if found == nil {
		return nil, s.Kind().NotFoundError(id)
	}
	return found, nil
}

// Create はレコードを作成する。管理者のみ。
func (s *Service) Create(ctx context.Context, actor *model.User, title string) (*model.Lookup, error) {
	if _, err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	normalized, err := s.normalize(title)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, normalized)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, model.NewDuplicateTitleError(normalized)
	}
	if err != nil {
		return nil, fmt.Errorf("%sの作成に失敗しました: %w", s.Kind(), err)
	}

	slog.Info("lookup created",
		slog.String("kind", string(s.Kind())),
		slog.String("id", created.ID),
		slog.String("created_by", actor.ID),
	)
	return created, nil
}

// Update はタイトルを変更する。管理者のみ。
func (s *Service) Update(ctx context.Context, actor *model.User, id, title string) (*model.Lookup, error) {
	if _, err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	normalized, err := s.normalize(title)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, s.Kind().NotFoundError(id)
	}

	updated, err := s.repo.Update(ctx, id, normalized)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, model.NewDuplicateTitleError(normalized)
	}
	if err != nil {
		return nil, fmt.Errorf("%sの更新に失敗しました: %w", s.Kind(), err)
	}
	if updated == nil {
		return nil, s.Kind().NotFoundError(id)
	}
	return updated, nil
}

// Delete はレコードを削除する。管理者のみ。
// 参照しているitemsの外部キーはストア側でNULLになる。
func (s *Service) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.guard.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return s.Kind().NotFoundError(id)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%sの削除に失敗しました: %w", s.Kind(), err)
	}
	if !deleted {
		return s.Kind().NotFoundError(id)
	}

	slog.Info("lookup deleted",
		slog.String("kind", string(s.Kind())),
		slog.String("id", id),
		slog.String("deleted_by", actor.ID),
	)
	return nil
}

// Exists は指定IDのレコードが存在するかを返す。アイテムの参照検証に使用する。
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%sの取得に失敗しました: %w", s.Kind(), err)
	}
	return found != nil, nil
}

func (s *Service) normalize(title string) (string, error) {
	normalized := s.sanitizer.NormalizeTitle(title)
	if !security.LengthBetween(normalized, 1, maxTitleLength) {
		return "", model.NewInvalidRequestError(fmt.Sprintf("titleは1〜%d文字で指定してください", maxTitleLength))
	}
	return normalized, nil
}
