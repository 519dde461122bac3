// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// TokenIssuer はサインアップ時のトークン発行インターフェース。
type TokenIssuer interface {
	IssuePair(userID string) (*model.TokenPair, error)
}

// CreateInput はユーザー作成の入力。
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateInput はユーザー更新の入力。nilのフィールドは変更しない。
// Roleは管理者による更新でのみ受け付ける。
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Role      *model.Role
}

// Service はユーザー管理のサービス層。
// 呼び出し元のユーザー（actor）はミドルウェアで解決済みのものを受け取る。
type Service struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
	guard    *auth.Guard
	tokens   TokenIssuer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
	guard *auth.Guard,
	tokens TokenIssuer,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		guard:    guard,
		tokens:   tokens,
	}
}

// List はユーザー一覧を返す。管理者のみ。
func (s *Service) List(ctx context.Context, actor *model.User, page model.Page) ([]*model.User, error) {
	if _, err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Get は指定IDのユーザーを返す。本人または管理者のみ。
func (s *Service) Get(ctx context.Context, actor *model.User, id string) (*model.User, error) {
	if err := s.guard.RequireOwnerOrAdmin(actor, id); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Create は管理者がuserロールのユーザーを作成する。
func (s *Service) Create(ctx context.Context, actor *model.User, in CreateInput) (*model.User, error) {
	if _, err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	created, err := s.insert(ctx, in)
	if err != nil {
		return nil, err
	}
	slog.Info("user created",
		slog.String("user_id", created.ID),
		slog.String("created_by", actor.ID),
	)
	return created, nil
}

// Signup は未認証の利用者がuserロールで登録し、トークンの組を受け取る。
func (s *Service) Signup(ctx context.Context, in CreateInput) (*model.User, *model.TokenPair, error) {
	created, err := s.insert(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(created.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user signed up", slog.String("user_id", created.ID))
	return created, pair, nil
}

// UpdateMe は本人のプロフィールを更新する。ロールは変更できない。
func (s *Service) UpdateMe(ctx context.Context, actor *model.User, in UpdateInput) (*model.User, error) {
	if actor == nil {
		return nil, model.NewUserNotFoundError()
	}
	if in.Role != nil {
		return nil, model.NewInvalidRequestError("自分自身のロールは変更できません")
	}
	return s.update(ctx, actor.ID, in)
}

// AdminUpdate は管理者が任意のユーザーを更新する。ロールも変更できる。
func (s *Service) AdminUpdate(ctx context.Context, actor *model.User, id string, in UpdateInput) (*model.User, error) {
	if _, err := s.guard.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, model.NewInvalidRequestError(fmt.Sprintf("不明なロールです: %s", *in.Role))
	}
	return s.update(ctx, id, in)
}

// Delete は管理者がユーザーを削除する。自分自身は削除できない。
// 所有するitemsはストア側でCASCADE削除される。
func (s *Service) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.guard.RequireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return model.NewSelfDeleteForbiddenError()
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.NewUserNotFoundError()
	}

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewUserNotFoundError()
	}

	slog.Info("user deleted",
		slog.String("user_id", id),
		slog.String("deleted_by", actor.ID),
	)
	return nil
}

// EnsureAdmin は指定メールアドレスの管理者が存在しなければ作成する。
// 同じメールアドレスのユーザーが既にいる場合は何もしない。
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = model.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	created, err := s.userRepo.InsertIfEmailAbsent(ctx, &model.User{
		ID:             uuid.New().String(),
		FirstName:      "Admin",
		LastName:       "User",
		Email:          email,
		HashedPassword: hashed,
		Role:           model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("管理者ユーザーの作成に失敗しました: %w", err)
	}

	if created {
		slog.Info("admin user bootstrapped", slog.String("email", email))
	} else {
		slog.Debug("admin user already exists", slog.String("email", email))
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewUserNotFoundError()
	}
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}
	return u, nil
}

func (s *Service) insert(ctx context.Context, in CreateInput) (*model.User, error) {
	email := model.NormalizeEmail(in.Email)
	if err := validateFirstName(in.FirstName); err != nil {
		return nil, err
	}
	if err := validateLastName(in.LastName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.Insert(ctx, &model.User{
		ID:             uuid.New().String(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          email,
		HashedPassword: hashed,
		Role:           model.RoleUser,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, model.NewDuplicateEmailError()
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}
	return created, nil
}

func (s *Service) update(ctx context.Context, id string, in UpdateInput) (*model.User, error) {
	var upd model.UserUpdate

	if in.FirstName != nil {
		if err := validateFirstName(*in.FirstName); err != nil {
			return nil, err
		}
		upd.FirstName = in.FirstName
	}
	if in.LastName != nil {
		if err := validateLastName(*in.LastName); err != nil {
			return nil, err
		}
		upd.LastName = in.LastName
	}
	if in.Email != nil {
		email := model.NormalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		upd.Email = &email
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.HashedPassword = &hashed
	}
	upd.Role = in.Role

	// 変更がなければ現在の値を返す
	if upd.IsEmpty() {
		return s.find(ctx, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewUserNotFoundError()
	}

	updated, err := s.userRepo.Update(ctx, id, upd)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, model.NewDuplicateEmailError()
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewUserNotFoundError()
	}
	return updated, nil
}

func validateFirstName(v string) error {
	if !security.LengthBetween(v, 3, 100) {
		return model.NewInvalidRequestError("first_nameは3〜100文字で指定してください")
	}
	return nil
}

func validateLastName(v string) error {
	if !security.LengthBetween(v, 3, 150) {
		return model.NewInvalidRequestError("last_nameは3〜150文字で指定してください")
	}
	return nil
}

// validateEmail は正規化済みメールアドレスを検証する。
// 表示名付きの形式（"Name <a@b>"）は受け付けない。
func validateEmail(v string) error {
	if !security.LengthBetween(v, 5, 150) {
		return model.NewInvalidRequestError("emailは5〜150文字で指定してください")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return model.NewInvalidRequestError("emailの形式が正しくありません")
	}
	return nil
}

func validatePassword(v string) error {
	if len(v) == 0 || len(v) > auth.MaxPasswordBytes {
		return model.NewInvalidRequestError("passwordは1〜72バイトで指定してください")
	}
	return nil
}
