// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/hitoshi/userman/internal/model"
	"github.com/hitoshi/userman/internal/repository"
)

const (
	// minPasswordLength はパスワードの最小文字数。
	minPasswordLength = 8

	// 一覧取得のページネーション境界値。
	defaultListLimit = 50
	maxListLimit     = 100
)

// PasswordHasher はパスワードハッシュ化に必要なインターフェース。
// security.PasswordHasherの部分集合として定義する。
type PasswordHasher interface {
	Hash(raw string) (string, error)
}

// UserMetrics はユーザー操作のメトリクス記録インターフェース。
type UserMetrics interface {
	RecordUserCreated()
}

// UpdateParams はユーザー部分更新の入力を表す。
// nilのフィールドは変更しない。
type UpdateParams struct {
	Email    *string
	Password *string
	FullName *string
}

// Service はユーザーCRUDのサービス層。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	metrics  UserMetrics
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilを許容する（記録なしで動作する）。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, metrics UserMetrics) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		metrics:  metrics,
	}
}

// Create は新規ユーザーを作成する。
// メールアドレスは登録時には正規化しない（保存された値そのままで一意性が判定される）。
// 重複メールアドレスはストレージのユニーク制約経由でConflictとして返す。
func (s *Service) Create(ctx context.Context, email, password string, fullName *string) (*model.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	created, err := s.userRepo.Create(ctx, &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, model.NewEmailConflictError()
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordUserCreated()
	}
	slog.Info("ユーザーを作成しました",
		slog.Int64("user_id", created.ID),
	)

	return created, nil
}

// Get は指定IDのユーザーを取得する。
func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// List はユーザー一覧を返す。
// limitは[1, 100]にクランプし、offsetは0未満を0に切り上げる。
func (s *Service) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// DefaultListLimit は一覧取得のデフォルトlimitを返す。
func DefaultListLimit() int {
	return defaultListLimit
}

// Update はユーザーを部分更新する。
// paramsのnilフィールドは現在の値を維持する。パスワード指定時は再ハッシュする。
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*model.User, error) {
	if params.Email != nil {
		if err := validateEmail(*params.Email); err != nil {
			return nil, err
		}
	}
	if params.Password != nil {
		if err := validatePassword(*params.Password); err != nil {
			return nil, err
		}
	}

	current, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if current == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	if params.Email != nil {
		current.Email = *params.Email
	}
	if params.FullName != nil {
		current.FullName = params.FullName
	}
	if params.Password != nil {
		hash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
		}
		current.PasswordHash = hash
	}

	updated, err := s.userRepo.Update(ctx, current)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, model.NewEmailConflictError()
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewUserNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	slog.Info("ユーザーを更新しました",
		slog.Int64("user_id", id),
	)

	return updated, nil
}

// Delete は指定IDのユーザーを物理削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewUserNotFoundError(id)
	}
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("ユーザーを削除しました",
		slog.Int64("user_id", id),
	)

	return nil
}

// validateEmail はメールアドレスの形式を検証する。
func validateEmail(email string) error {
	if email == "" {
		return model.NewValidationError("メールアドレスは必須です")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	return nil
}

// validatePassword はパスワードの最小文字数を検証する。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return model.NewValidationError("パスワードは8文字以上で指定してください")
	}
	return nil
}
