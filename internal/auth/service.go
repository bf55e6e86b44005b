package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/userman/internal/model"
)

// UserFinder はログイン処理に必要なユーザー検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// PasswordVerifier は資格情報照合に必要なインターフェース。
// security.PasswordHasherの部分集合として定義する。
type PasswordVerifier interface {
	Verify(raw, hashed string) bool
}

// LoginMetrics はログイン試行のメトリクス記録インターフェース。
type LoginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// Service は認証に関するビジネスロジックを提供する。
// 資格情報の照合とアクセストークンの発行を行う。
type Service struct {
	userRepo UserFinder
	verifier PasswordVerifier
	tokens   *TokenService
	metrics  LoginMetrics
}

// NewService はServiceを生成する。
// metricsはnilを許容する（記録なしで動作する）。
func NewService(
	userRepo UserFinder,
	verifier PasswordVerifier,
	tokens *TokenService,
	metrics LoginMetrics,
) *Service {
	return &Service{
		userRepo: userRepo,
		verifier: verifier,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// Login はメールアドレスとパスワードを照合し、アクセストークンを発行する。
// ユーザー不在とパスワード不一致は区別せず、同一のUnauthorizedエラーを返す。
// メールアドレスは照合前に小文字化する（登録時は正規化しない点に注意）。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	if user == nil || !s.verifier.Verify(password, user.PasswordHash) {
		s.recordFailure()
		return "", model.NewUnauthorizedError()
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	s.recordSuccess()
	slog.Info("ログインに成功しました",
		slog.Int64("user_id", user.ID),
	)

	return token, nil
}

func (s *Service) recordSuccess() {
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
}

func (s *Service) recordFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}
