// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/userman/internal/model"
)

// ErrDuplicateEmail はメールアドレスのユニーク制約違反を表す。
// 重複チェックはアプリケーション側で事前に行わず、
// ストレージの制約違反をこのエラーとして surface する（check-then-insertの競合を避ける）。
var ErrDuplicateEmail = errors.New("email already exists")

// ErrNotFound は更新・削除対象のユーザーが存在しないことを表す。
var ErrNotFound = errors.New("user not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、DB採番のID・タイムスタンプを反映して返す。
	// メールアドレスが重複している場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List はID昇順でlimit件、offset件スキップしてユーザー一覧を返す。
	List(ctx context.Context, limit, offset int) ([]*model.User, error)

	// Update はユーザーの全フィールドを上書き更新し、更新後の状態を返す。
	// 対象が存在しない場合はErrNotFound、メール重複の場合はErrDuplicateEmailを返す。
	Update(ctx context.Context, user *model.User) (*model.User, error)

	// Delete は指定IDのユーザーを物理削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id int64) error
}
