// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashには平文パスワードではなくbcryptハッシュのみを保持する。
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
