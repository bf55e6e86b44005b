// Package security はパスワードの一方向ハッシュ化と照合を提供する。
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はbcryptによるパスワードのハッシュ化と照合を行う。
// ハッシュは呼び出しごとに新しいソルトで生成されるため、同じ平文でも出力は毎回異なる。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costがbcryptの有効範囲外の場合はデフォルトコストを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードをbcryptでハッシュ化する。
// エラーは内部的な失敗時のみ発生する。平文はログにも戻り値にも残さない。
func (h *PasswordHasher) Hash(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文パスワードとハッシュの一致を検証する。
// ハッシュが不正な形式であってもエラーは返さず、falseを返す。
func (h *PasswordHasher) Verify(raw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}
