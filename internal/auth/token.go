// Package auth はJWTの発行・検証とログイン処理を提供する。
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の失敗種別。
// APIレスポンス上はすべて401に集約し、どの失敗かはクライアントに開示しない。
var (
	// ErrTokenExpired は有効期限切れを表す。
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalidSignature は署名検証の失敗を表す。
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	// ErrTokenMalformed はトークンとして解析できないことを表す。
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims はアクセストークンに含まれる署名済みペイロードを表す。
// sub（ユーザーID）、email、iat、expを保持する。発行後は不変。
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID はsubクレームをユーザーIDとして解釈して返す。
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return id, nil
}

// TokenService はHMAC-SHA256署名のJWTを発行・検証する。
// 状態を持たず、検証は秘密鍵・アルゴリズム・時刻のみに依存する。
// 秘密鍵とTTLはプロセス起動時に固定され、ローテーション機構は持たない。
type TokenService struct {
	secret []byte
	ttl    time.Duration

	// now はテストで時刻を差し替えるためのフック。
	now func() time.Time
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string, expireMinutes int) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    time.Duration(expireMinutes) * time.Minute,
		now:    time.Now,
	}
}

// Issue はユーザーIDとメールアドレスからアクセストークンを発行する。
func (s *TokenService) Issue(userID int64, email string) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 失敗はErrTokenExpired、ErrTokenInvalidSignature、ErrTokenMalformedのいずれかに分類する。
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenInvalidSignature
	default:
		return nil, ErrTokenMalformed
	}
}
