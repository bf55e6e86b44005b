// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/userman/internal/auth"
)

// bearerPrefix はAuthorizationヘッダーの要求形式。
// スキーム名は大文字小文字を区別し、区切りはスペース1個のみ許容する。
const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストに検証済みクレームを格納するためのキー。
var claimsContextKey = contextKey("claims")

// TokenVerifier はトークン検証に必要なインターフェース。
// auth.TokenServiceの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// UnauthorizedWriter は401レスポンスの書き込み関数。
// どの検証失敗であっても同一のレスポンスを返し、失敗理由を漏らさない。
type UnauthorizedWriter func(w http.ResponseWriter)

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// ヘッダーが存在しない、または`Bearer <token>`形式でない場合は
// 検証器を呼ばずに即座に401を返す。
// 検証成功時はクレームをリクエストコンテキストに注入する。
// トークンの値はログに出力しない。
func NewAuthMiddleware(verifier TokenVerifier, writeUnauthorized UnauthorizedWriter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. ヘッダー形式の検査（検証器呼び出し前に弾く）
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || token == "" {
				writeUnauthorized(w)
				return
			}

			// 2. トークンの検証
			claims, err := verifier.Verify(token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			// 3. 検証済みクレームをコンテキストに注入
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext はリクエストコンテキストから検証済みクレームを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}

// ContextWithClaims はコンテキストにクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// SubjectFromContext はコンテキストのクレームから認証済みユーザーIDを取得する。
func SubjectFromContext(ctx context.Context) (int64, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}
