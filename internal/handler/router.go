package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/userman/internal/middleware"
	"github.com/hitoshi/userman/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	TokenVerifier     middleware.TokenVerifier
	HTTPMetrics       middleware.HTTPMetrics // nil可（記録なし）

	// ハンドラー依存
	HealthChecker  HealthChecker
	MetricsHandler http.Handler // nil可（/metricsを公開しない）
	UserService    UserServiceInterface
	AuthService    AuthServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → Logging → SecurityHeaders → CORS → Metrics
//
// 認証が必要なのはPATCH/DELETE /api/v1/users/{id}のみで、
// Bearerトークンガードをルートグループ単位で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	healthHandler := NewHealthHandler(deps.HealthChecker)
	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/", userHandler.Create)
		r.Get("/", userHandler.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)

			// --- 認証が必要なルート ---
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, writeUnauthorized))
				r.Patch("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
			})
		})
	})

	return r
}

// writeUnauthorized は認証ガードの401レスポンスを統一エラーフォーマットで書き込む。
// 失敗理由（期限切れ・署名不正・形式不正）は区別せず同一レスポンスを返す。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}
