package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{
		checker: checker,
	}
}

// Check はヘルスチェックを処理する。
// GET /health
// DB疎通が取れない場合は503を返す。
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
