package middleware

import (
	"net/http"
	"time"
)

// HTTPMetrics はHTTPリクエストのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type HTTPMetrics interface {
	RecordHTTPRequest(statusCode int, duration time.Duration)
}

// NewMetricsMiddleware はリクエストのステータスコードと処理時間を記録するミドルウェアを返す。
func NewMetricsMiddleware(collector HTTPMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPRequest(rec.statusCode, time.Since(start))
		})
	}
}
