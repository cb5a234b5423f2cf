package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging returns a middleware that logs every request. It logs the method,
// route pattern, status, user ID and duration. Server errors log at ERROR,
// client errors at WARN.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if r.Pattern != "" {
				attrs = append(attrs, "route", r.Pattern)
			}
			if rec.userID != 0 {
				attrs = append(attrs, "user_id", rec.userID)
			}

			switch {
			case rec.status >= 500:
				logger.Error("HTTP error", attrs...)
			case rec.status >= 400:
				logger.Warn("HTTP error", attrs...)
			default:
				logger.Info("HTTP ok", attrs...)
			}
		})
	}
}
