package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs every request with its method, path, status, user and
// duration. Server errors log at warn level.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		userID, _ := GetUserID(r.Context()) // zero if pre-identity
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"user_id", userID,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		if ww.Status() >= http.StatusInternalServerError {
			slog.Warn("request failed", attrs...)
		} else {
			slog.Info("request ok", attrs...)
		}
	})
}
