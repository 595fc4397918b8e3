package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rwaseem/divvy/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the requesting user ID
	UserIDKey ContextKey = "user_id"
)

// Identity resolves the requesting user from the X-User-ID header and puts
// it on the request context. Requests without a valid header are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			response.Unauthorized(w, "X-User-ID header required")
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID < 1 {
			response.Unauthorized(w, "Invalid X-User-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
