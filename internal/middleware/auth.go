// Package middleware holds the authentication gate for protected routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mkozhevn/photocards/internal/apperr"
)

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier verifies a raw token and returns the embedded user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid token in the Authorization
// header and never invokes the downstream handler for them. On success the
// caller's id is available via UserID.
func RequireAuth(tokens TokenVerifier, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				apperr.Respond(w, log, apperr.New(apperr.Unauthorized, "authorization required"))
				return
			}
			raw = strings.TrimPrefix(raw, "Bearer ")

			userID, err := tokens.Verify(raw)
			if err != nil {
				apperr.Respond(w, log, apperr.Wrap(apperr.Unauthorized, "authorization required", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a context carrying the authenticated caller's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated caller's id, or "" outside RequireAuth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
