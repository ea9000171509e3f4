package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kruai/backend/internal/httputil"
	"github.com/kruai/backend/internal/models"
)

type userIDKey struct{}

// TokenParser verifies a bearer token and returns the profile id.
type TokenParser interface {
	Parse(token string) (int64, error)
}

// AuthMiddleware rejects requests without a valid profile token.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authorization header required", Kind: "unauthorized"})
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				httputil.WriteJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token format", Kind: "unauthorized"})
				return
			}

			userID, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				httputil.WriteJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token", Kind: "unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext returns the authenticated profile id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}
