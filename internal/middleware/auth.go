package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"redweb-backend/internal/auth"
	"redweb-backend/pkg/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth validates the bearer token and adds the caller's identity to the
// request context. A missing or malformed header is 401; a token that fails
// validation is 403.
func Auth(tokens *auth.Manager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				logger.Debug("❌ no bearer token", zap.String("path", r.URL.Path))
				utils.RespondMessage(w, http.StatusUnauthorized, "Access token required")
				return
			}

			id, err := tokens.ValidateToken(strings.TrimSpace(tokenString))
			if err != nil {
				logger.Info("❌ invalid token", zap.String("path", r.URL.Path), zap.Error(err))
				utils.RespondMessage(w, http.StatusForbidden, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole checks the caller's role (must be used after Auth)
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetUserFromContext(r)
			if !ok {
				utils.RespondMessage(w, http.StatusUnauthorized, "Access token required")
				return
			}
			if id.Role != role {
				utils.RespondMessage(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts the caller's identity from the request context
func GetUserFromContext(r *http.Request) (auth.Identity, bool) {
	id, ok := r.Context().Value(UserContextKey).(auth.Identity)
	return id, ok
}
