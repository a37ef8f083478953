package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/Bessima/quicksms/internal/handlers"
)

// AuthMiddleware lets through operators holding a valid access token.
func AuthMiddleware(authHandler *handlers.AuthHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			cookie, err := r.Cookie("access_token")
			if err == nil {
				tokenString = cookie.Value
			} else {
				tokenString = handlers.BearerToken(r)
			}

			if tokenString == "" {
				http.Error(w, "Authorization token required", http.StatusUnauthorized)
				return
			}

			claims, err := authHandler.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			operator, err := authHandler.Operators.Get(r.Context(), claims.AccountID)
			if err != nil || operator == nil {
				http.Error(w, "Operator not found", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), handlers.OperatorContextKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServiceTokenMiddleware lets through the front-end, which presents the
// shared API token as a bearer token.
func ServiceTokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := handlers.BearerToken(r)
			if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				http.Error(w, "Invalid service token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
