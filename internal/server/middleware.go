package server

import (
	"net/http"
	"strings"

	"github.com/snapdb/snapdb/internal/auth"
	apierrors "github.com/snapdb/snapdb/internal/errors"
	"github.com/snapdb/snapdb/internal/models"
)

// AuthMiddleware validates Bearer tokens and adds the claims to the context.
//
// Requests without an Authorization header proceed unauthenticated; routes
// that need a permission are gated by RequirePermission. A header that is
// present but invalid is rejected outright.
func AuthMiddleware(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeErrorResponse(w, http.StatusUnauthorized, apierrors.ErrUnauthorized, "Invalid authorization header")
				return
			}

			claims, err := manager.Parse(parts[1])
			if err != nil {
				writeErrorResponse(w, http.StatusUnauthorized, apierrors.ErrUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(models.WithClaims(r.Context(), claims)))
		})
	}
}

// RequirePermission ensures the request carries claims holding the given
// permission.
func RequirePermission(perm models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := models.ClaimsFromContext(r.Context())
			if claims == nil {
				writeErrorResponse(w, http.StatusUnauthorized, apierrors.ErrUnauthorized, "Unauthorized")
				return
			}
			if !claims.HasPermission(perm) {
				writeErrorResponse(w, http.StatusForbidden, apierrors.ErrForbidden, "Forbidden: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
