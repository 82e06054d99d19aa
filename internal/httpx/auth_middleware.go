package httpx

import (
	"context"
	"net/http"
	"strings"

	"librarydesk/internal/identity"
	"librarydesk/internal/platform/crypto"
)

// BlacklistRepository reports whether a token id was revoked by logout.
type BlacklistRepository interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware requires a valid bearer token and stores the resulting
// principal in the request context.
func AuthMiddleware(secret string, blacklistRepo BlacklistRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := crypto.ParseToken(secret, token)
			if err != nil || claims.Sub == "" {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}

			if blacklistRepo != nil {
				isBlacklisted, err := blacklistRepo.IsBlacklisted(r.Context(), claims.ID)
				if err != nil || isBlacklisted {
					JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
					return
				}
			}

			ctx := identity.WithPrincipal(r.Context(), identity.Principal{ID: claims.Sub, Roles: claims.Roles})
			ctx = contextWithTokenID(ctx, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthError writes 401 for anonymous callers and 403 for authenticated
// callers missing a role.
func AuthError(w http.ResponseWriter, r *http.Request) {
	if !PrincipalFrom(r).IsAuthenticated() {
		JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}
	JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
}
