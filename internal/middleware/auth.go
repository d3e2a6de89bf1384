package middleware

import (
	"context"
	"net/http"

	"github.com/mfrancke/seatly/internal/models"
	pkghttp "github.com/mfrancke/seatly/pkg/http"
)

type contextKey string

const userContextKey contextKey = "user"

// SessionVerifier resolves bearer tokens to users.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// RequireSession rejects requests without a valid session token and puts
// the resolved user on the request context.
func RequireSession(sessions SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := pkghttp.BearerToken(r)
			if token == "" {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			user, err := sessions.Verify(r.Context(), token)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose user lacks one of the
// given roles. Must run after RequireSession.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, "Insufficient permissions")
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
