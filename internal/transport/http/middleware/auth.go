package middleware

import (
	"context"
	"net/http"

	"github.com/linkboard/linkboard/internal/constants"
	"github.com/linkboard/linkboard/internal/processing/auth"
	"github.com/linkboard/linkboard/pkg/httputils"
)

type contextKey int

const identityKey contextKey = iota

// SessionValidator resolves a session cookie value to an authenticated
// identity. The auth service implements it.
type SessionValidator interface {
	SessionFromToken(ctx context.Context, token string) (*auth.Identity, error)
}

// SessionMiddleware guards owner-scoped routes. A missing or invalid session
// cookie ends the request with a 401 envelope; on success the identity is
// stored in the request context.
func SessionMiddleware(validator SessionValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
				return
			}

			identity, err := validator.SessionFromToken(r.Context(), cookie.Value)
			if err != nil {
				httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity stored by
// SessionMiddleware, or false when the request is anonymous.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}
