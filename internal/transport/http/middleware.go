package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/habitforge/mfa-service/internal/identity"
)

type contextKey struct{ name string }

var identityKey = contextKey{name: "identity"}

// identityFrom returns the authenticated identity stored by the bearer
// middleware.
func identityFrom(ctx context.Context) (*identity.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*identity.Identity)
	return ident, ok
}

// bearerAuth resolves the Authorization header through the identity
// provider and rejects the request with 401 when it cannot.
func bearerAuth(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			ident, err := provider.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
