package middleware

import (
	"context"
	"net/http"
	"strings"
)

type key string

// UsernameKey carries the resolved identity through the request context.
const UsernameKey key = "username"

// IdentityResolver turns a bearer token into a username. The auth.Guard
// satisfies this; it rejects forged, expired, and orphaned tokens alike.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (string, error)
}

// JWTAuth requires a valid Bearer token and stores the resolved username in
// the request context for handlers to pick up with GetUsername.
func JWTAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader || tokenStr == "" {
				unauthorized(w, "invalid authorization header")
				return
			}

			username, err := resolver.ResolveIdentity(r.Context(), tokenStr)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUsername returns the identity stored by JWTAuth, if any.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
