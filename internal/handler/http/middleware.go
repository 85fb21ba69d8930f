package http

import (
	"context"
	"net/http"

	"github.com/vasiliy-maslov/online-shop/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession attaches the request's session (creating one when needed) to
// the request context.
func WithSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := manager.Ensure(w, r)
			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionContextKey).(*session.Session)
	return s
}

// RequireAuth rejects requests whose session has no authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromContext(r.Context())
		if s == nil || s.User == nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from anyone but an authenticated admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromContext(r.Context())
		if s == nil || s.User == nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !s.User.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
