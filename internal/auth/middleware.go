package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/model"
)

// contextKey is unexported so no other package can read or shadow our values.
type contextKey string

const userKey contextKey = "user"

// SessionSource yields the signed-in user, or nil. *store.SessionStore implements it.
type SessionSource interface {
	Current() *model.User
}

// LoadSession puts the current session user (if any) into the request context.
// It never rejects a request; RequireSession and RequireAdmin do that.
func LoadSession(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := sessions.Current(); user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession returns 401 when no user is signed in.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns 401 without a session and 403 for anyone but the admin.
func RequireAdmin(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
				return
			}
			if !policy.IsAdmin(user) {
				writeJSONError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the user stored by LoadSession.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

func writeJSONError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apperror.Response{Error: errType, Message: message}); err != nil {
		slog.Error("failed to encode JSON error", slog.String("error", err.Error()))
	}
}
