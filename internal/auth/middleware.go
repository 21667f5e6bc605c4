// Package auth carries the request-scoped authorization gate: it turns a
// bearer token into a user (memberships preloaded) on the request
// context. It is a pure function of the token and current store state;
// token re-acquisition is the caller's responsibility.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/foyerhq/foyer/internal/apperror"
	"github.com/foyerhq/foyer/internal/user"
)

type contextKey int

const userContextKey contextKey = iota

// ContextWithUser returns a new context carrying the given user.
func ContextWithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext extracts the user from the context, or nil if not present.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userContextKey).(*user.User)
	return u
}

// SessionResolver resolves a bearer token to its user.
type SessionResolver interface {
	ResolveToken(ctx context.Context, token string) (*user.User, error)
}

// RequireUser returns middleware that authenticates requests using a
// bearer token in the Authorization header. On success the resolved user
// is injected into the request context.
func RequireUser(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				writeGateError(w, http.StatusUnauthorized, "authorization token required")
				return
			}

			u, err := sessions.ResolveToken(r.Context(), token)
			if err != nil {
				switch apperror.KindOf(err) {
				case apperror.KindNotFound:
					writeGateError(w, http.StatusNotFound, "user not found")
				case apperror.KindAuthentication:
					writeGateError(w, http.StatusUnauthorized, "invalid or expired token")
				default:
					writeGateError(w, http.StatusInternalServerError, "something went wrong")
				}
				return
			}

			ctx := ContextWithUser(r.Context(), u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

type gateError struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func writeGateError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(gateError{
		Status:     http.StatusText(statusCode),
		Message:    message,
		StatusCode: statusCode,
	})
}
