package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/session"
)

// SessionMiddleware authenticates requests against the session provider.
type SessionMiddleware struct {
	sessions session.Provider
}

func NewSessionMiddleware(sessions session.Provider) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the account authenticated by the middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// Authenticate validates the bearer token and adds the account to the context
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		user, err := m.sessions.Verify(r.Context(), token)
		if err != nil {
			handleError(w, errors.NewAuthError("invalid token", err))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:6]) == "BEARER" {
		return bearer[7:]
	}
	return ""
}

func handleError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}
