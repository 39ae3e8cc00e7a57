package middleware

import (
	"context"
	"net/http"

	"github.com/glowupgrow/terrarium-api/internal/api/respond"
	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/observability"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth admits requests carrying a valid session cookie for an existing user
// and attaches that user to the request context. Every rejection is the same
// 403 so callers cannot tell a bad token from a deleted account.
func Auth(authenticator Authenticator, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.TokenFromRequest(r)
			if !ok {
				metrics.RecordAuthFailure(observability.ReasonNoSession)
				respond.Error(w, r, apperr.Unauthorized(observability.ReasonNoSession))
				return
			}

			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by Auth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}
