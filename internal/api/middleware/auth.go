package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dom/visa-booking-website/internal/api/respond"
	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/service"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type contextKey struct{}

// Authenticator resolves the user behind a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth is the access gate for protected routes. It runs four checks in order
// (header present, bearer scheme, token valid, user exists) and answers 401
// with the same body for each failure. Store outages answer 500.
func Auth(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reqLog := log.With("request_id", chiMiddleware.GetReqID(ctx))

			tokenString, reason := bearerToken(r.Header.Get("Authorization"))
			if reason != "" {
				reqLog.DebugContext(ctx, "request rejected", "reason", reason)
				respond.Unauthorized(w)
				return
			}

			user, err := auth.Authenticate(ctx, tokenString)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					reqLog.DebugContext(ctx, "request rejected", "reason", "token or user invalid")
					respond.Unauthorized(w)
					return
				}
				reqLog.ErrorContext(ctx, "authenticate failed", "error", err)
				respond.Internal(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, tokenString, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization header format"
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", "empty token"
	}
	return tokenString, ""
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// GetUser returns the user resolved by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*domain.User)
	return user, ok && user != nil
}
