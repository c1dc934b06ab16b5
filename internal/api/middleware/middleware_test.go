package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/visa-booking-website/internal/api/middleware"
	"github.com/dom/visa-booking-website/internal/domain"
	"github.com/dom/visa-booking-website/internal/logging"
	"github.com/dom/visa-booking-website/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	user *domain.User
	err  error
	seen string
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	f.seen = token
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		require.True(t, ok)
		w.Write([]byte(user.Email))
	})
}

func TestAuth(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "gate@example.com"}

	tests := []struct {
		name           string
		header         string
		authErr        error
		expectedStatus int
		expectedToken  string
	}{
		{
			name:           "valid bearer token",
			header:         "Bearer abc.def.ghi",
			expectedStatus: http.StatusOK,
			expectedToken:  "abc.def.ghi",
		},
		{
			name:           "scheme is case-insensitive",
			header:         "bearer abc.def.ghi",
			expectedStatus: http.StatusOK,
			expectedToken:  "abc.def.ghi",
		},
		{
			name:           "missing header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "basic scheme",
			header:         "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "token without scheme",
			header:         "abc.def.ghi",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rejected token",
			header:         "Bearer bad",
			authErr:        service.ErrUnauthorized,
			expectedStatus: http.StatusUnauthorized,
			expectedToken:  "bad",
		},
		{
			name:           "store failure is not a 401",
			header:         "Bearer abc.def.ghi",
			authErr:        errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedToken:  "abc.def.ghi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthenticator{user: user, err: tt.authErr}
			handler := middleware.Auth(auth, logging.Discard())(protectedHandler(t))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedToken, auth.seen)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, user.Email, rec.Body.String())
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestGetUser_Empty(t *testing.T) {
	_, ok := middleware.GetUser(context.Background())
	assert.False(t, ok)

	_, ok = middleware.GetUser(middleware.WithUser(context.Background(), nil))
	assert.False(t, ok)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := middleware.CORS("https://visa.example.com")(next)

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://visa.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("other methods pass through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})
}

func TestRequestLogger_OmitsHeaders(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "info", "json")

	handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("Authorization", "Bearer very-secret-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, "/api/v1/auth/login")
	assert.NotContains(t, out, "very-secret-token")
}
