package middlewarectx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ottmanager/subscription-tracker/internal/models"
)

type AuthMock struct{ mock.Mock }

func (m *AuthMock) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	user := &models.User{UID: "uid-1", Username: "alice", Role: "user"}

	tests := []struct {
		name       string
		authHeader string
		setupMocks func(a *AuthMock)
		wantStatus int
		wantUser   bool
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good-token",
			setupMocks: func(a *AuthMock) {
				a.On("ValidateToken", mock.Anything, "good-token").Return(user, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
		{
			name:       "missing header",
			authHeader: "",
			setupMocks: func(_ *AuthMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic abc",
			setupMocks: func(_ *AuthMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad-token",
			setupMocks: func(a *AuthMock) {
				a.On("ValidateToken", mock.Anything, "bad-token").
					Return(nil, errors.New("token is invalid")).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(AuthMock)
			tt.setupMocks(auth)

			var gotUser *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := JWTMiddleware(auth, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/list", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUser {
				assert.Equal(t, user, gotUser)
			}

			auth.AssertExpectations(t)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *models.User
		minRole    string
		wantStatus int
	}{
		{
			name:       "admin allowed for admin routes",
			user:       &models.User{Role: "admin"},
			minRole:    "admin",
			wantStatus: http.StatusOK,
		},
		{
			name:       "owner passes admin check",
			user:       &models.User{Role: "owner"},
			minRole:    "admin",
			wantStatus: http.StatusOK,
		},
		{
			name:       "user denied for admin routes",
			user:       &models.User{Role: "user"},
			minRole:    "admin",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no user in context",
			user:       nil,
			minRole:    "free",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireRole(tt.minRole, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/promote", nil)
			if tt.user != nil {
				req = req.WithContext(context.WithValue(req.Context(), CurrentUser, tt.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(1, 2, newNoopLogger())(next)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// burst на два запроса, третий упирается в лимит
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
