package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	customjwt "github.com/magabrotheeeer/account-service/internal/lib/jwt"
)

// MockMaker реализует интерфейс jwt.Maker
type MockMaker struct {
	mock.Mock
}

func (m *MockMaker) GenerateToken(useruid, email string, roles []string) (string, error) {
	args := m.Called(useruid, email, roles)
	return args.String(0), args.Error(1)
}

func (m *MockMaker) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestJWTMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validClaims := &customjwt.CustomClaims{
		Email: "test@example.com",
		Roles: []string{"user"},
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject: "user-uid-1",
		},
	}

	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(*MockMaker)
		expectedStatus int
		expectNext     bool
	}{
		{
			name:       "валидный токен пропускается",
			authHeader: "Bearer valid.jwt.token",
			setupMock: func(m *MockMaker) {
				m.On("ParseToken", "valid.jwt.token").Return(validClaims, nil)
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "отсутствующий заголовок",
			authHeader:     "",
			setupMock:      func(_ *MockMaker) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "заголовок без префикса Bearer",
			authHeader:     "Token abc",
			setupMock:      func(_ *MockMaker) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "невалидный токен",
			authHeader: "Bearer broken.jwt.token",
			setupMock: func(m *MockMaker) {
				m.On("ParseToken", "broken.jwt.token").Return(nil, errors.New("token is expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker := new(MockMaker)
			tt.setupMock(maker)

			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				// контекст наполнен данными из claims
				assert.Equal(t, "user-uid-1", r.Context().Value(UserUID))
				assert.Equal(t, "test@example.com", r.Context().Value(UserEmail))
				assert.Equal(t, []string{"user"}, r.Context().Value(UserRoles))
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/users/user-uid-1", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			JWTMiddleware(maker, logger)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)

			maker.AssertExpectations(t)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		roles          any
		expectedStatus int
		expectNext     bool
	}{
		{name: "администратор пропускается", roles: []string{"user", "admin"}, expectedStatus: http.StatusOK, expectNext: true},
		{name: "обычный пользователь отклоняется", roles: []string{"user"}, expectedStatus: http.StatusForbidden},
		{name: "роли отсутствуют в контексте", roles: nil, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.roles != nil {
				req = req.WithContext(context.WithValue(req.Context(), UserRoles, tt.roles.([]string)))
			}
			w := httptest.NewRecorder()

			AdminOnlyMiddleware(logger)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}
