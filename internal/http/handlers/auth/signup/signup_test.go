package signup

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// MockService реализует интерфейс signup.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Signup(ctx context.Context, req models.DummyUser) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func TestSignupHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"firstname":"Ivan","lastname":"Petrov","email":"ivan@example.com","password":"supersecret","otp":"123456"}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, mock.MatchedBy(func(u models.DummyUser) bool {
					return u.Email == "ivan@example.com" && u.OTP == "123456"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `user created successfully`,
		},
		{
			name: "email уже занят",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, mock.Anything).Return(errs.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `email is already registered`,
		},
		{
			name: "просроченный код",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, mock.Anything).Return(errs.ErrExpired)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `verification code has expired`,
		},
		{
			name: "неизвестный код",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Signup", mock.Anything, mock.Anything).Return(errs.ErrNotFound)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid verification code`,
		},
		{
			name:           "слишком короткий код не проходит валидацию",
			body:           `{"firstname":"Ivan","lastname":"Petrov","email":"ivan@example.com","password":"supersecret","otp":"123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field OTP has wrong length`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
