package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/errs"
	customjwt "github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/password"
	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

// Мок для TokenManager
type TokenManagerMock struct {
	mock.Mock
}

func (m *TokenManagerMock) Issue(ctx context.Context, email, subject string) (string, error) {
	args := m.Called(ctx, email, subject)
	return args.String(0), args.Error(1)
}

func (m *TokenManagerMock) Lookup(ctx context.Context, token string) (*models.Token, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Token), args.Error(1)
}

func (m *TokenManagerMock) Verify(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(useruid, email string, roles []string) (string, error) {
	args := m.Called(useruid, email, roles)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	testUser := &models.User{
		UID:          "user-uid-1",
		Email:        "test@example.com",
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "user-uid-1", "test@example.com", []string{"user"}).
					Return("signed.jwt.token", nil).Once()
			},
			wantToken: "signed.jwt.token",
		},
		{
			name:     "unknown email yields generic error",
			email:    "nobody@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").
					Return(nil, errs.ErrNotFound).Once()
			},
			wantErr: errs.ErrInvalidCredentials,
		},
		{
			name:     "wrong password yields generic error",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "test@example.com").Return(testUser, nil).Once()
			},
			wantErr: errs.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tokens := new(TokenManagerMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, tokens, jwtMock, newTestLogger())

			tt.setupMocks(repo, jwtMock)

			user, token, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, testUser.UID, user.UID)
				// хэш пароля не попадает в ответ
				assert.Equal(t, testUser.Email, user.Email)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ForgotPassword(t *testing.T) {
	repo := new(UserRepoMock)
	tokens := new(TokenManagerMock)
	jwtMock := new(JwtMakerMock)
	svc := services.NewAuthService(repo, tokens, jwtMock, newTestLogger())

	repo.On("GetUserByEmail", mock.Anything, "test@example.com").
		Return(&models.User{UID: "user-uid-1", Email: "test@example.com"}, nil).Once()
	tokens.On("Issue", mock.Anything, "test@example.com", "forgot password").
		Return("123456", nil).Once()

	err := svc.ForgotPassword(context.Background(), "test@example.com")
	assert.NoError(t, err)

	repo.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestAuthService_ForgotPassword_UnknownUser(t *testing.T) {
	repo := new(UserRepoMock)
	tokens := new(TokenManagerMock)
	jwtMock := new(JwtMakerMock)
	svc := services.NewAuthService(repo, tokens, jwtMock, newTestLogger())

	repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
		Return(nil, errs.ErrNotFound).Once()

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ResetPassword(t *testing.T) {
	repo := new(UserRepoMock)
	tokens := new(TokenManagerMock)
	jwtMock := new(JwtMakerMock)
	svc := services.NewAuthService(repo, tokens, jwtMock, newTestLogger())

	record := &models.Token{
		Token:     "123456",
		Subject:   "forgot password",
		Email:     "test@example.com",
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}

	tokens.On("Lookup", mock.Anything, "123456").Return(record, nil).Once()
	tokens.On("Verify", mock.Anything, "123456").Return(true, nil).Once()
	repo.On("UpdateUserPassword", mock.Anything, "test@example.com", mock.MatchedBy(func(hash string) bool {
		return password.Verify(hash, "newsecret")
	})).Return(nil).Once()

	err := svc.ResetPassword(context.Background(), "123456", "newsecret")
	assert.NoError(t, err)

	repo.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestAuthService_ResetPassword_ExpiredCode(t *testing.T) {
	repo := new(UserRepoMock)
	tokens := new(TokenManagerMock)
	jwtMock := new(JwtMakerMock)
	svc := services.NewAuthService(repo, tokens, jwtMock, newTestLogger())

	record := &models.Token{
		Token:     "123456",
		Email:     "test@example.com",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}

	tokens.On("Lookup", mock.Anything, "123456").Return(record, nil).Once()
	tokens.On("Verify", mock.Anything, "123456").Return(false, errs.ErrExpired).Once()

	err := svc.ResetPassword(context.Background(), "123456", "newsecret")
	assert.ErrorIs(t, err, errs.ErrExpired)
	repo.AssertNotCalled(t, "UpdateUserPassword", mock.Anything, mock.Anything, mock.Anything)
}
