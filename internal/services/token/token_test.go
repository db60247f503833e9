package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/token"
)

// Мок для TokenRepository
type TokenRepoMock struct {
	mock.Mock
}

func (m *TokenRepoMock) SaveToken(ctx context.Context, token models.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenRepoMock) GetToken(ctx context.Context, token string) (*models.Token, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Token), args.Error(1)
}

func (m *TokenRepoMock) ConsumeToken(ctx context.Context, token string, now time.Time) (*models.Token, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Token), args.Error(1)
}

func (m *TokenRepoMock) ListTokens(ctx context.Context, emailFilter string, limit, offset int) ([]*models.Token, error) {
	args := m.Called(ctx, emailFilter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Token), args.Error(1)
}

func (m *TokenRepoMock) CountTokens(ctx context.Context, emailFilter string) (int, error) {
	args := m.Called(ctx, emailFilter)
	return args.Int(0), args.Error(1)
}

// Мок для Notifier
type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) SendEmail(msg models.EmailMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTokenService_Issue(t *testing.T) {
	repo := new(TokenRepoMock)
	notifier := new(NotifierMock)
	svc := services.NewTokenService(repo, notifier, newTestLogger(), 10*time.Minute)

	repo.On("SaveToken", mock.Anything, mock.MatchedBy(func(tok models.Token) bool {
		return tok.Email == "user@example.com" &&
			tok.Subject == "verify email" &&
			len(tok.Token) == 6
	})).Return(nil).Once()
	notifier.On("SendEmail", mock.MatchedBy(func(msg models.EmailMessage) bool {
		return msg.Email == "user@example.com" && msg.Subject == "Your one-time code"
	})).Return(nil).Once()

	code, err := svc.Issue(context.Background(), "user@example.com", "verify email")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestTokenService_Issue_RetryOnCollision(t *testing.T) {
	repo := new(TokenRepoMock)
	notifier := new(NotifierMock)
	svc := services.NewTokenService(repo, notifier, newTestLogger(), 10*time.Minute)

	// первая попытка натыкается на уже существующий код, вторая проходит
	repo.On("SaveToken", mock.Anything, mock.Anything).Return(errs.ErrConflict).Once()
	repo.On("SaveToken", mock.Anything, mock.Anything).Return(nil).Once()
	notifier.On("SendEmail", mock.Anything).Return(nil).Once()

	code, err := svc.Issue(context.Background(), "user@example.com", "verify email")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	repo.AssertExpectations(t)
}

func TestTokenService_Issue_ExhaustedAttempts(t *testing.T) {
	repo := new(TokenRepoMock)
	notifier := new(NotifierMock)
	svc := services.NewTokenService(repo, notifier, newTestLogger(), 10*time.Minute)

	repo.On("SaveToken", mock.Anything, mock.Anything).Return(errs.ErrConflict).Times(5)

	_, err := svc.Issue(context.Background(), "user@example.com", "verify email")
	assert.Error(t, err)

	repo.AssertExpectations(t)
	notifier.AssertNotCalled(t, "SendEmail", mock.Anything)
}

func TestTokenService_Issue_NotifierFailureDoesNotFail(t *testing.T) {
	repo := new(TokenRepoMock)
	notifier := new(NotifierMock)
	svc := services.NewTokenService(repo, notifier, newTestLogger(), 10*time.Minute)

	repo.On("SaveToken", mock.Anything, mock.Anything).Return(nil).Once()
	notifier.On("SendEmail", mock.Anything).Return(errors.New("broker down")).Once()

	// сбой доставки письма не должен ронять выпуск кода
	_, err := svc.Issue(context.Background(), "user@example.com", "verify email")
	assert.NoError(t, err)
}

func TestTokenService_Verify(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *TokenRepoMock)
		wantOK     bool
		wantErr    error
	}{
		{
			name: "valid token consumed",
			setupMocks: func(r *TokenRepoMock) {
				r.On("ConsumeToken", mock.Anything, "123456", mock.Anything).
					Return(&models.Token{Token: "123456"}, nil).Once()
			},
			wantOK: true,
		},
		{
			name: "expired token kept in storage",
			setupMocks: func(r *TokenRepoMock) {
				r.On("ConsumeToken", mock.Anything, "123456", mock.Anything).
					Return(nil, errs.ErrNotFound).Once()
				r.On("GetToken", mock.Anything, "123456").
					Return(&models.Token{
						Token:     "123456",
						ExpiresAt: time.Now().UTC().Add(-time.Minute),
					}, nil).Once()
			},
			wantErr: errs.ErrExpired,
		},
		{
			name: "unknown token",
			setupMocks: func(r *TokenRepoMock) {
				r.On("ConsumeToken", mock.Anything, "123456", mock.Anything).
					Return(nil, errs.ErrNotFound).Once()
				r.On("GetToken", mock.Anything, "123456").
					Return(nil, errs.ErrNotFound).Once()
			},
			wantErr: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(TokenRepoMock)
			notifier := new(NotifierMock)
			svc := services.NewTokenService(repo, notifier, newTestLogger(), 10*time.Minute)

			tt.setupMocks(repo)

			ok, err := svc.Verify(context.Background(), "123456")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantOK, ok)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestTokenService_List(t *testing.T) {
	repo := new(TokenRepoMock)
	notifier := new(NotifierMock)
	svc := services.NewTokenService(repo, notifier, newTestLogger(), 10*time.Minute)

	pageTokens := make([]*models.Token, 10)
	for i := range pageTokens {
		pageTokens[i] = &models.Token{Token: "123456", Email: "user@example.com"}
	}

	repo.On("ListTokens", mock.Anything, "", 10, 10).Return(pageTokens, nil).Once()
	repo.On("CountTokens", mock.Anything, "").Return(25, nil).Once()

	res, err := svc.List(context.Background(), 2, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 10, res.PageSize)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Data, 10)

	repo.AssertExpectations(t)
}
