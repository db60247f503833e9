package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/apikey"
)

// Мок для APIKeyRepository
type APIKeyRepoMock struct {
	mock.Mock
}

func (m *APIKeyRepoMock) CreateAPIKey(ctx context.Context, userUID, key string) (*models.APIKey, error) {
	args := m.Called(ctx, userUID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *APIKeyRepoMock) GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *APIKeyRepoMock) DeleteAPIKeysByUser(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func newService(t *testing.T) (*services.APIKeyService, *APIKeyRepoMock) {
	t.Helper()
	repo := new(APIKeyRepoMock)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewAPIKeyService(repo, log), repo
}

func TestAPIKeyService_Issue(t *testing.T) {
	svc, repo := newService(t)

	repo.On("CreateAPIKey", mock.Anything, "user-uid-1", mock.MatchedBy(func(key string) bool {
		// 32 байта в hex
		return len(key) == 64
	})).Return(&models.APIKey{UID: "key-uid-1", UserUID: "user-uid-1"}, nil).Once()

	apiKey, err := svc.Issue(context.Background(), "user-uid-1")
	require.NoError(t, err)
	assert.Equal(t, "key-uid-1", apiKey.UID)

	repo.AssertExpectations(t)
}

func TestAPIKeyService_Validate(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *APIKeyRepoMock)
		wantOK     bool
		wantErr    bool
	}{
		{
			name: "known key",
			setupMocks: func(r *APIKeyRepoMock) {
				r.On("GetAPIKeyByKey", mock.Anything, "deadbeef").
					Return(&models.APIKey{UID: "key-uid-1", Key: "deadbeef"}, nil).Once()
			},
			wantOK: true,
		},
		{
			name: "unknown key is not an error",
			setupMocks: func(r *APIKeyRepoMock) {
				r.On("GetAPIKeyByKey", mock.Anything, "deadbeef").
					Return(nil, errs.ErrNotFound).Once()
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)
			tt.setupMocks(repo)

			ok, err := svc.Validate(context.Background(), "deadbeef")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)

			repo.AssertExpectations(t)
		})
	}
}

func TestAPIKeyService_RemoveByUser(t *testing.T) {
	svc, repo := newService(t)

	repo.On("DeleteAPIKeysByUser", mock.Anything, "user-uid-1").Return(nil).Once()

	err := svc.RemoveByUser(context.Background(), "user-uid-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
