// Package services содержит логику бизнес-уровня для работы с API-ключами:
// выпуск долгоживущего ключа для пользователя и проверку предъявленного
// ключа по точному совпадению.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/lib/otp"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// APIKeyRepository описывает контракт для работы с ключами в базе данных.
type APIKeyRepository interface {
	// CreateAPIKey сохраняет ключ, errs.ErrConflict для второго ключа пользователя.
	CreateAPIKey(ctx context.Context, userUID, key string) (*models.APIKey, error)
	// GetAPIKeyByKey возвращает запись ключа или errs.ErrNotFound.
	GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error)
	// DeleteAPIKeysByUser удаляет ключи пользователя.
	DeleteAPIKeysByUser(ctx context.Context, userUID string) error
}

// APIKeyService реализует менеджер API-ключей. Отзыва и ротации нет:
// ключ живет, пока существует пользователь.
type APIKeyService struct {
	repo APIKeyRepository
	log  *slog.Logger
}

// NewAPIKeyService создает новый экземпляр APIKeyService.
func NewAPIKeyService(repo APIKeyRepository, log *slog.Logger) *APIKeyService {
	return &APIKeyService{repo: repo, log: log}
}

// Issue генерирует 256-битный ключ в hex и сохраняет его для пользователя.
// Наличие прежнего ключа не проверяется: единственность обеспечивает
// уникальный индекс, конфликт возвращается как errs.ErrConflict.
func (s *APIKeyService) Issue(ctx context.Context, userUID string) (*models.APIKey, error) {
	const op = "services.apikey.Issue"

	key, err := otp.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	apiKey, err := s.repo.CreateAPIKey(ctx, userUID, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("issued api key", slog.String("user_uid", userUID))
	return apiKey, nil
}

// Validate сообщает, существует ли ключ с точно таким значением.
func (s *APIKeyService) Validate(ctx context.Context, key string) (bool, error) {
	const op = "services.apikey.Validate"

	if _, err := s.repo.GetAPIKeyByKey(ctx, key); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// RemoveByUser удаляет ключи пользователя. Вызывается сервисом аккаунтов
// при удалении учетной записи.
func (s *APIKeyService) RemoveByUser(ctx context.Context, userUID string) error {
	const op = "services.apikey.RemoveByUser"
	if err := s.repo.DeleteAPIKeysByUser(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
