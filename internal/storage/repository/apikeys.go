package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// CreateAPIKey сохраняет ключ для пользователя и возвращает запись.
// Второй ключ для того же пользователя приводит к errs.ErrConflict
// (уникальный индекс по user_uid).
func (s *Storage) CreateAPIKey(ctx context.Context, userUID, key string) (*models.APIKey, error) {
	const op = "storage.CreateAPIKey"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	apiKey := &models.APIKey{UserUID: userUID, Key: key}
	query := `INSERT INTO api_keys (user_uid, key)
			  VALUES ($1, $2)
			  RETURNING uid, created_at;`
	if err := s.DB.QueryRowContext(ctx, query, userUID, key).Scan(
		&apiKey.UID, &apiKey.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return apiKey, nil
}

// GetAPIKeyByKey возвращает запись ключа по его значению.
func (s *Storage) GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	const op = "storage.GetAPIKeyByKey"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	apiKey := &models.APIKey{}
	query := `SELECT uid, user_uid, key, created_at
			  FROM api_keys
			  WHERE key = $1`
	if err := s.DB.QueryRowContext(ctx, query, key).Scan(
		&apiKey.UID, &apiKey.UserUID, &apiKey.Key, &apiKey.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return apiKey, nil
}

// DeleteAPIKeysByUser удаляет ключи пользователя. Отсутствие ключей
// ошибкой не считается: у неверифицированного пользователя их нет.
func (s *Storage) DeleteAPIKeysByUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteAPIKeysByUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM api_keys WHERE user_uid = $1`, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
