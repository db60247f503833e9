package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// CreateSubscription сохраняет подписку пользователя и возвращает ее UID.
// Вторая активная подписка для того же пользователя приводит
// к errs.ErrConflict (частичный уникальный индекс по user_uid).
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO subscriptions (user_uid, plan_uid, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.PlanUID, sub.StartDate, sub.EndDate, sub.Status).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return newUID, nil
}

// GetActiveSubscriptionByUser возвращает активную подписку пользователя.
func (s *Storage) GetActiveSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscriptionByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, user_uid, plan_uid, start_date, end_date, status
			  FROM subscriptions
			  WHERE user_uid = $1 AND status = $2`
	sub := &models.Subscription{}
	var endDate sql.NullTime
	if err := s.DB.QueryRowContext(ctx, query, userUID, models.SubscriptionStatusActive).Scan(
		&sub.UID, &sub.UserUID, &sub.PlanUID, &sub.StartDate, &endDate, &sub.Status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return sub, nil
}

// UpdateActiveSubscription мутирует существующую активную подписку
// пользователя: та же строка получает новый план, даты и статус.
func (s *Storage) UpdateActiveSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpdateActiveSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan_uid = $1,
			      start_date = $2,
			      end_date = $3,
			      status = $4
			  WHERE user_uid = $5 AND status = $6`
	result, err := s.DB.ExecContext(ctx, query,
		sub.PlanUID, sub.StartDate, sub.EndDate, sub.Status,
		sub.UserUID, models.SubscriptionStatusActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, translateErr(sql.ErrNoRows))
	}
	return nil
}

// ListSubscriptions возвращает подписки с пагинацией.
func (s *Storage) ListSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, user_uid, plan_uid, start_date, end_date, status
			  FROM subscriptions
			  ORDER BY start_date
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		var endDate sql.NullTime
		if err = rows.Scan(&sub.UID, &sub.UserUID, &sub.PlanUID,
			&sub.StartDate, &endDate, &sub.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endDate.Valid {
			sub.EndDate = &endDate.Time
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountSubscriptions возвращает общее количество подписок.
func (s *Storage) CountSubscriptions(ctx context.Context) (int, error) {
	const op = "storage.CountSubscriptions"
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeleteSubscriptionsByUser удаляет подписки пользователя.
// Используется при удалении аккаунта, отсутствие строк ошибкой не считается.
func (s *Storage) DeleteSubscriptionsByUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteSubscriptionsByUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE user_uid = $1`, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
