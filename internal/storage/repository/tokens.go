package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// SaveToken сохраняет новый OTP-код. Совпадение с уже сохраненным кодом
// приводит к errs.ErrConflict — вызывающая сторона генерирует код заново.
func (s *Storage) SaveToken(ctx context.Context, token models.Token) error {
	const op = "storage.SaveToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO tokens (token, subject, email, expires_at)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query,
		token.Token, token.Subject, token.Email, token.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return nil
}

// GetToken возвращает запись OTP-кода по точному совпадению.
func (s *Storage) GetToken(ctx context.Context, token string) (*models.Token, error) {
	const op = "storage.GetToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, subject, email, expires_at, created_at
			  FROM tokens
			  WHERE token = $1`
	t := &models.Token{}
	if err := s.DB.QueryRowContext(ctx, query, token).Scan(
		&t.Token, &t.Subject, &t.Email, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return t, nil
}

// ConsumeToken атомарно удаляет непросроченный код и возвращает его запись.
// Удаление условное: из двух конкурентных проверок одного кода успешной
// будет только одна. Просроченные коды этим запросом не удаляются,
// для них возвращается errs.ErrNotFound — различение "нет кода" и
// "код истек" делает вызывающая сторона по GetToken.
func (s *Storage) ConsumeToken(ctx context.Context, token string, now time.Time) (*models.Token, error) {
	const op = "storage.ConsumeToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM tokens
			  WHERE token = $1 AND expires_at > $2
			  RETURNING token, subject, email, expires_at, created_at`
	t := &models.Token{}
	if err := s.DB.QueryRowContext(ctx, query, token, now).Scan(
		&t.Token, &t.Subject, &t.Email, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return t, nil
}

// ListTokens возвращает коды с пагинацией и необязательным фильтром
// по подстроке email без учета регистра.
func (s *Storage) ListTokens(ctx context.Context, emailFilter string, limit, offset int) ([]*models.Token, error) {
	const op = "storage.ListTokens"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, subject, email, expires_at, created_at
			  FROM tokens
			  WHERE ($1 = '' OR email ILIKE '%' || $1 || '%')
			  ORDER BY created_at
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, emailFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Token
	for rows.Next() {
		t := &models.Token{}
		if err = rows.Scan(&t.Token, &t.Subject, &t.Email, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountTokens возвращает количество кодов, подпадающих под фильтр.
func (s *Storage) CountTokens(ctx context.Context, emailFilter string) (int, error) {
	const op = "storage.CountTokens"
	var count int
	query := `SELECT COUNT(*) FROM tokens
			  WHERE ($1 = '' OR email ILIKE '%' || $1 || '%')`
	if err := s.DB.QueryRowContext(ctx, query, emailFilter).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
