package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// роли хранятся одной строкой через запятую
func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(roles string) []string {
	return strings.Split(roles, ",")
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
// Повторный email приводит к errs.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (firstname, lastname, email, password_hash, verified, roles)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Firstname, user.Lastname, user.Email, user.PasswordHash,
		user.Verified, joinRoles(user.Roles)).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return newUID, nil
}

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var roles string
	var apiKeyUID sql.NullString
	var updatedAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Firstname, &u.Lastname, &u.Email, &u.PasswordHash,
		&u.Verified, &roles, &apiKeyUID, &u.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Roles = splitRoles(roles)
	if apiKeyUID.Valid {
		u.APIKeyUID = &apiKeyUID.String
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, firstname, lastname, email, password_hash, verified, roles,
			      api_key_uid, created_at, updated_at
			  FROM users
			  WHERE uid = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email (без учета регистра).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, firstname, lastname, email, password_hash, verified, roles,
			      api_key_uid, created_at, updated_at
			  FROM users
			  WHERE lower(email) = lower($1)`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateErr(err))
	}
	return u, nil
}

// ListUsers возвращает пользователей с пагинацией.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, firstname, lastname, email, password_hash, verified, roles,
			      api_key_uid, created_at, updated_at
			  FROM users
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		var roles string
		var apiKeyUID sql.NullString
		var updatedAt sql.NullTime
		if err = rows.Scan(&u.UID, &u.Firstname, &u.Lastname, &u.Email, &u.PasswordHash,
			&u.Verified, &roles, &apiKeyUID, &u.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.Roles = splitRoles(roles)
		if apiKeyUID.Valid {
			u.APIKeyUID = &apiKeyUID.String
		}
		if updatedAt.Valid {
			u.UpdatedAt = &updatedAt.Time
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUsers возвращает общее количество пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdateUser применяет частичные изменения профиля. Nil-поля не трогаются.
func (s *Storage) UpdateUser(ctx context.Context, uid string, patch models.UpdateUser) error {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET firstname = COALESCE($1, firstname),
			      lastname = COALESCE($2, lastname),
			      updated_at = now()
			  WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, patch.Firstname, patch.Lastname, uid)
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

// MarkVerified отмечает пользователя верифицированным и привязывает
// к нему выданный API-ключ.
func (s *Storage) MarkVerified(ctx context.Context, uid, apiKeyUID string) error {
	const op = "storage.MarkVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET verified = TRUE,
			      api_key_uid = $1,
			      updated_at = now()
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, apiKeyUID, uid)
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

// UpdateUserPassword перезаписывает хэш пароля пользователя по email.
func (s *Storage) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	const op = "storage.UpdateUserPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1,
			      updated_at = now()
			  WHERE lower(email) = lower($2)`
	result, err := s.DB.ExecContext(ctx, query, passwordHash, email)
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

// DeleteUser удаляет пользователя по UID.
func (s *Storage) DeleteUser(ctx context.Context, uid string) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid)
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
