// Package services содержит логику бизнес-уровня для аутентификации:
// вход с выдачей JWT и восстановление пароля через одноразовый код.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/password"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Тема OTP-кода для восстановления пароля.
const forgotPasswordSubject = "forgot password"

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email или errs.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUserPassword перезаписывает хэш пароля пользователя.
	UpdateUserPassword(ctx context.Context, email, passwordHash string) error
}

// TokenManager выпускает, ищет и потребляет одноразовые коды.
type TokenManager interface {
	Issue(ctx context.Context, email, subject string) (string, error)
	Lookup(ctx context.Context, token string) (*models.Token, error)
	Verify(ctx context.Context, token string) (bool, error)
}

// AuthService отвечает за вход пользователей и восстановление пароля.
type AuthService struct {
	users    UserRepository
	tokens   TokenManager
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, tokens TokenManager, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Login проверяет пару email/пароль и выдает подписанный JWT с uid,
// email и ролями пользователя. Отсутствие пользователя и неверный пароль
// возвращают одну и ту же ошибку errs.ErrInvalidCredentials, чтобы
// по ответу нельзя было перечислять зарегистрированные адреса.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (models.ReadUser, string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.ReadUser{}, "", fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
		}
		return models.ReadUser{}, "", fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(user.PasswordHash, rawPassword) {
		return models.ReadUser{}, "", fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Roles)
	if err != nil {
		return models.ReadUser{}, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("user_uid", user.UID))
	return models.ToReadUser(user), token, nil
}

// ForgotPassword выпускает одноразовый код восстановления пароля
// для существующего пользователя. Доставка кода асинхронная.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "services.auth.ForgotPassword"

	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.tokens.Issue(ctx, email, forgotPasswordSubject); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("issued password reset token")
	return nil
}

// ResetPassword проверяет и потребляет код, затем перезаписывает пароль
// пользователя, чей email привязан к коду. Новый пароль хэшируется
// на пути записи.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "services.auth.ResetPassword"

	record, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.tokens.Verify(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.UpdateUserPassword(ctx, record.Email, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset completed")
	return nil
}
