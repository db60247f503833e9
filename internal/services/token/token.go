// Package services содержит логику бизнес-уровня для работы с одноразовыми
// кодами подтверждения (OTP): выпуск, поиск, проверку с потреблением
// и списки с пагинацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/lib/otp"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// maxGenerateAttempts — предел повторов генерации кода при совпадении
// с уже сохраненным.
const maxGenerateAttempts = 5

// TokenRepository описывает контракт для работы с OTP-кодами в базе данных.
type TokenRepository interface {
	// SaveToken сохраняет код, возвращает errs.ErrConflict при совпадении.
	SaveToken(ctx context.Context, token models.Token) error
	// GetToken возвращает запись кода или errs.ErrNotFound.
	GetToken(ctx context.Context, token string) (*models.Token, error)
	// ConsumeToken атомарно удаляет непросроченный код и возвращает его.
	ConsumeToken(ctx context.Context, token string, now time.Time) (*models.Token, error)
	// ListTokens возвращает коды с фильтром по email и пагинацией.
	ListTokens(ctx context.Context, emailFilter string, limit, offset int) ([]*models.Token, error)
	// CountTokens считает коды, подпадающие под фильтр.
	CountTokens(ctx context.Context, emailFilter string) (int, error)
}

// Notifier описывает доставку писем. Отправка асинхронная,
// ошибка доставки логируется и не прерывает операцию.
type Notifier interface {
	SendEmail(msg models.EmailMessage) error
}

// TokenService реализует менеджер OTP-кодов.
type TokenService struct {
	repo     TokenRepository
	notifier Notifier
	log      *slog.Logger
	tokenTTL time.Duration
}

// NewTokenService создает новый экземпляр TokenService.
func NewTokenService(repo TokenRepository, notifier Notifier, log *slog.Logger, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		repo:     repo,
		notifier: notifier,
		log:      log,
		tokenTTL: tokenTTL,
	}
}

// Issue выпускает шестизначный код для email, сохраняет его со сроком
// действия tokenTTL и ставит письмо с кодом в очередь доставки.
// При совпадении кода с уже сохраненным генерация повторяется,
// но не более maxGenerateAttempts раз.
func (s *TokenService) Issue(ctx context.Context, email, subject string) (string, error) {
	const op = "services.token.Issue"

	for range maxGenerateAttempts {
		code, err := otp.GenerateCode()
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		token := models.Token{
			Token:     code,
			Subject:   subject,
			Email:     email,
			ExpiresAt: time.Now().UTC().Add(s.tokenTTL),
		}
		err = s.repo.SaveToken(ctx, token)
		if errors.Is(err, errs.ErrConflict) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		msg := models.EmailMessage{
			Email:   email,
			Subject: "Your one-time code",
			Body:    fmt.Sprintf("Your one-time code is: %s\nIt expires in %d minutes.", code, int(s.tokenTTL.Minutes())),
		}
		if err := s.notifier.SendEmail(msg); err != nil {
			s.log.Warn("failed to enqueue otp email", slog.String("email", email), sl.Err(err))
		}

		s.log.Info("issued otp token", slog.String("email", email), slog.String("subject", subject))
		return code, nil
	}

	return "", fmt.Errorf("%s: could not generate unique token after %d attempts", op, maxGenerateAttempts)
}

// Lookup возвращает запись кода по точному совпадению.
func (s *TokenService) Lookup(ctx context.Context, token string) (*models.Token, error) {
	const op = "services.token.Lookup"
	record, err := s.repo.GetToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

// Verify проверяет код и потребляет его. Успешная проверка одноразовая:
// код удаляется атомарно, из двух конкурентных проверок одного кода
// успешной будет только одна. Просроченный код не удаляется,
// для него возвращается errs.ErrExpired.
func (s *TokenService) Verify(ctx context.Context, token string) (bool, error) {
	const op = "services.token.Verify"

	now := time.Now().UTC()
	if _, err := s.repo.ConsumeToken(ctx, token, now); err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		// условное удаление не нашло строку: кода нет вообще,
		// либо он просрочен, либо уже потреблен конкурентной проверкой
		record, lookErr := s.repo.GetToken(ctx, token)
		if lookErr != nil {
			return false, fmt.Errorf("%s: %w", op, lookErr)
		}
		if record.IsExpired(now) {
			return false, fmt.Errorf("%s: %w", op, errs.ErrExpired)
		}
		return false, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	s.log.Info("otp token verified and consumed")
	return true, nil
}

// List возвращает страницу кодов, опционально отфильтрованных
// по подстроке email без учета регистра.
func (s *TokenService) List(ctx context.Context, page, pageSize int, emailFilter string) (models.Pagination[models.Token], error) {
	const op = "services.token.List"

	offset := (page - 1) * pageSize
	tokens, err := s.repo.ListTokens(ctx, emailFilter, pageSize, offset)
	if err != nil {
		return models.Pagination[models.Token]{}, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountTokens(ctx, emailFilter)
	if err != nil {
		return models.Pagination[models.Token]{}, fmt.Errorf("%s: %w", op, err)
	}

	data := make([]models.Token, 0, len(tokens))
	for _, t := range tokens {
		data = append(data, *t)
	}
	return models.NewPagination(page, pageSize, total, data), nil
}
