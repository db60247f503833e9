// Package services содержит оркестрирующую логику сервиса аккаунтов:
// регистрацию (учетные данные + OTP + API-ключ + подписка по умолчанию),
// чтение и изменение профиля, удаление аккаунта и смену тарифного плана.
//
// Инварианты каждой сущности обеспечивает ее собственный менеджер,
// сервис аккаунтов не пишет в чужие хранилища напрямую.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/lib/password"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет пользователя, errs.ErrConflict при повторном email.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUID возвращает пользователя по UID или errs.ErrNotFound.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или errs.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers возвращает пользователей с пагинацией.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// CountUsers считает всех пользователей.
	CountUsers(ctx context.Context) (int, error)
	// UpdateUser применяет частичные изменения профиля.
	UpdateUser(ctx context.Context, uid string, patch models.UpdateUser) error
	// MarkVerified отмечает пользователя верифицированным и привязывает ключ.
	MarkVerified(ctx context.Context, uid, apiKeyUID string) error
	// DeleteUser удаляет пользователя по UID.
	DeleteUser(ctx context.Context, uid string) error
}

// TokenManager проверяет и потребляет одноразовые коды.
type TokenManager interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// APIKeyManager выпускает и удаляет API-ключи.
type APIKeyManager interface {
	Issue(ctx context.Context, userUID string) (*models.APIKey, error)
	RemoveByUser(ctx context.Context, userUID string) error
}

// PlanCatalog дает доступ к каталогу планов.
type PlanCatalog interface {
	FindByUID(ctx context.Context, uid string) (*models.Plan, error)
	FindByTag(ctx context.Context, tag string) (*models.Plan, error)
}

// SubscriptionManager управляет подписками пользователей.
type SubscriptionManager interface {
	Create(ctx context.Context, userUID, planUID string) error
	Update(ctx context.Context, userUID, newPlanUID string) error
	RemoveByUser(ctx context.Context, userUID string) error
}

// UserService оркестрирует жизненный цикл аккаунта поверх менеджеров
// учетных данных, кодов, ключей, каталога и подписок.
type UserService struct {
	users         UserRepository
	tokens        TokenManager
	apiKeys       APIKeyManager
	plans         PlanCatalog
	subscriptions SubscriptionManager
	log           *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(
	users UserRepository,
	tokens TokenManager,
	apiKeys APIKeyManager,
	plans PlanCatalog,
	subscriptions SubscriptionManager,
	log *slog.Logger,
) *UserService {
	return &UserService{
		users:         users,
		tokens:        tokens,
		apiKeys:       apiKeys,
		plans:         plans,
		subscriptions: subscriptions,
		log:           log,
	}
}

// Signup регистрирует пользователя: проверяет уникальность email,
// наличие бесплатного плана и OTP, создает запись пользователя,
// выпускает API-ключ, отмечает аккаунт верифицированным и оформляет
// подписку на бесплатный план.
//
// OTP проверяется до создания пользователя: неверный код не должен
// оставлять в базе неверифицируемый аккаунт. Распределенной транзакции
// нет; единственность пользователя гарантирует уникальный индекс email,
// поэтому повторный вызов после частичного сбоя не создаст дубликата.
func (s *UserService) Signup(ctx context.Context, req models.DummyUser) error {
	const op = "services.user.Signup"

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// ранняя проверка для понятной ошибки, решает уникальный индекс
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return fmt.Errorf("%s: user with email %s: %w", op, email, errs.ErrConflict)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	freePlan, err := s.plans.FindByTag(ctx, models.DefaultPlanTag)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, errs.ErrDefaultPlanMissing)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = s.tokens.Verify(ctx, req.OTP); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		Email:        email,
		PasswordHash: hashed,
		Verified:     false,
		Roles:        []string{models.RoleUser},
	}
	userUID, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	apiKey, err := s.apiKeys.Issue(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.MarkVerified(ctx, userUID, apiKey.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.subscriptions.Create(ctx, userUID, freePlan.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user signed up", slog.String("user_uid", userUID))
	return nil
}

// FindOne возвращает профиль пользователя без хэша пароля.
func (s *UserService) FindOne(ctx context.Context, uid string) (models.ReadUser, error) {
	const op = "services.user.FindOne"
	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return models.ReadUser{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.ToReadUser(user), nil
}

// FindAll возвращает страницу профилей пользователей.
func (s *UserService) FindAll(ctx context.Context, page, pageSize int) (models.Pagination[models.ReadUser], error) {
	const op = "services.user.FindAll"

	offset := (page - 1) * pageSize
	users, err := s.users.ListUsers(ctx, pageSize, offset)
	if err != nil {
		return models.Pagination[models.ReadUser]{}, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return models.Pagination[models.ReadUser]{}, fmt.Errorf("%s: %w", op, err)
	}

	data := make([]models.ReadUser, 0, len(users))
	for _, u := range users {
		data = append(data, models.ToReadUser(u))
	}
	return models.NewPagination(page, pageSize, total, data), nil
}

// Update применяет частичные изменения профиля пользователя.
func (s *UserService) Update(ctx context.Context, uid string, patch models.UpdateUser) error {
	const op = "services.user.Update"
	if err := s.users.UpdateUser(ctx, uid, patch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated user profile", slog.String("user_uid", uid))
	return nil
}

// Delete удаляет аккаунт. Хранилище каскадов не делает: подписку
// и API-ключ удаляют их менеджеры до удаления записи пользователя.
func (s *UserService) Delete(ctx context.Context, uid string) error {
	const op = "services.user.Delete"

	if _, err := s.users.GetUserByUID(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.subscriptions.RemoveByUser(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.apiKeys.RemoveByUser(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("deleted user account", slog.String("user_uid", uid))
	return nil
}

// ValidatePassword проверяет пароль пользователя по сохраненному хэшу.
func (s *UserService) ValidatePassword(ctx context.Context, uid, plaintext string) (bool, error) {
	const op = "services.user.ValidatePassword"
	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return password.Verify(user.PasswordHash, plaintext), nil
}

// UpgradePlan переводит пользователя на другой план: проверяет
// существование пользователя и плана, затем делегирует менеджеру
// подписок мутацию активной подписки.
func (s *UserService) UpgradePlan(ctx context.Context, userUID, planUID string) error {
	const op = "services.user.UpgradePlan"

	if _, err := s.users.GetUserByUID(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	plan, err := s.plans.FindByUID(ctx, planUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.subscriptions.Update(ctx, userUID, plan.UID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("upgraded user plan",
		slog.String("user_uid", userUID),
		slog.String("plan_uid", plan.UID))
	return nil
}
