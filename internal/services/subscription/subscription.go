// Package services содержит бизнес-логику управления подписками:
// создание подписки при регистрации, смену плана и списки с пагинацией.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет подписку и возвращает её UID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	// GetActiveSubscriptionByUser возвращает активную подписку пользователя.
	GetActiveSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error)
	// UpdateActiveSubscription мутирует существующую активную подписку.
	UpdateActiveSubscription(ctx context.Context, sub models.Subscription) error
	// ListSubscriptions возвращает подписки с пагинацией.
	ListSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	// CountSubscriptions считает все подписки.
	CountSubscriptions(ctx context.Context) (int, error)
	// DeleteSubscriptionsByUser удаляет подписки пользователя.
	DeleteSubscriptionsByUser(ctx context.Context, userUID string) error
}

// PlanProvider описывает доступ к каталогу планов.
type PlanProvider interface {
	FindByUID(ctx context.Context, uid string) (*models.Plan, error)
}

// SubscriptionService реализует менеджер подписок.
type SubscriptionService struct {
	repo  SubscriptionRepository
	plans PlanProvider
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, plans PlanProvider, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		plans: plans,
		log:   log,
	}
}

// endDateFor считает дату окончания подписки по единому правилу:
// платный план действует max(durationInMonths, 1) месяцев,
// бесплатный бессрочен (nil).
func endDateFor(plan *models.Plan, start time.Time) *time.Time {
	if plan.Price <= 0 {
		return nil
	}
	months := plan.DurationInMonths
	if months < 1 {
		months = 1
	}
	end := start.AddDate(0, months, 0)
	return &end
}

// Create создает подписку пользователя на план. Вызывается один раз
// на пользователя при регистрации, дальнейшая смена плана идет
// через Update; вторая активная подписка дает errs.ErrConflict.
func (s *SubscriptionService) Create(ctx context.Context, userUID, planUID string) error {
	const op = "services.subscription.Create"

	plan, err := s.plans.FindByUID(ctx, planUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	startDate := time.Now().UTC()
	sub := models.Subscription{
		UserUID:   userUID,
		PlanUID:   plan.UID,
		StartDate: startDate,
		EndDate:   endDateFor(plan, startDate),
		Status:    models.SubscriptionStatusActive,
	}
	uid, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created subscription",
		slog.String("uid", uid),
		slog.String("user_uid", userUID),
		slog.String("plan_uid", plan.UID))
	return nil
}

// FindActiveByUser возвращает активную подписку пользователя
// или errs.ErrNotFound, если активной подписки нет.
func (s *SubscriptionService) FindActiveByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "services.subscription.FindActiveByUser"
	sub, err := s.repo.GetActiveSubscriptionByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// Update переводит активную подписку пользователя на новый план,
// мутируя ту же запись: новый план, даты по единому правилу, статус active.
// Конкурентные смены плана для одного пользователя разрешаются
// по принципу "последняя запись побеждает".
func (s *SubscriptionService) Update(ctx context.Context, userUID, newPlanUID string) error {
	const op = "services.subscription.Update"

	if _, err := s.repo.GetActiveSubscriptionByUser(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	plan, err := s.plans.FindByUID(ctx, newPlanUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	startDate := time.Now().UTC()
	sub := models.Subscription{
		UserUID:   userUID,
		PlanUID:   plan.UID,
		StartDate: startDate,
		EndDate:   endDateFor(plan, startDate),
		Status:    models.SubscriptionStatusActive,
	}
	if err = s.repo.UpdateActiveSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("updated subscription",
		slog.String("user_uid", userUID),
		slog.String("plan_uid", plan.UID))
	return nil
}

// List возвращает страницу всех подписок.
func (s *SubscriptionService) List(ctx context.Context, page, pageSize int) (models.Pagination[models.Subscription], error) {
	const op = "services.subscription.List"

	offset := (page - 1) * pageSize
	subs, err := s.repo.ListSubscriptions(ctx, pageSize, offset)
	if err != nil {
		return models.Pagination[models.Subscription]{}, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountSubscriptions(ctx)
	if err != nil {
		return models.Pagination[models.Subscription]{}, fmt.Errorf("%s: %w", op, err)
	}

	data := make([]models.Subscription, 0, len(subs))
	for _, sub := range subs {
		data = append(data, *sub)
	}
	return models.NewPagination(page, pageSize, total, data), nil
}

// RemoveByUser удаляет подписки пользователя. Вызывается сервисом
// аккаунтов при удалении учетной записи.
func (s *SubscriptionService) RemoveByUser(ctx context.Context, userUID string) error {
	const op = "services.subscription.RemoveByUser"
	if err := s.repo.DeleteSubscriptionsByUser(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
