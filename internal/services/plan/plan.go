// Package services содержит бизнес-логику каталога тарифных планов,
// включая кеширование и засев бесплатного плана по умолчанию.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/lib/tag"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// PlanRepository определяет методы для работы с планами в хранилище.
type PlanRepository interface {
	// CreatePlan добавляет план, errs.ErrConflict при повторном названии.
	CreatePlan(ctx context.Context, plan models.Plan) (string, error)
	// GetPlanByUID возвращает план по UID или errs.ErrNotFound.
	GetPlanByUID(ctx context.Context, uid string) (*models.Plan, error)
	// GetPlanByTag возвращает план по тегу или errs.ErrNotFound.
	GetPlanByTag(ctx context.Context, tag string) (*models.Plan, error)
	// ListPlans возвращает планы с пагинацией.
	ListPlans(ctx context.Context, limit, offset int) ([]*models.Plan, error)
	// CountPlans считает все планы.
	CountPlans(ctx context.Context) (int, error)
	// UpdatePlan применяет частичные изменения плана.
	UpdatePlan(ctx context.Context, uid string, patch models.UpdatePlan) error
	// DeletePlan удаляет план по UID.
	DeletePlan(ctx context.Context, uid string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// PlanService реализует каталог планов. Чтения по UID и тегу кешируются:
// план по тегу free_plan читается на каждой регистрации.
type PlanService struct {
	repo  PlanRepository
	cache Cache
	log   *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo PlanRepository, cache Cache, log *slog.Logger) *PlanService {
	return &PlanService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create добавляет план в каталог. Тег выводится из названия
// детерминированно, повторное название дает errs.ErrConflict.
func (s *PlanService) Create(ctx context.Context, req models.DummyPlan) error {
	const op = "services.plan.Create"

	plan := models.Plan{
		Name:                req.Name,
		Description:         req.Description,
		Tag:                 tag.FromName(req.Name),
		Price:               req.Price,
		DurationInMonths:    req.DurationInMonths,
		Unlimited:           req.Unlimited,
		MonthlyAPICallLimit: req.MonthlyAPICallLimit,
	}
	uid, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new plan", slog.String("uid", uid), slog.String("tag", plan.Tag))
	return nil
}

// FindByUID возвращает план по UID, используя кеш или репозиторий.
func (s *PlanService) FindByUID(ctx context.Context, uid string) (*models.Plan, error) {
	const op = "services.plan.FindByUID"
	return s.findCached(ctx, op, "plan:uid:"+uid, func() (*models.Plan, error) {
		return s.repo.GetPlanByUID(ctx, uid)
	})
}

// FindByTag возвращает план по тегу, используя кеш или репозиторий.
func (s *PlanService) FindByTag(ctx context.Context, planTag string) (*models.Plan, error) {
	const op = "services.plan.FindByTag"
	return s.findCached(ctx, op, "plan:tag:"+planTag, func() (*models.Plan, error) {
		return s.repo.GetPlanByTag(ctx, planTag)
	})
}

func (s *PlanService) findCached(_ context.Context, op, cacheKey string, load func() (*models.Plan, error)) (*models.Plan, error) {
	var cached *models.Plan
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plan cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached != nil {
		return cached, nil
	}

	plan, err := load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(cacheKey, plan, time.Hour); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", cacheKey), sl.Err(err))
	}
	return plan, nil
}

// List возвращает страницу каталога планов.
func (s *PlanService) List(ctx context.Context, page, pageSize int) (models.Pagination[models.Plan], error) {
	const op = "services.plan.List"

	offset := (page - 1) * pageSize
	plans, err := s.repo.ListPlans(ctx, pageSize, offset)
	if err != nil {
		return models.Pagination[models.Plan]{}, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountPlans(ctx)
	if err != nil {
		return models.Pagination[models.Plan]{}, fmt.Errorf("%s: %w", op, err)
	}

	data := make([]models.Plan, 0, len(plans))
	for _, p := range plans {
		data = append(data, *p)
	}
	return models.NewPagination(page, pageSize, total, data), nil
}

// Update применяет частичные изменения плана и инвалидирует кеш.
func (s *PlanService) Update(ctx context.Context, uid string, patch models.UpdatePlan) error {
	const op = "services.plan.Update"

	plan, err := s.repo.GetPlanByUID(ctx, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdatePlan(ctx, uid, patch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(plan)

	s.log.Info("updated plan", slog.String("uid", uid))
	return nil
}

// Delete удаляет план из каталога и инвалидирует кеш.
func (s *PlanService) Delete(ctx context.Context, uid string) error {
	const op = "services.plan.Delete"

	plan, err := s.repo.GetPlanByUID(ctx, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.DeletePlan(ctx, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(plan)

	s.log.Info("deleted plan", slog.String("uid", uid))
	return nil
}

func (s *PlanService) invalidate(plan *models.Plan) {
	for _, key := range []string{"plan:uid:" + plan.UID, "plan:tag:" + plan.Tag} {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate plan cache", slog.String("key", key), sl.Err(err))
		}
	}
}

// EnsureDefault гарантирует наличие бесплатного плана в каталоге.
// Вызывается при старте приложения: регистрация жестко зависит
// от существования тега free_plan.
func (s *PlanService) EnsureDefault(ctx context.Context) error {
	const op = "services.plan.EnsureDefault"

	_, err := s.repo.GetPlanByTag(ctx, models.DefaultPlanTag)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("no default plan found, seeding free plan")
	freePlan := models.Plan{
		Name:                "Free Plan",
		Description:         "Basic plan with limited features",
		Tag:                 models.DefaultPlanTag,
		Price:               0,
		Unlimited:           false,
		MonthlyAPICallLimit: 250,
	}
	if _, err := s.repo.CreatePlan(ctx, freePlan); err != nil {
		// конкурентный старт второго экземпляра мог успеть первым
		if errors.Is(err, errs.ErrConflict) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
