package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/migrations"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage/repository"
)

// setupStorage поднимает контейнер postgres, применяет миграции и
// возвращает готовое хранилище.
func setupStorage(t *testing.T) *repository.Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort(nat.Port("5432/tcp")),
		).WithStartupTimeoutDefault(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := repository.New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, storage.DB.Close())
	})

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"))
	return storage
}

func TestUsersCRUD(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	user := models.User{
		Firstname:    "Ivan",
		Lastname:     "Petrov",
		Email:        "ivan@example.com",
		PasswordHash: "hash",
		Roles:        []string{models.RoleUser},
	}

	uid, err := storage.CreateUser(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	// повторный email дает конфликт
	_, err = storage.CreateUser(ctx, user)
	assert.ErrorIs(t, err, errs.ErrConflict)

	got, err := storage.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", got.Email)
	assert.False(t, got.Verified)
	assert.Equal(t, []string{models.RoleUser}, got.Roles)

	// поиск по email без учета регистра
	got, err = storage.GetUserByEmail(ctx, "IVAN@example.COM")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)

	firstname := "Petr"
	require.NoError(t, storage.UpdateUser(ctx, uid, models.UpdateUser{Firstname: &firstname}))
	got, err = storage.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Petr", got.Firstname)
	assert.Equal(t, "Petrov", got.Lastname)

	require.NoError(t, storage.UpdateUserPassword(ctx, "ivan@example.com", "newhash"))
	got, err = storage.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)

	count, err := storage.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, storage.DeleteUser(ctx, uid))
	_, err = storage.GetUserByUID(ctx, uid)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTokensConsume(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	valid := models.Token{
		Token:     "123456",
		Subject:   "verify email",
		Email:     "ivan@example.com",
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, storage.SaveToken(ctx, valid))

	// повторное сохранение того же кода дает конфликт
	assert.ErrorIs(t, storage.SaveToken(ctx, valid), errs.ErrConflict)

	got, err := storage.ConsumeToken(ctx, "123456", now)
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", got.Email)

	// код одноразовый, вторая попытка не находит строку
	_, err = storage.ConsumeToken(ctx, "123456", now)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// просроченный код не потребляется и остается в базе
	expired := models.Token{
		Token:     "654321",
		Subject:   "verify email",
		Email:     "ivan@example.com",
		ExpiresAt: now.Add(-time.Minute),
	}
	require.NoError(t, storage.SaveToken(ctx, expired))
	_, err = storage.ConsumeToken(ctx, "654321", now)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	record, err := storage.GetToken(ctx, "654321")
	require.NoError(t, err)
	assert.True(t, record.IsExpired(now))
}

func TestPlansCRUD(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	plan := models.Plan{
		Name:                "Pro Plan",
		Description:         "Full access",
		Tag:                 "pro_plan",
		Price:               990,
		DurationInMonths:    12,
		MonthlyAPICallLimit: 10000,
	}
	uid, err := storage.CreatePlan(ctx, plan)
	require.NoError(t, err)

	_, err = storage.CreatePlan(ctx, plan)
	assert.ErrorIs(t, err, errs.ErrConflict)

	got, err := storage.GetPlanByTag(ctx, "pro_plan")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, 990, got.Price)

	newPrice := 1490
	require.NoError(t, storage.UpdatePlan(ctx, uid, models.UpdatePlan{Price: &newPrice}))
	got, err = storage.GetPlanByUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1490, got.Price)
	// название не изменилось
	assert.Equal(t, "Pro Plan", got.Name)

	require.NoError(t, storage.DeletePlan(ctx, uid))
	_, err = storage.GetPlanByUID(ctx, uid)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSubscriptionsSingleActive(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	userUID, err := storage.CreateUser(ctx, models.User{
		Firstname:    "Ivan",
		Lastname:     "Petrov",
		Email:        "ivan@example.com",
		PasswordHash: "hash",
		Roles:        []string{models.RoleUser},
	})
	require.NoError(t, err)

	planUID, err := storage.CreatePlan(ctx, models.Plan{
		Name: "Free Plan", Description: "basic", Tag: "free_plan",
	})
	require.NoError(t, err)

	sub := models.Subscription{
		UserUID:   userUID,
		PlanUID:   planUID,
		StartDate: time.Now().UTC(),
		Status:    models.SubscriptionStatusActive,
	}
	_, err = storage.CreateSubscription(ctx, sub)
	require.NoError(t, err)

	// вторая активная подписка того же пользователя запрещена индексом
	_, err = storage.CreateSubscription(ctx, sub)
	assert.ErrorIs(t, err, errs.ErrConflict)

	active, err := storage.GetActiveSubscriptionByUser(ctx, userUID)
	require.NoError(t, err)
	assert.Nil(t, active.EndDate)

	// перевод на платный план мутирует ту же запись
	paidUID, err := storage.CreatePlan(ctx, models.Plan{
		Name: "Pro Plan", Description: "full", Tag: "pro_plan", Price: 990, DurationInMonths: 12,
	})
	require.NoError(t, err)

	end := time.Now().UTC().AddDate(0, 12, 0)
	require.NoError(t, storage.UpdateActiveSubscription(ctx, models.Subscription{
		UserUID:   userUID,
		PlanUID:   paidUID,
		StartDate: time.Now().UTC(),
		EndDate:   &end,
		Status:    models.SubscriptionStatusActive,
	}))

	updated, err := storage.GetActiveSubscriptionByUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, active.UID, updated.UID)
	assert.Equal(t, paidUID, updated.PlanUID)
	require.NotNil(t, updated.EndDate)

	require.NoError(t, storage.DeleteSubscriptionsByUser(ctx, userUID))
	_, err = storage.GetActiveSubscriptionByUser(ctx, userUID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAPIKeys(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	userUID, err := storage.CreateUser(ctx, models.User{
		Firstname:    "Ivan",
		Lastname:     "Petrov",
		Email:        "ivan@example.com",
		PasswordHash: "hash",
		Roles:        []string{models.RoleUser},
	})
	require.NoError(t, err)

	apiKey, err := storage.CreateAPIKey(ctx, userUID, "deadbeefcafe")
	require.NoError(t, err)
	assert.NotEmpty(t, apiKey.UID)

	// второй ключ на того же пользователя запрещен
	_, err = storage.CreateAPIKey(ctx, userUID, "anotherkey")
	assert.ErrorIs(t, err, errs.ErrConflict)

	got, err := storage.GetAPIKeyByKey(ctx, "deadbeefcafe")
	require.NoError(t, err)
	assert.Equal(t, userUID, got.UserUID)

	_, err = storage.GetAPIKeyByKey(ctx, "unknown")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, storage.DeleteAPIKeysByUser(ctx, userUID))
	_, err = storage.GetAPIKeyByKey(ctx, "deadbeefcafe")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, storage.MarkVerified(ctx, userUID, apiKey.UID))
	user, err := storage.GetUserByUID(ctx, userUID)
	require.NoError(t, err)
	assert.True(t, user.Verified)
}
