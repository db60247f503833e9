// Package accountservice собирает и запускает HTTP-приложение сервиса аккаунтов:
// хранилище, миграции, кэш, очередь уведомлений, бизнес-сервисы и маршруты.
package accountservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/account-service/internal/migrations"
	"github.com/magabrotheeeer/account-service/internal/notifier"
	apikeyservice "github.com/magabrotheeeer/account-service/internal/services/apikey"
	authservice "github.com/magabrotheeeer/account-service/internal/services/auth"
	planservice "github.com/magabrotheeeer/account-service/internal/services/plan"
	subscriptionservice "github.com/magabrotheeeer/account-service/internal/services/subscription"
	tokenservice "github.com/magabrotheeeer/account-service/internal/services/token"
	userservice "github.com/magabrotheeeer/account-service/internal/services/user"
	"github.com/magabrotheeeer/account-service/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и внешние соединения приложения.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
	rabbitCh   *amqp.Channel
}

// New собирает приложение: подключается к базе, применяет миграции,
// инициализирует кэш, очередь и бизнес-сервисы, регистрирует маршруты.
// Бесплатный план создается при старте, если его еще нет.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.AddressRabbit, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	queues := rabbitmq.GetNotificationQueues(cfg.EmailQueue)
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, queues)
	if err != nil {
		rabbitConn.Close()
		return nil, err
	}

	privateKeyPEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read jwt private key: %w", err)
	}
	publicKeyPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read jwt public key: %w", err)
	}
	jwtMaker, err := jwt.NewMaker(privateKeyPEM, publicKeyPEM, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	emailNotifier := notifier.NewEmailNotifier(rabbitCh)

	tokenService := tokenservice.NewTokenService(db, emailNotifier, logger, cfg.OTPTokenTTL)
	apiKeyService := apikeyservice.NewAPIKeyService(db, logger)
	planService := planservice.NewPlanService(db, cacheRedis, logger)
	subscriptionService := subscriptionservice.NewSubscriptionService(db, planService, logger)
	userService := userservice.NewUserService(db, tokenService, apiKeyService, planService, subscriptionService, logger)
	authService := authservice.NewAuthService(db, tokenService, jwtMaker, logger)

	if err = planService.EnsureDefault(ctx); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, authService, userService, planService, subscriptionService, tokenService, apiKeyService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
		rabbitCh:   rabbitCh,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста
// или фатальной ошибки сервера. При отмене выполняется graceful shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.rabbitCh.Close(); cerr != nil {
			a.logger.Error("failed to close rabbitmq channel", slog.Any("err", cerr))
		}
		if cerr := a.rabbitConn.Close(); cerr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
