// Package accountservice предоставляет маршруты для основного приложения.
package accountservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/forgot"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/reset"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/plan/plancreate"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/plan/planlist"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/plan/planread"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/plan/planremove"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/plan/planupdate"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/subscription/sublist"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/subscription/subread"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/token/tokenlist"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/token/tokensend"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/token/tokenverify"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/upgrade"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	apikeyservice "github.com/magabrotheeeer/account-service/internal/services/apikey"
	authservice "github.com/magabrotheeeer/account-service/internal/services/auth"
	planservice "github.com/magabrotheeeer/account-service/internal/services/plan"
	subscriptionservice "github.com/magabrotheeeer/account-service/internal/services/subscription"
	tokenservice "github.com/magabrotheeeer/account-service/internal/services/token"
	userservice "github.com/magabrotheeeer/account-service/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	jwtMaker jwt.Maker,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	planService *planservice.PlanService,
	subscriptionService *subscriptionservice.SubscriptionService,
	tokenService *tokenservice.TokenService,
	apiKeyService *apikeyservice.APIKeyService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, 5, 10))
			r.Post("/auth/signup", signup.New(logger, userService).ServeHTTP)
			r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
			r.Post("/auth/forgot-password", forgot.New(logger, authService).ServeHTTP)
			r.Post("/auth/reset-password", reset.New(logger, authService).ServeHTTP)
			r.Post("/tokens/send", tokensend.New(logger, tokenService).ServeHTTP)
			r.Post("/tokens/verify", tokenverify.New(logger, tokenService).ServeHTTP)
		})

		// Группа с JWT аутентификацией и проверкой API-ключа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.APIKeyMiddleware(apiKeyService, logger))
			r.Get("/users/{uid}", read.New(logger, userService).ServeHTTP)
			r.Patch("/users/{uid}", update.New(logger, userService).ServeHTTP)
			r.Delete("/users/{uid}", remove.New(logger, userService).ServeHTTP)
			r.Post("/users/{uid}/upgrade-plan", upgrade.New(logger, userService).ServeHTTP)
			r.Get("/users/{uid}/subscription", subread.New(logger, subscriptionService).ServeHTTP)
			r.Get("/plans", planlist.New(logger, planService).ServeHTTP)
			r.Get("/plans/{uid}", planread.New(logger, planService).ServeHTTP)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Get("/users", list.New(logger, userService).ServeHTTP)
				r.Post("/plans", plancreate.New(logger, planService).ServeHTTP)
				r.Patch("/plans/{uid}", planupdate.New(logger, planService).ServeHTTP)
				r.Delete("/plans/{uid}", planremove.New(logger, planService).ServeHTTP)
				r.Get("/tokens", tokenlist.New(logger, tokenService).ServeHTTP)
				r.Get("/subscriptions", sublist.New(logger, subscriptionService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
