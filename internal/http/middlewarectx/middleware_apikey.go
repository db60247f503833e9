package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// APIKeyValidator описывает интерфейс сервиса для проверки API-ключей.
type APIKeyValidator interface {
	Validate(ctx context.Context, key string) (bool, error)
}

// APIKeyMiddleware возвращает HTTP middleware, который проверяет заголовок X-API-KEY.
//
// Запрос без валидного ключа отклоняется с HTTP статусом 401 Unauthorized.
func APIKeyMiddleware(apiKeys APIKeyValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.APIKeyMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			key := r.Header.Get("X-API-KEY")
			if key == "" {
				log.Error("missing api key header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing api key"))
				return
			}

			ok, err := apiKeys.Validate(r.Context(), key)
			if err != nil {
				log.Error("failed to validate api key", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !ok {
				log.Error("unknown api key")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid api key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
