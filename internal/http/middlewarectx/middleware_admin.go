package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// AdminOnlyMiddleware возвращает HTTP middleware, который пропускает только
// пользователей с ролью администратора. Роли берутся из контекста запроса,
// заполненного JWTMiddleware.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminOnlyMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			roles, ok := r.Context().Value(UserRoles).([]string)
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			for _, role := range roles {
				if role == models.RoleAdmin {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Error("access denied, admin role required")
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		})
	}
}
