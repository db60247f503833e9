// Package upgrade реализует HTTP-обработчик смены тарифного плана пользователя.
//
// Handler принимает UID нового плана и переводит активную подписку
// пользователя на него. Дата окончания пересчитывается по длительности
// нового плана.
package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// Request — входные данные для смены плана.
type Request struct {
	PlanUID string `json:"plan_uid" validate:"required,uuid"`
}

// Handler обрабатывает запросы на смену тарифного плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены плана.
type Service interface {
	UpgradePlan(ctx context.Context, userUID, planUID string) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить тарифный план
// @Description Переводит активную подписку пользователя на указанный план.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body Request true "UID нового плана"
// @Success 200 {object} map[string]any "План изменен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или UID"
// @Failure 404 {object} response.ErrorResponse "Пользователь или план не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{uid}/upgrade-plan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.upgrade"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	if err := h.validate.Var(uid, "required,uuid"); err != nil {
		log.Error("invalid uid in url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user uid"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.UpgradePlan(r.Context(), uid, req.PlanUID); err != nil {
		log.Error("failed to upgrade plan", sl.Err(err))
		if errors.Is(err, errs.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user or plan not found"))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to upgrade plan"))
		return
	}

	log.Info("plan upgraded", slog.String("user_uid", uid), slog.String("plan_uid", req.PlanUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":     uid,
		"message": "plan upgraded successfully",
	}))
}
