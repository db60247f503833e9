// Package tokenverify реализует HTTP-обработчик проверки одноразового кода.
//
// Успешная проверка одноразовая: код потребляется и повторная проверка
// того же кода вернет ошибку.
package tokenverify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/errs"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// Request — входные данные для проверки кода.
type Request struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

// Handler обрабатывает запросы на проверку одноразового кода.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики проверки кода.
type Service interface {
	Verify(ctx context.Context, token string) (bool, error)
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
// @Summary Проверить одноразовый код
// @Description Проверяет и потребляет код. Повторная проверка того же кода невозможна.
// @Tags Tokens
// @Accept  json
// @Produce  json
// @Param request body Request true "Одноразовый код"
// @Success 200 {object} map[string]any "Код действителен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или недействительный код"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tokens/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.token.tokenverify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	if _, err := h.service.Verify(r.Context(), req.OTP); err != nil {
		log.Error("token verification failed", sl.Err(err))
		switch {
		case errors.Is(err, errs.ErrExpired):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("code has expired"))
		case errors.Is(err, errs.ErrNotFound):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid code"))
		default:
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to verify code"))
		}
		return
	}

	log.Info("token verified")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "code verified successfully",
	}))
}
