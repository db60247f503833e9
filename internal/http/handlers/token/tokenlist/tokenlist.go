// Package tokenlist реализует HTTP-обработчик постраничного списка одноразовых кодов.
//
// Список доступен только администратору и поддерживает фильтр
// по подстроке email.
package tokenlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Handler обрабатывает запросы на получение списка кодов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики списка кодов.
type Service interface {
	List(ctx context.Context, page, pageSize int, emailFilter string) (models.Pagination[models.Token], error)
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
// @Summary Список одноразовых кодов
// @Description Возвращает страницу кодов, опционально отфильтрованных по email. Доступно только администратору.
// @Tags Tokens
// @Produce  json
// @Param page query int false "Номер страницы" default(1)
// @Param pageSize query int false "Размер страницы" default(10)
// @Param email query string false "Фильтр по подстроке email"
// @Success 200 {object} map[string]any "Страница кодов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tokens [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.token.tokenlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize <= 0 {
		pageSize = 10
	}
	emailFilter := r.URL.Query().Get("email")

	res, err := h.service.List(r.Context(), page, pageSize, emailFilter)
	if err != nil {
		log.Error("failed to list tokens", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list tokens"))
		return
	}

	log.Info("tokens listed", slog.Int("count", len(res.Data)))
	render.JSON(w, r, response.OKWithData(res))
}
