// Package list реализует HTTP-обработчик списка подписок пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Handler обрабатывает запросы на получение списка подписок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения списка подписок.
type Service interface {
	List(ctx context.Context, ownerUID, role string, limit, offset int) ([]*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Возвращает подписки текущего пользователя с производными статусами. Администраторы видят все записи.
// @Tags Subscriptions
// @Produce  json
// @Param limit query int false "Размер страницы" default(100)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} map[string]any "Список подписок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.List(r.Context(), user.UID, user.Role, limit, offset)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list subscriptions"))
		return
	}

	log.Info("list subscriptions", "count", len(res))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count":    len(res),
		"subscriptions": res,
	}))
}
