// Package stats реализует HTTP-обработчик статистики подписок пользователя.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Handler обрабатывает запросы статистики.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подсчета статистики.
type Service interface {
	Stats(ctx context.Context, ownerUID string) (*models.Stats, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика подписок
// @Description Возвращает счётчики подписок текущего пользователя: всего, активные, истекающие, истекшие.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Статистика"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	stats, err := h.service.Stats(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to count stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to count stats"))
		return
	}

	log.Info("stats counted", slog.Int("total", stats.Total))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"stats": stats,
	}))
}
