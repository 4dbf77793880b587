// Package search реализует HTTP-обработчик поиска подписок по подстроке.
package search

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Handler обрабатывает поисковые запросы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики поиска подписок.
type Service interface {
	Search(ctx context.Context, ownerUID, query string) ([]*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Поиск подписок
// @Description Ищет подписки текущего пользователя по подстроке в аккаунте, почте или названии сервиса.
// @Tags Subscriptions
// @Produce  json
// @Param q query string true "Поисковый запрос"
// @Success 200 {object} map[string]any "Найденные подписки"
// @Failure 400 {object} response.ErrorResponse "Пустой запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		log.Error("empty search query")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("query parameter q is required"))
		return
	}

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Search(r.Context(), user.UID, query)
	if err != nil {
		log.Error("failed to search subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to search subscriptions"))
		return
	}

	log.Info("search subscriptions", slog.String("query", query), "count", len(res))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"query":         query,
		"list_count":    len(res),
		"subscriptions": res,
	}))
}
