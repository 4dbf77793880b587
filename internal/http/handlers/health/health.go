// Package health реализует проверку готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
)

// Pinger описывает проверку доступности хранилища.
type Pinger interface {
	CheckDatabaseReady(ctx context.Context) error
}

// Handler обрабатывает запросы проверки готовности.
type Handler struct {
	log    *slog.Logger
	pinger Pinger
}

// New создает новый Handler.
func New(log *slog.Logger, pinger Pinger) *Handler {
	return &Handler{
		log:    log,
		pinger: pinger,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Description Возвращает состояние сервиса и доступность базы данных.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.pinger.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
