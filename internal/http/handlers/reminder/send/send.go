// Package send реализует HTTP-обработчик постановки напоминаний в очередь.
package send

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
)

// Handler обрабатывает запросы на рассылку напоминаний.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс постановки напоминаний в очередь.
type Service interface {
	DispatchForOwner(ctx context.Context, ownerUID string) (int, error)
	DispatchAll(ctx context.Context) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Разослать напоминания
// @Description Ставит в очередь письма по истекающим подпискам текущего пользователя.
// С параметром all=true администраторы рассылают напоминания всем пользователям.
// @Tags Reminders
// @Produce  json
// @Param all query bool false "Разослать по всем пользователям (только администраторы)"
// @Success 200 {object} map[string]any "Количество поставленных в очередь напоминаний"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reminders/send [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.send"

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

	all := r.URL.Query().Get("all") == "true"

	var count int
	var err error
	if all {
		if !user.HasRole("admin") {
			log.Error("access denied", slog.String("role", user.Role))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
			return
		}
		count, err = h.service.DispatchAll(r.Context())
	} else {
		count, err = h.service.DispatchForOwner(r.Context(), user.UID)
	}
	if err != nil {
		log.Error("failed to dispatch reminders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to dispatch reminders"))
		return
	}

	log.Info("reminders dispatched", slog.Int("count", count), slog.Bool("all", all))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"queued": count,
	}))
}
