// Package list реализует HTTP-обработчик каталога тарифных планов.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Handler возвращает каталог тарифных планов.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Каталог тарифных планов
// @Description Возвращает все доступные тарифные планы и текущий план пользователя.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Каталог планов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"

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

	plans := make([]models.Plan, 0, len(models.Plans))
	for _, key := range models.PlanKeys() {
		plans = append(plans, models.Plans[key])
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans":        plans,
		"current_plan": user.PlanType,
	}))
}
