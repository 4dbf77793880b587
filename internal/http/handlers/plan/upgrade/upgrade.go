// Package upgrade реализует HTTP-обработчик смены тарифного плана.
package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
	auth "github.com/ottmanager/subscription-tracker/internal/services/auth"
)

// Request — структура входных данных для смены плана.
type Request struct {
	Plan string `json:"plan" validate:"required"`
}

// Handler обрабатывает запросы на смену тарифного плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены плана.
type Service interface {
	UpgradePlan(ctx context.Context, uid, planType string) (*models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена тарифного плана
// @Description Переводит текущего пользователя на указанный тарифный план.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param request body Request true "Название плана"
// @Success 200 {object} map[string]any "Новый план"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Неизвестный план"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/upgrade [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.upgrade"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	plan, err := h.service.UpgradePlan(r.Context(), user.UID, req.Plan)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownPlan) {
			log.Error("unknown plan", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown plan"))
			return
		}
		log.Error("failed to upgrade plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to upgrade plan"))
		return
	}

	log.Info("plan upgraded", slog.String("plan", plan.Type))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan": plan,
	}))
}
