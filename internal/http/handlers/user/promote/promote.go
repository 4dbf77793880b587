// Package promote реализует HTTP-обработчик назначения ролей пользователям.
package promote

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

// Request — структура входных данных для назначения роли.
type Request struct {
	PublicID string `json:"public_id" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// Handler обрабатывает запросы на назначение ролей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики назначения ролей.
type Service interface {
	Promote(ctx context.Context, actor *models.User, targetPublicID, role string) (*models.User, error)
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
// @Summary Назначить роль пользователю
// @Description Назначает пользователю роль строго ниже роли инициатора. Доступно администраторам.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Публичный идентификатор и роль"
// @Success 200 {object} map[string]any "Обновленный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Неизвестная роль"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/promote [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.promote"

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

	actor, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	target, err := h.service.Promote(r.Context(), actor, req.PublicID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownRole):
			log.Error("unknown role", slog.String("role", req.Role))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown role"))
		case errors.Is(err, auth.ErrUserNotFound):
			log.Error("target user not found", slog.String("public_id", req.PublicID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to promote user", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
		}
		return
	}

	log.Info("user promoted",
		slog.String("public_id", target.PublicID),
		slog.String("role", target.Role))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"public_id": target.PublicID,
		"role":      target.Role,
	}))
}
