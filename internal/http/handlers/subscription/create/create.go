// Package create реализует HTTP-обработчик для создания новых подписок пользователя.
//
// Handler принимает JSON-запрос с данными подписки, валидирует их, извлекает
// пользователя из контекста, вызывает бизнес-логику создания подписки и
// возвращает созданную запись с производным статусом.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
	subscription "github.com/ottmanager/subscription-tracker/internal/services/subscription"
)

// Handler управляет HTTP-запросами на создание новых подписок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания подписки.
type Service interface {
	Create(ctx context.Context, owner *models.User, req models.DummySubscription) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать новую подписку
// @Description Создает новую подписку для текущего пользователя с проверкой лимита тарифа.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.DummySubscription true "Данные новой подписки"
// @Success 200 {object} map[string]any "Созданная подписка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Достигнут лимит тарифа"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании подписки"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Create(r.Context(), user, req)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrSubscriptionLimit):
			log.Error("subscription limit reached", slog.String("plan", user.PlanType))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("subscription limit reached for your plan"))
		case strings.Contains(err.Error(), "invalid expiry date"):
			log.Error("invalid expiry date", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid expiry date, expected YYYY-MM-DD"))
		default:
			log.Error("failed to create subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create subscription"))
		}
		return
	}

	log.Info("succes to create subscription", slog.Int("id", sub.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": sub,
	}))
}
