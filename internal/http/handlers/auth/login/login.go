// Package login реализует HTTP-обработчик аутентификации пользователей.
//
// Выполняется декодирование JSON, валидация полей и делегирование операции
// входа сервису аутентификации. При успешном входе возвращается JWT.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	auth "github.com/ottmanager/subscription-tracker/internal/services/auth"
)

// Request — структура входных данных для авторизации.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// Handler обрабатывает HTTP-запросы авторизации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, username, password string) (token, role string, err error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по имени и паролю. Возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
	log.Info("request body decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	token, role, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not login"))
		return
	}

	log.Info("login success", slog.String("username", req.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":    token,
		"role":     role,
		"username": req.Username,
	}))
}
