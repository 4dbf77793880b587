// Package execute реализует единую точку выполнения текстовых команд.
//
// Этим обработчиком пользуется Telegram-бот: команда приходит вместе с
// chat_id, пользователь находится или создаётся автоматически. Запросы
// без chat_id выполняются от имени пользователя из JWT.
package execute

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Request — структура входных данных выполнения команды.
type Request struct {
	Message  string `json:"message" validate:"required"`
	ChatID   int64  `json:"chat_id,omitempty"`
	Username string `json:"username,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Handler обрабатывает запросы выполнения команд.
type Handler struct {
	log       *slog.Logger
	processor Processor
	accounts  AccountService
	validate  *validator.Validate
}

// Processor описывает интерфейс обработчика команд.
type Processor interface {
	Process(ctx context.Context, user *models.User, text string) (string, error)
}

// AccountService описывает поиск/создание пользователя по чату Telegram.
type AccountService interface {
	GetOrCreateTelegramUser(ctx context.Context, chatID int64, username string) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, processor Processor, accounts AccountService) *Handler {
	return &Handler{
		log:       log,
		processor: processor,
		accounts:  accounts,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выполнить текстовую команду
// @Description Выполняет команду вида /list, /add, /stats от имени пользователя.
// Пользователь определяется по chat_id Telegram либо по JWT.
// @Tags Commands
// @Accept  json
// @Produce  json
// @Param request body Request true "Команда и идентификация"
// @Success 200 {object} map[string]any "Текстовый ответ команды"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не определен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /command [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.command.execute"

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
		if req.ChatID == 0 {
			log.Error("neither jwt user nor chat_id present")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		var err error
		user, err = h.accounts.GetOrCreateTelegramUser(r.Context(), req.ChatID, req.Username)
		if err != nil {
			log.Error("failed to resolve telegram user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to resolve user"))
			return
		}
	}

	reply, err := h.processor.Process(r.Context(), user, req.Message)
	if err != nil {
		log.Error("failed to process command", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process command"))
		return
	}

	log.Info("command processed",
		slog.String("command", req.Message),
		slog.String("source", req.Source))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reply": reply,
	}))
}
