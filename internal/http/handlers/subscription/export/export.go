// Package export реализует HTTP-обработчик выгрузки подписок в CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// выгрузка ограничена одной страницей, чтобы не держать всё в памяти бесконечно
const exportLimit = 10000

// Handler обрабатывает запросы на выгрузку CSV.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения подписок для выгрузки.
type Service interface {
	List(ctx context.Context, ownerUID, role string, limit, offset int) ([]*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выгрузка подписок в CSV
// @Description Возвращает подписки текущего пользователя файлом CSV.
// @Tags Subscriptions
// @Produce  text/csv
// @Success 200 {string} string "CSV-файл"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.export"

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

	subs, err := h.service.List(r.Context(), user.UID, user.Role, exportLimit, 0)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to export subscriptions"))
		return
	}

	filename := fmt.Sprintf("subscriptions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))

	cw := csv.NewWriter(w)
	header := []string{"id", "service_name", "username", "email", "expiry_date", "status", "days_left", "amount_received"}
	if err := cw.Write(header); err != nil {
		log.Error("failed to write csv header", sl.Err(err))
		return
	}
	for _, sub := range subs {
		record := []string{
			sub.PublicID,
			sub.ServiceName,
			sub.Username,
			sub.Email,
			sub.Expiry,
			string(sub.Status),
			strconv.Itoa(sub.DaysLeft),
			sub.AmountReceived,
		}
		if err := cw.Write(record); err != nil {
			log.Error("failed to write csv record", sl.Err(err))
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error("failed to flush csv", sl.Err(err))
		return
	}

	log.Info("exported subscriptions", "count", len(subs))
}
