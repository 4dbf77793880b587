// Package subscriptiontracker предоставляет маршруты для основного приложения.
package subscriptiontracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ottmanager/subscription-tracker/internal/http/handlers/auth/login"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/auth/register"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/command/execute"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/health"
	planlist "github.com/ottmanager/subscription-tracker/internal/http/handlers/plan/list"
	planupgrade "github.com/ottmanager/subscription-tracker/internal/http/handlers/plan/upgrade"
	remindersend "github.com/ottmanager/subscription-tracker/internal/http/handlers/reminder/send"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/subscription/export"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/subscription/read"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/subscription/search"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/subscription/stats"
	"github.com/ottmanager/subscription-tracker/internal/http/handlers/user/promote"
	"github.com/ottmanager/subscription-tracker/internal/http/middlewarectx"
	authservice "github.com/ottmanager/subscription-tracker/internal/services/auth"
	commandservice "github.com/ottmanager/subscription-tracker/internal/services/command"
	schedulerservice "github.com/ottmanager/subscription-tracker/internal/services/scheduler"
	subservice "github.com/ottmanager/subscription-tracker/internal/services/subscription"
	"github.com/ottmanager/subscription-tracker/internal/storage/repository"
)

// Лимиты на частоту запросов для аутентифицированных конечных точек.
const (
	rateLimitRPS   = 10
	rateLimitBurst = 20
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	subscriptionService *subservice.SubscriptionService,
	authService *authservice.AuthService,
	schedulerService *schedulerservice.SchedulerService,
	commandProcessor *commandservice.Processor,
	db *repository.Storage,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.Metrics,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Командный шлюз: JWT опционален, Telegram-бот ходит с chat_id
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(authService, logger))
			r.Post("/command", execute.New(logger, commandProcessor, authService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(rateLimitRPS, rateLimitBurst, logger))
			r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/list", list.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/search", search.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/export", export.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, subscriptionService).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, subscriptionService).ServeHTTP)
			r.Get("/stats", stats.New(logger, subscriptionService).ServeHTTP)
			r.Get("/plans", planlist.New(logger).ServeHTTP)
			r.Post("/plans/upgrade", planupgrade.New(logger, authService).ServeHTTP)
			r.Post("/reminders/send", remindersend.New(logger, schedulerService).ServeHTTP)

			// Административные операции
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole("admin", logger))
				r.Post("/users/promote", promote.New(logger, authService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
