// Package subscriptiontracker собирает основное HTTP-приложение трекера подписок.
package subscriptiontracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/ottmanager/subscription-tracker/internal/cache"
	"github.com/ottmanager/subscription-tracker/internal/config"
	"github.com/ottmanager/subscription-tracker/internal/lib/jwt"
	"github.com/ottmanager/subscription-tracker/internal/migrations"
	"github.com/ottmanager/subscription-tracker/internal/rabbitmq"
	authservice "github.com/ottmanager/subscription-tracker/internal/services/auth"
	commandservice "github.com/ottmanager/subscription-tracker/internal/services/command"
	schedulerservice "github.com/ottmanager/subscription-tracker/internal/services/scheduler"
	subservice "github.com/ottmanager/subscription-tracker/internal/services/subscription"
	"github.com/ottmanager/subscription-tracker/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и ресурсы основного приложения.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	rabbit  *amqp.Connection
	channel *amqp.Channel
}

// New подключает хранилище, кеш и брокер, запускает миграции
// и регистрирует маршруты приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	channel, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetReminderQueues())
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, logger)
	authService := authservice.NewAuthService(db, jwtMaker)
	schedulerService := schedulerservice.NewSchedulerService(db, channel, logger)
	commandProcessor := commandservice.NewProcessor(subscriptionService, authService, schedulerService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, subscriptionService, authService, schedulerService, commandProcessor, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		rabbit:  rabbitConn,
		channel: channel,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.channel.Close()
		_ = a.rabbit.Close()
		_ = a.db.DB.Close()
		return err
	}
}
