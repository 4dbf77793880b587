// Package scheduler собирает приложение планировщика напоминаний.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/ottmanager/subscription-tracker/internal/config"
	"github.com/ottmanager/subscription-tracker/internal/rabbitmq"
	schedulerservice "github.com/ottmanager/subscription-tracker/internal/services/scheduler"
	"github.com/ottmanager/subscription-tracker/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	interval         time.Duration
	conn             *amqp.Connection
	ch               *amqp.Channel
	db               *repository.Storage
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := db.CheckDatabaseReady(ctx)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetReminderQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err = waitForDB(ctx, db); err != nil {
		_ = db.DB.Close()
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	schedulerService := schedulerservice.NewSchedulerService(db, ch, logger)

	return &App{
		schedulerService: schedulerService,
		interval:         cfg.SchedulerInterval,
		conn:             conn,
		ch:               ch,
		db:               db,
		logger:           logger,
	}, nil
}

// Run запускает периодическую рассылку напоминаний до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx, a.interval)

	a.logger.Info("scheduler shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}
	return nil
}
