// Package sender собирает приложение отправки почтовых напоминаний.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/ottmanager/subscription-tracker/internal/config"
	"github.com/ottmanager/subscription-tracker/internal/lib/smtp"
	"github.com/ottmanager/subscription-tracker/internal/rabbitmq"
	senderservice "github.com/ottmanager/subscription-tracker/internal/services/sender"
)

// App представляет приложение отправителя напоминаний.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключает брокер и почтовый транспорт.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetReminderQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run подписывается на очередь напоминаний и работает до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.ExpiringQueueName, a.senderService.SendExpiryReminder)
	if err != nil {
		a.logger.Error("failed to start reminders consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
