// Package services находит истекающие подписки и публикует напоминания
// о них в очередь на отправку.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ottmanager/subscription-tracker/internal/lib/expiry"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
	"github.com/ottmanager/subscription-tracker/internal/rabbitmq"
)

// SubscriptionRepository описывает выборку истекающих подписок из хранилища.
type SubscriptionRepository interface {
	FindExpiringWithin(ctx context.Context, days int) ([]*models.ReminderInfo, error)
	FindExpiringWithinForOwner(ctx context.Context, ownerUID string, days int) ([]*models.ReminderInfo, error)
}

// SchedulerService периодически публикует напоминания об истекающих подписках.
type SchedulerService struct {
	repo    SubscriptionRepository
	channel rabbitmq.Publisher
	log     *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, channel rabbitmq.Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:    repo,
		channel: channel,
		log:     log,
	}
}

// Run запускает периодическую рассылку напоминаний с заданным интервалом
// и блокируется до отмены контекста. Первый проход выполняется сразу.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.DispatchAll(ctx); err != nil {
		s.log.Error("failed to dispatch reminders", sl.Err(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.DispatchAll(ctx); err != nil {
				s.log.Error("failed to dispatch reminders", sl.Err(err))
			}
		}
	}
}

// DispatchAll публикует напоминания по всем подпискам, истекающим в окне
// напоминаний, и возвращает количество опубликованных сообщений.
func (s *SchedulerService) DispatchAll(ctx context.Context) (int, error) {
	s.log.Info("looking for expiring subscriptions")
	reminders, err := s.repo.FindExpiringWithin(ctx, expiry.ReminderWindowDays)
	if err != nil {
		return 0, err
	}
	return s.publish(reminders)
}

// DispatchForOwner публикует напоминания по истекающим подпискам одного пользователя.
func (s *SchedulerService) DispatchForOwner(ctx context.Context, ownerUID string) (int, error) {
	reminders, err := s.repo.FindExpiringWithinForOwner(ctx, ownerUID, expiry.ReminderWindowDays)
	if err != nil {
		return 0, err
	}
	return s.publish(reminders)
}

func (s *SchedulerService) publish(reminders []*models.ReminderInfo) (int, error) {
	if len(reminders) == 0 {
		s.log.Info("no expiring subscriptions found")
		return 0, nil
	}
	s.log.Info("found expiring subscriptions", "count", len(reminders))

	var published int
	for _, reminder := range reminders {
		if reminder.Email == "" {
			// без адреса напоминание отправить некому
			continue
		}
		if err := rabbitmq.PublishMessage(s.channel, rabbitmq.RemindersExchange, rabbitmq.ExpiringRoutingKey, reminder); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
			continue
		}
		published++
	}
	return published, nil
}
