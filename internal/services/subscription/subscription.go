// Package services содержит бизнес-логику для управления подписками и кешированием.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ottmanager/subscription-tracker/internal/lib/expiry"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// ExpiryDateLayout — формат даты окончания подписки во входных данных.
const ExpiryDateLayout = "2006-01-02"

var (
	// ErrSubscriptionLimit возвращается при превышении лимита тарифного плана.
	ErrSubscriptionLimit = errors.New("subscription limit reached")
	// ErrSubscriptionNotFound возвращается, если запись не найдена.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrAmbiguousID возвращается, если префикс идентификатора совпал с несколькими записями.
	ErrAmbiguousID = errors.New("ambiguous subscription id")
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// ReadSubscription возвращает подписку владельца по ID.
	ReadSubscription(ctx context.Context, ownerUID string, id int) (*models.Subscription, error)
	// RemoveSubscription удаляет подписку по ID и возвращает количество удалённых записей.
	RemoveSubscription(ctx context.Context, ownerUID string, id int) (int, error)
	// FindByPublicIDPrefix возвращает подписки, public_id которых начинается с префикса.
	FindByPublicIDPrefix(ctx context.Context, ownerUID, prefix string) ([]*models.Subscription, error)
	// ListSubscriptions возвращает список подписок владельца с пагинацией.
	ListSubscriptions(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Subscription, error)
	// ListAllSubscriptions возвращает список всех подписок с пагинацией.
	ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	// SearchSubscriptions ищет подписки по подстроке.
	SearchSubscriptions(ctx context.Context, ownerUID, query string) ([]*models.Subscription, error)
	// CountSubscriptions возвращает количество подписок владельца.
	CountSubscriptions(ctx context.Context, ownerUID string) (int, error)
	// ListExpiryDates возвращает даты окончания всех подписок владельца.
	ListExpiryDates(ctx context.Context, ownerUID string) ([]time.Time, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// Create создает новую подписку для пользователя с проверкой лимита плана
// и возвращает запись с производным статусом.
func (s *SubscriptionService) Create(ctx context.Context, owner *models.User, req models.DummySubscription) (*models.Subscription, error) {
	expiryDate, err := time.Parse(ExpiryDateLayout, req.Expiry)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry date: %w", err)
	}

	if owner.MaxSubscriptions != models.UnlimitedSubscriptions {
		count, err := s.repo.CountSubscriptions(ctx, owner.UID)
		if err != nil {
			return nil, err
		}
		if count >= owner.MaxSubscriptions {
			return nil, ErrSubscriptionLimit
		}
	}

	sub := models.Subscription{
		PublicID:       uuid.New().String(),
		OwnerUID:       owner.UID,
		Username:       req.Username,
		Email:          req.Email,
		ServiceName:    req.ServiceName,
		ExpiryDate:     expiryDate,
		AmountReceived: req.AmountReceived,
	}

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	s.log.Info("created new subscription", slog.Int("id", id))

	s.invalidateOwner(ctx, owner.UID)

	s.decorate(&sub)
	return &sub, nil
}

// Read возвращает подписку владельца по ID, используя кеш или репозиторий.
func (s *SubscriptionService) Read(ctx context.Context, ownerUID string, id int) (*models.Subscription, error) {
	var result *models.Subscription
	cacheKey := fmt.Sprintf("subscription:%d", id)
	found, err := s.cache.Get(ctx, cacheKey, &result)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found && result != nil && result.OwnerUID == ownerUID {
		s.decorate(result)
		return result, nil
	}

	result, err = s.repo.ReadSubscription(ctx, ownerUID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), slog.Any("err", err))
	}
	s.decorate(result)
	return result, nil
}

// Remove удаляет подписку по ID и инвалидирует кеш владельца.
func (s *SubscriptionService) Remove(ctx context.Context, ownerUID string, id int) (int, error) {
	count, err := s.repo.RemoveSubscription(ctx, ownerUID, id)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrSubscriptionNotFound
	}

	s.invalidateOwner(ctx, ownerUID, fmt.Sprintf("subscription:%d", id))
	return count, nil
}

// RemoveByPrefix удаляет единственную подписку владельца, public_id которой
// начинается с prefix. Неоднозначный префикс — ошибка.
func (s *SubscriptionService) RemoveByPrefix(ctx context.Context, ownerUID, prefix string) (*models.Subscription, error) {
	matches, err := s.repo.FindByPublicIDPrefix(ctx, ownerUID, prefix)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrSubscriptionNotFound
	case 1:
	default:
		return nil, ErrAmbiguousID
	}

	target := matches[0]
	if _, err := s.repo.RemoveSubscription(ctx, ownerUID, target.ID); err != nil {
		return nil, err
	}

	s.invalidateOwner(ctx, ownerUID, fmt.Sprintf("subscription:%d", target.ID))

	s.decorate(target)
	return target, nil
}

// List возвращает список подписок с производными статусами.
// Администраторы видят записи всех пользователей.
func (s *SubscriptionService) List(ctx context.Context, ownerUID, role string, limit, offset int) ([]*models.Subscription, error) {
	var err error
	var subs []*models.Subscription
	if role == "admin" || role == "owner" {
		subs, err = s.repo.ListAllSubscriptions(ctx, limit, offset)
	} else {
		subs, err = s.repo.ListSubscriptions(ctx, ownerUID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		s.decorate(sub)
	}
	return subs, nil
}

// Search ищет подписки владельца по подстроке в имени аккаунта,
// почте или названии сервиса.
func (s *SubscriptionService) Search(ctx context.Context, ownerUID, query string) ([]*models.Subscription, error) {
	subs, err := s.repo.SearchSubscriptions(ctx, ownerUID, query)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		s.decorate(sub)
	}
	return subs, nil
}

// Stats считает счётчики подписок владельца, разбитые по статусу.
// Результат кешируется; отсутствие записей даёт нулевые счётчики.
func (s *SubscriptionService) Stats(ctx context.Context, ownerUID string) (*models.Stats, error) {
	var cached models.Stats
	cacheKey := fmt.Sprintf("stats:%s", ownerUID)
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	dates, err := s.repo.ListExpiryDates(ctx, ownerUID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	stats := &models.Stats{Total: len(dates)}
	for _, d := range dates {
		switch expiry.Status(d, today) {
		case models.StatusExpired:
			stats.Expired++
		case models.StatusExpiringSoon:
			stats.ExpiringSoon++
		default:
			stats.Active++
		}
	}

	if err := s.cache.Set(ctx, cacheKey, stats, 5*time.Minute); err != nil {
		s.log.Warn("failed to cache stats", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return stats, nil
}

// invalidateOwner сбрасывает кешированные данные владельца после мутации,
// чтобы повторное чтение всегда видело её результат.
func (s *SubscriptionService) invalidateOwner(ctx context.Context, ownerUID string, extraKeys ...string) {
	keys := append([]string{fmt.Sprintf("stats:%s", ownerUID)}, extraKeys...)
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to invalidate cache", slog.Any("keys", keys), slog.Any("err", err))
	}
}

func (s *SubscriptionService) decorate(sub *models.Subscription) {
	today := s.now()
	sub.Expiry = sub.ExpiryDate.Format(ExpiryDateLayout)
	sub.Status = expiry.Status(sub.ExpiryDate, today)
	sub.DaysLeft = expiry.DaysLeft(sub.ExpiryDate, today)
}
