package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ottmanager/subscription-tracker/internal/models"
	"github.com/ottmanager/subscription-tracker/internal/rabbitmq"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindExpiringWithin(ctx context.Context, days int) ([]*models.ReminderInfo, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReminderInfo), args.Error(1)
}

func (m *MockRepository) FindExpiringWithinForOwner(ctx context.Context, ownerUID string, days int) ([]*models.ReminderInfo, error) {
	args := m.Called(ctx, ownerUID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReminderInfo), args.Error(1)
}

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSchedulerService_DispatchAll(t *testing.T) {
	reminder := &models.ReminderInfo{
		Email:       "test@example.com",
		Username:    "testuser",
		ServiceName: "Netflix",
		ExpiryDate:  time.Now().Add(48 * time.Hour),
		DaysLeft:    2,
	}

	tests := []struct {
		name       string
		setupMocks func(*MockRepository, *MockChannel)
		wantCount  int
		wantErr    bool
	}{
		{
			name: "publishes found reminders",
			setupMocks: func(r *MockRepository, ch *MockChannel) {
				r.On("FindExpiringWithin", mock.Anything, 7).
					Return([]*models.ReminderInfo{reminder}, nil).Once()
				body, _ := json.Marshal(reminder)
				ch.On("Publish", rabbitmq.RemindersExchange, "expiring", false, false,
					mock.MatchedBy(func(msg amqp.Publishing) bool {
						return msg.ContentType == "application/json" && string(msg.Body) == string(body)
					})).Return(nil).Once()
			},
			wantCount: 1,
		},
		{
			name: "no expiring subscriptions",
			setupMocks: func(r *MockRepository, _ *MockChannel) {
				r.On("FindExpiringWithin", mock.Anything, 7).
					Return([]*models.ReminderInfo{}, nil).Once()
			},
			wantCount: 0,
		},
		{
			name: "skips reminders without email",
			setupMocks: func(r *MockRepository, _ *MockChannel) {
				r.On("FindExpiringWithin", mock.Anything, 7).
					Return([]*models.ReminderInfo{{Username: "tg-only", ServiceName: "Hulu"}}, nil).Once()
			},
			wantCount: 0,
		},
		{
			name: "repository error",
			setupMocks: func(r *MockRepository, _ *MockChannel) {
				r.On("FindExpiringWithin", mock.Anything, 7).
					Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
		},
		{
			name: "publish error skips message but continues",
			setupMocks: func(r *MockRepository, ch *MockChannel) {
				r.On("FindExpiringWithin", mock.Anything, 7).
					Return([]*models.ReminderInfo{reminder, reminder}, nil).Once()
				ch.On("Publish", rabbitmq.RemindersExchange, "expiring", false, false, mock.Anything).
					Return(errors.New("broker down")).Once()
				ch.On("Publish", rabbitmq.RemindersExchange, "expiring", false, false, mock.Anything).
					Return(nil).Once()
			},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			channel := new(MockChannel)
			service := NewSchedulerService(repo, channel, newNoopLogger())

			tt.setupMocks(repo, channel)

			count, err := service.DispatchAll(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantCount, count)
			}

			repo.AssertExpectations(t)
			channel.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_DispatchForOwner(t *testing.T) {
	reminder := &models.ReminderInfo{
		Email:       "alice@example.com",
		Username:    "alice",
		ServiceName: "Spotify",
		DaysLeft:    1,
	}

	repo := new(MockRepository)
	channel := new(MockChannel)
	service := NewSchedulerService(repo, channel, newNoopLogger())

	repo.On("FindExpiringWithinForOwner", mock.Anything, "uid-1", 7).
		Return([]*models.ReminderInfo{reminder}, nil).Once()
	channel.On("Publish", rabbitmq.RemindersExchange, "expiring", false, false, mock.Anything).
		Return(nil).Once()

	count, err := service.DispatchForOwner(context.Background(), "uid-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	repo.AssertExpectations(t)
	channel.AssertExpectations(t)
}
