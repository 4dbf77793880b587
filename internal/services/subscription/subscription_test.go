package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ottmanager/subscription-tracker/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ReadSubscription(ctx context.Context, ownerUID string, id int) (*models.Subscription, error) {
	args := m.Called(ctx, ownerUID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) RemoveSubscription(ctx context.Context, ownerUID string, id int) (int, error) {
	args := m.Called(ctx, ownerUID, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) FindByPublicIDPrefix(ctx context.Context, ownerUID, prefix string) ([]*models.Subscription, error) {
	args := m.Called(ctx, ownerUID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}
func (m *RepoMock) ListSubscriptions(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Subscription, error) {
	args := m.Called(ctx, ownerUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}
func (m *RepoMock) ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}
func (m *RepoMock) SearchSubscriptions(ctx context.Context, ownerUID, query string) ([]*models.Subscription, error) {
	args := m.Called(ctx, ownerUID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}
func (m *RepoMock) CountSubscriptions(ctx context.Context, ownerUID string) (int, error) {
	args := m.Called(ctx, ownerUID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListExpiryDates(ctx context.Context, ownerUID string) ([]time.Time, error) {
	args := m.Called(ctx, ownerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(ctx context.Context, keys ...string) error {
	callArgs := make([]any, 0, len(keys)+1)
	callArgs = append(callArgs, ctx)
	for _, k := range keys {
		callArgs = append(callArgs, k)
	}
	return m.Called(callArgs...).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestService(repo *RepoMock, cache *CacheMock, now time.Time) *SubscriptionService {
	svc := NewSubscriptionService(repo, cache, newNoopLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestSubscriptionService_Create(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	owner := &models.User{UID: "uid-1", MaxSubscriptions: 3}
	req := models.DummySubscription{
		Username:       "alice",
		Email:          "alice@example.com",
		ServiceName:    "Netflix",
		Expiry:         "2025-09-15",
		AmountReceived: "499",
	}

	tests := []struct {
		name       string
		owner      *models.User
		req        models.DummySubscription
		setupMocks func(r *RepoMock, c *CacheMock)
		wantStatus models.Status
		wantErr    error
	}{
		{
			name:  "success create",
			owner: owner,
			req:   req,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("CountSubscriptions", mock.Anything, "uid-1").Return(1, nil).Once()
				r.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
					return s.OwnerUID == "uid-1" &&
						s.ServiceName == req.ServiceName &&
						s.Email == req.Email &&
						s.PublicID != ""
				})).Return(42, nil).Once()
				c.On("Invalidate", mock.Anything, "stats:uid-1").Return(nil).Once()
			},
			wantStatus: models.StatusActive,
		},
		{
			name:       "invalid expiry date",
			owner:      owner,
			req:        models.DummySubscription{ServiceName: "Netflix", Expiry: "not-a-date"},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    errors.New("invalid expiry date"),
		},
		{
			name:  "plan limit reached",
			owner: owner,
			req:   req,
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("CountSubscriptions", mock.Anything, "uid-1").Return(3, nil).Once()
			},
			wantErr: ErrSubscriptionLimit,
		},
		{
			name:  "unlimited plan skips count",
			owner: &models.User{UID: "uid-2", MaxSubscriptions: models.UnlimitedSubscriptions},
			req:   req,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("CreateSubscription", mock.Anything, mock.Anything).Return(7, nil).Once()
				c.On("Invalidate", mock.Anything, "stats:uid-2").Return(nil).Once()
			},
			wantStatus: models.StatusActive,
		},
		{
			name:  "cache invalidate error does not fail create",
			owner: owner,
			req:   req,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("CountSubscriptions", mock.Anything, "uid-1").Return(0, nil).Once()
				r.On("CreateSubscription", mock.Anything, mock.Anything).Return(9, nil).Once()
				c.On("Invalidate", mock.Anything, "stats:uid-1").Return(errors.New("redis down")).Once()
			},
			wantStatus: models.StatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cache, now)

			tt.setupMocks(repo, cache)

			got, err := svc.Create(context.Background(), tt.owner, tt.req)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantStatus, got.Status)
				assert.Equal(t, tt.req.Expiry, got.Expiry)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Remove(t *testing.T) {
	tests := []struct {
		name       string
		id         int
		setupMocks func(r *RepoMock, c *CacheMock)
		wantCount  int
		wantErr    error
	}{
		{
			name: "success remove",
			id:   1,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("RemoveSubscription", mock.Anything, "uid-1", 1).Return(1, nil).Once()
				c.On("Invalidate", mock.Anything, "stats:uid-1", "subscription:1").Return(nil).Once()
			},
			wantCount: 1,
		},
		{
			name: "not found",
			id:   2,
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("RemoveSubscription", mock.Anything, "uid-1", 2).Return(0, nil).Once()
			},
			wantErr: ErrSubscriptionNotFound,
		},
		{
			name: "repo error",
			id:   3,
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("RemoveSubscription", mock.Anything, "uid-1", 3).Return(0, errors.New("db error")).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cache, time.Now())

			tt.setupMocks(repo, cache)

			count, err := svc.Remove(context.Background(), "uid-1", tt.id)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantCount, count)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_RemoveByPrefix(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	match := &models.Subscription{
		ID:         5,
		PublicID:   "a1b2c3d4-0000-0000-0000-000000000000",
		OwnerUID:   "uid-1",
		ExpiryDate: now.AddDate(0, 1, 0),
	}

	tests := []struct {
		name       string
		prefix     string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name:   "single match removed",
			prefix: "a1b2",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("FindByPublicIDPrefix", mock.Anything, "uid-1", "a1b2").
					Return([]*models.Subscription{match}, nil).Once()
				r.On("RemoveSubscription", mock.Anything, "uid-1", 5).Return(1, nil).Once()
				c.On("Invalidate", mock.Anything, "stats:uid-1", "subscription:5").Return(nil).Once()
			},
		},
		{
			name:   "no match",
			prefix: "ffff",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("FindByPublicIDPrefix", mock.Anything, "uid-1", "ffff").
					Return([]*models.Subscription{}, nil).Once()
			},
			wantErr: ErrSubscriptionNotFound,
		},
		{
			name:   "ambiguous prefix",
			prefix: "a",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("FindByPublicIDPrefix", mock.Anything, "uid-1", "a").
					Return([]*models.Subscription{match, match}, nil).Once()
			},
			wantErr: ErrAmbiguousID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cache, now)

			tt.setupMocks(repo, cache)

			got, err := svc.RemoveByPrefix(context.Background(), "uid-1", tt.prefix)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 5, got.ID)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_List(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	subs := []*models.Subscription{
		{ServiceName: "Netflix", ExpiryDate: now.AddDate(0, 0, 30)},
		{ServiceName: "Spotify", ExpiryDate: now.AddDate(0, 0, 2)},
		{ServiceName: "Hulu", ExpiryDate: now.AddDate(0, 0, -1)},
	}

	tests := []struct {
		name         string
		role         string
		setupMocks   func(r *RepoMock)
		wantStatuses []models.Status
		wantErr      bool
	}{
		{
			name: "admin role uses ListAll",
			role: "admin",
			setupMocks: func(r *RepoMock) {
				r.On("ListAllSubscriptions", mock.Anything, 10, 0).Return(subs, nil).Once()
			},
			wantStatuses: []models.Status{models.StatusActive, models.StatusExpiringSoon, models.StatusExpired},
		},
		{
			name: "user role uses own list",
			role: "user",
			setupMocks: func(r *RepoMock) {
				r.On("ListSubscriptions", mock.Anything, "uid-1", 10, 0).Return(subs, nil).Once()
			},
			wantStatuses: []models.Status{models.StatusActive, models.StatusExpiringSoon, models.StatusExpired},
		},
		{
			name: "repo error",
			role: "user",
			setupMocks: func(r *RepoMock) {
				r.On("ListSubscriptions", mock.Anything, "uid-1", 10, 0).Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cache, now)

			tt.setupMocks(repo)

			got, err := svc.List(context.Background(), "uid-1", tt.role, 10, 0)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				statuses := make([]models.Status, 0, len(got))
				for _, sub := range got {
					statuses = append(statuses, sub.Status)
				}
				assert.Equal(t, tt.wantStatuses, statuses)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Read(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		ID:          1,
		OwnerUID:    "uid-1",
		ServiceName: "Netflix",
		ExpiryDate:  now.AddDate(0, 0, 10),
	}

	t.Run("cache hit", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := newTestService(repo, cache, now)

		cache.On("Get", mock.Anything, "subscription:1", mock.Anything).
			Return(true, nil).
			Run(func(args mock.Arguments) {
				ptr := args.Get(2).(**models.Subscription)
				copied := *sub
				*ptr = &copied
			}).Once()

		got, err := svc.Read(context.Background(), "uid-1", 1)
		assert.NoError(t, err)
		assert.Equal(t, "Netflix", got.ServiceName)
		assert.Equal(t, models.StatusActive, got.Status)

		cache.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("cache miss then repo success", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := newTestService(repo, cache, now)

		cache.On("Get", mock.Anything, "subscription:1", mock.Anything).Return(false, nil).Once()
		repoSub := *sub
		repo.On("ReadSubscription", mock.Anything, "uid-1", 1).Return(&repoSub, nil).Once()
		cache.On("Set", mock.Anything, "subscription:1", mock.Anything, time.Hour).Return(nil).Once()

		got, err := svc.Read(context.Background(), "uid-1", 1)
		assert.NoError(t, err)
		assert.Equal(t, 10, got.DaysLeft)

		cache.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("cache hit for foreign owner falls through to repo", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := newTestService(repo, cache, now)

		cache.On("Get", mock.Anything, "subscription:1", mock.Anything).
			Return(true, nil).
			Run(func(args mock.Arguments) {
				ptr := args.Get(2).(**models.Subscription)
				foreign := *sub
				foreign.OwnerUID = "uid-other"
				*ptr = &foreign
			}).Once()
		repo.On("ReadSubscription", mock.Anything, "uid-1", 1).Return(nil, errors.New("not found")).Once()

		_, err := svc.Read(context.Background(), "uid-1", 1)
		assert.Error(t, err)

		cache.AssertExpectations(t)
		repo.AssertExpectations(t)
	})
}

func TestSubscriptionService_Stats(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		want       *models.Stats
		wantErr    bool
	}{
		{
			name: "computed from expiry dates",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "stats:uid-1", mock.Anything).Return(false, nil).Once()
				r.On("ListExpiryDates", mock.Anything, "uid-1").Return([]time.Time{
					now.AddDate(0, 0, 30),
					now.AddDate(0, 0, 3),
					now.AddDate(0, 0, 1),
					now.AddDate(0, 0, -5),
				}, nil).Once()
				c.On("Set", mock.Anything, "stats:uid-1", mock.Anything, 5*time.Minute).Return(nil).Once()
			},
			want: &models.Stats{Total: 4, Active: 1, ExpiringSoon: 2, Expired: 1},
		},
		{
			name: "cache hit skips repo",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "stats:uid-1", mock.Anything).
					Return(true, nil).
					Run(func(args mock.Arguments) {
						ptr := args.Get(2).(*models.Stats)
						*ptr = models.Stats{Total: 2, Active: 2}
					}).Once()
			},
			want: &models.Stats{Total: 2, Active: 2},
		},
		{
			name: "empty list gives zero stats",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "stats:uid-1", mock.Anything).Return(false, nil).Once()
				r.On("ListExpiryDates", mock.Anything, "uid-1").Return([]time.Time{}, nil).Once()
				c.On("Set", mock.Anything, "stats:uid-1", mock.Anything, 5*time.Minute).Return(nil).Once()
			},
			want: &models.Stats{},
		},
		{
			name: "repo error",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "stats:uid-1", mock.Anything).Return(false, nil).Once()
				r.On("ListExpiryDates", mock.Anything, "uid-1").Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cache, now)

			tt.setupMocks(repo, cache)

			got, err := svc.Stats(context.Background(), "uid-1")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Search(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := newTestService(repo, cache, now)

	repo.On("SearchSubscriptions", mock.Anything, "uid-1", "netflix").Return([]*models.Subscription{
		{ServiceName: "Netflix", ExpiryDate: now.AddDate(0, 0, 1)},
	}, nil).Once()

	got, err := svc.Search(context.Background(), "uid-1", "netflix")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, models.StatusExpiringSoon, got[0].Status)

	repo.AssertExpectations(t)
}
