package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ottmanager/subscription-tracker/internal/models"
	auth "github.com/ottmanager/subscription-tracker/internal/services/auth"
	subscription "github.com/ottmanager/subscription-tracker/internal/services/subscription"
)

type SubsMock struct{ mock.Mock }

func (m *SubsMock) Create(ctx context.Context, owner *models.User, req models.DummySubscription) (*models.Subscription, error) {
	args := m.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *SubsMock) List(ctx context.Context, ownerUID, role string, limit, offset int) ([]*models.Subscription, error) {
	args := m.Called(ctx, ownerUID, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}
func (m *SubsMock) RemoveByPrefix(ctx context.Context, ownerUID, prefix string) (*models.Subscription, error) {
	args := m.Called(ctx, ownerUID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *SubsMock) Search(ctx context.Context, ownerUID, query string) ([]*models.Subscription, error) {
	args := m.Called(ctx, ownerUID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}
func (m *SubsMock) Stats(ctx context.Context, ownerUID string) (*models.Stats, error) {
	args := m.Called(ctx, ownerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

type AccountsMock struct{ mock.Mock }

func (m *AccountsMock) UpgradePlan(ctx context.Context, uid, planType string) (*models.Plan, error) {
	args := m.Called(ctx, uid, planType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *AccountsMock) Promote(ctx context.Context, actor *models.User, targetPublicID, role string) (*models.User, error) {
	args := m.Called(ctx, actor, targetPublicID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type RemindersMock struct{ mock.Mock }

func (m *RemindersMock) DispatchForOwner(ctx context.Context, ownerUID string) (int, error) {
	args := m.Called(ctx, ownerUID)
	return args.Int(0), args.Error(1)
}
func (m *RemindersMock) DispatchAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newProcessor(subs *SubsMock, accounts *AccountsMock, reminders *RemindersMock) *Processor {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewProcessor(subs, accounts, reminders, log)
}

func freeUser() *models.User {
	return &models.User{
		UID:      "uid-1",
		PublicID: "FREE-a1b2c3d4",
		Role:     "free",
		PlanType: "free",
	}
}

func TestProcessor_RoutingAndPermissions(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		text     string
		wantPart string
	}{
		{
			name:     "empty input",
			role:     "free",
			text:     "   ",
			wantPart: "Empty command",
		},
		{
			name:     "unknown command",
			role:     "free",
			text:     "/frobnicate",
			wantPart: "Unknown command",
		},
		{
			name:     "free role cannot promote",
			role:     "free",
			text:     "/promote USER-x admin",
			wantPart: "requires role",
		},
		{
			name:     "free role cannot force reminders",
			role:     "user",
			text:     "/forcedreminder",
			wantPart: "requires role",
		},
		{
			name:     "too few arguments",
			role:     "free",
			text:     "/add Netflix alice",
			wantPart: "not enough arguments",
		},
		{
			name:     "too many arguments",
			role:     "free",
			text:     "/delete a1 b2",
			wantPart: "too many arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(new(SubsMock), new(AccountsMock), new(RemindersMock))
			user := freeUser()
			user.Role = tt.role

			reply, err := p.Process(context.Background(), user, tt.text)
			assert.NoError(t, err)
			assert.Contains(t, reply, tt.wantPart)
		})
	}
}

func TestProcessor_StartAndHelp(t *testing.T) {
	p := newProcessor(new(SubsMock), new(AccountsMock), new(RemindersMock))
	user := freeUser()

	reply, err := p.Process(context.Background(), user, "/start")
	assert.NoError(t, err)
	assert.Contains(t, reply, "FREE-a1b2c3d4")

	reply, err = p.Process(context.Background(), user, "/help")
	assert.NoError(t, err)
	assert.Contains(t, reply, "/add")
	// команды администратора не показываются бесплатной роли
	assert.NotContains(t, reply, "/promote")

	admin := freeUser()
	admin.Role = "owner"
	reply, err = p.Process(context.Background(), admin, "/help")
	assert.NoError(t, err)
	assert.Contains(t, reply, "/promote")
	assert.Contains(t, reply, "/forcedreminder")
}

func TestProcessor_HelpSingleCommand(t *testing.T) {
	p := newProcessor(new(SubsMock), new(AccountsMock), new(RemindersMock))
	user := freeUser()

	reply, err := p.Process(context.Background(), user, "/help add")
	assert.NoError(t, err)
	assert.Contains(t, reply, "/add")
	assert.Contains(t, reply, "example: /add alice alice@example.com Netflix 2025-12-31 499")
	// справка по одной команде не содержит общего списка
	assert.NotContains(t, reply, "Available commands")

	reply, err = p.Process(context.Background(), user, "/help frobnicate")
	assert.NoError(t, err)
	assert.Contains(t, reply, "Unknown command")

	// команды выше по роли не раскрываются в справке
	reply, err = p.Process(context.Background(), user, "/help promote")
	assert.NoError(t, err)
	assert.Contains(t, reply, "Unknown command")
}

func TestProcessor_Add(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		subs := new(SubsMock)
		p := newProcessor(subs, new(AccountsMock), new(RemindersMock))
		user := freeUser()

		subs.On("Create", mock.Anything, user, models.DummySubscription{
			Username:       "alice",
			Email:          "alice@example.com",
			ServiceName:    "Netflix",
			Expiry:         "2025-12-31",
			AmountReceived: "499",
		}).Return(&models.Subscription{
			PublicID:    "a1b2c3d4-0000",
			ServiceName: "Netflix",
			Username:    "alice",
			Expiry:      "2025-12-31",
		}, nil).Once()

		reply, err := p.Process(context.Background(), user,
			"/add alice alice@example.com Netflix 2025-12-31 499")
		assert.NoError(t, err)
		assert.Contains(t, reply, "Added Netflix")
		assert.Contains(t, reply, "a1b2c3d4")

		subs.AssertExpectations(t)
	})

	t.Run("plan limit reached", func(t *testing.T) {
		subs := new(SubsMock)
		p := newProcessor(subs, new(AccountsMock), new(RemindersMock))
		user := freeUser()

		subs.On("Create", mock.Anything, user, mock.Anything).
			Return(nil, subscription.ErrSubscriptionLimit).Once()

		reply, err := p.Process(context.Background(), user,
			"/add alice alice@example.com Netflix 2025-12-31")
		assert.NoError(t, err)
		assert.Contains(t, reply, "limit reached")
		assert.Contains(t, reply, "/upgrade")
	})

	t.Run("invalid date", func(t *testing.T) {
		subs := new(SubsMock)
		p := newProcessor(subs, new(AccountsMock), new(RemindersMock))
		user := freeUser()

		subs.On("Create", mock.Anything, user, mock.Anything).
			Return(nil, errors.New("invalid expiry date: parsing time")).Once()

		reply, err := p.Process(context.Background(), user,
			"/add alice alice@example.com Netflix 31-12-2025")
		assert.NoError(t, err)
		assert.Contains(t, reply, "YYYY-MM-DD")
	})
}

func TestProcessor_Delete(t *testing.T) {
	tests := []struct {
		name     string
		sub      *models.Subscription
		err      error
		wantPart string
	}{
		{
			name:     "deleted",
			sub:      &models.Subscription{PublicID: "a1b2c3d4-0000", ServiceName: "Netflix"},
			wantPart: "Deleted Netflix",
		},
		{
			name:     "not found",
			err:      subscription.ErrSubscriptionNotFound,
			wantPart: "No subscription",
		},
		{
			name:     "ambiguous",
			err:      subscription.ErrAmbiguousID,
			wantPart: "longer prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsMock)
			p := newProcessor(subs, new(AccountsMock), new(RemindersMock))
			user := freeUser()

			subs.On("RemoveByPrefix", mock.Anything, "uid-1", "a1b2").
				Return(tt.sub, tt.err).Once()

			reply, err := p.Process(context.Background(), user, "/delete a1b2")
			assert.NoError(t, err)
			assert.Contains(t, reply, tt.wantPart)

			subs.AssertExpectations(t)
		})
	}
}

func TestProcessor_ListAndStats(t *testing.T) {
	subs := new(SubsMock)
	p := newProcessor(subs, new(AccountsMock), new(RemindersMock))
	user := freeUser()
	user.Role = "user"

	subs.On("List", mock.Anything, "uid-1", "user", listPageSize, 0).
		Return([]*models.Subscription{
			{PublicID: "a1b2c3d4-0000", ServiceName: "Netflix", Username: "alice",
				Expiry: "2025-12-31", Status: models.StatusActive},
		}, nil).Once()

	reply, err := p.Process(context.Background(), user, "/list")
	assert.NoError(t, err)
	assert.Contains(t, reply, "Netflix")
	assert.Contains(t, reply, "active")

	subs.On("Stats", mock.Anything, "uid-1").
		Return(&models.Stats{Total: 3, Active: 1, ExpiringSoon: 1, Expired: 1}, nil).Once()

	reply, err = p.Process(context.Background(), user, "/stats")
	assert.NoError(t, err)
	assert.Contains(t, reply, "Total: 3")
	assert.Contains(t, reply, "Expiring soon: 1")

	subs.AssertExpectations(t)
}

func TestProcessor_StatsRequiresUserRole(t *testing.T) {
	p := newProcessor(new(SubsMock), new(AccountsMock), new(RemindersMock))
	user := freeUser()

	reply, err := p.Process(context.Background(), user, "/stats")
	assert.NoError(t, err)
	assert.Contains(t, reply, "requires role")
}

func TestProcessor_Upgrade(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		accounts := new(AccountsMock)
		p := newProcessor(new(SubsMock), accounts, new(RemindersMock))
		user := freeUser()

		accounts.On("UpgradePlan", mock.Anything, "uid-1", "premium").
			Return(&models.Plan{Type: "premium", MaxSubscriptions: 100}, nil).Once()

		reply, err := p.Process(context.Background(), user, "/upgrade premium")
		assert.NoError(t, err)
		assert.Contains(t, reply, `plan "premium"`)

		accounts.AssertExpectations(t)
	})

	t.Run("without argument shows the catalog", func(t *testing.T) {
		accounts := new(AccountsMock)
		p := newProcessor(new(SubsMock), accounts, new(RemindersMock))
		user := freeUser()

		reply, err := p.Process(context.Background(), user, "/upgrade")
		assert.NoError(t, err)
		assert.Contains(t, reply, "Available plans:")
		for _, key := range models.PlanKeys() {
			assert.Contains(t, reply, key)
		}
		assert.Contains(t, reply, "free - ₹0 (Lifetime), 5 subscriptions  <- current")
		assert.Contains(t, reply, "/upgrade <plan>")

		// сервис не вызывается, каталог строится локально
		accounts.AssertExpectations(t)
	})

	t.Run("unknown plan lists options", func(t *testing.T) {
		accounts := new(AccountsMock)
		p := newProcessor(new(SubsMock), accounts, new(RemindersMock))
		user := freeUser()

		accounts.On("UpgradePlan", mock.Anything, "uid-1", "diamond").
			Return(nil, auth.ErrUnknownPlan).Once()

		reply, err := p.Process(context.Background(), user, "/upgrade diamond")
		assert.NoError(t, err)
		assert.Contains(t, reply, "available:")
		assert.Contains(t, reply, strings.Join(models.PlanKeys(), ", "))
	})
}

func TestProcessor_Reminders(t *testing.T) {
	t.Run("sendreminder for own subscriptions", func(t *testing.T) {
		reminders := new(RemindersMock)
		p := newProcessor(new(SubsMock), new(AccountsMock), reminders)
		user := freeUser()
		user.Role = "user"

		reminders.On("DispatchForOwner", mock.Anything, "uid-1").Return(2, nil).Once()

		reply, err := p.Process(context.Background(), user, "/sendreminder")
		assert.NoError(t, err)
		assert.Contains(t, reply, "Queued 2")

		reminders.AssertExpectations(t)
	})

	t.Run("forcedreminder for admins", func(t *testing.T) {
		reminders := new(RemindersMock)
		p := newProcessor(new(SubsMock), new(AccountsMock), reminders)
		admin := freeUser()
		admin.Role = "admin"

		reminders.On("DispatchAll", mock.Anything).Return(5, nil).Once()

		reply, err := p.Process(context.Background(), admin, "/forcedreminder")
		assert.NoError(t, err)
		assert.Contains(t, reply, "Queued 5")

		reminders.AssertExpectations(t)
	})
}
