package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ottmanager/subscription-tracker/internal/models"
	auth "github.com/ottmanager/subscription-tracker/internal/services/auth"
	subscription "github.com/ottmanager/subscription-tracker/internal/services/subscription"
)

// SubscriptionProvider описывает операции с подписками, доступные из команд.
type SubscriptionProvider interface {
	Create(ctx context.Context, owner *models.User, req models.DummySubscription) (*models.Subscription, error)
	List(ctx context.Context, ownerUID, role string, limit, offset int) ([]*models.Subscription, error)
	RemoveByPrefix(ctx context.Context, ownerUID, prefix string) (*models.Subscription, error)
	Search(ctx context.Context, ownerUID, query string) ([]*models.Subscription, error)
	Stats(ctx context.Context, ownerUID string) (*models.Stats, error)
}

// AccountProvider описывает операции с учётными записями, доступные из команд.
type AccountProvider interface {
	UpgradePlan(ctx context.Context, uid, planType string) (*models.Plan, error)
	Promote(ctx context.Context, actor *models.User, targetPublicID, role string) (*models.User, error)
}

// ReminderDispatcher публикует напоминания об истекающих подписках в очередь.
type ReminderDispatcher interface {
	DispatchForOwner(ctx context.Context, ownerUID string) (int, error)
	DispatchAll(ctx context.Context) (int, error)
}

// Processor разбирает текстовые команды, проверяет права по реестру
// и вызывает соответствующие сервисы.
type Processor struct {
	subs      SubscriptionProvider
	accounts  AccountProvider
	reminders ReminderDispatcher
	log       *slog.Logger
}

// NewProcessor создает новый экземпляр Processor.
func NewProcessor(subs SubscriptionProvider, accounts AccountProvider, reminders ReminderDispatcher, log *slog.Logger) *Processor {
	return &Processor{
		subs:      subs,
		accounts:  accounts,
		reminders: reminders,
		log:       log,
	}
}

const listPageSize = 50

// Process выполняет одну текстовую команду от имени пользователя и
// возвращает готовый к показу ответ. Ошибки пользователя (неизвестная
// команда, недостаток прав, неверные аргументы) тоже приходят как ответ.
func (p *Processor) Process(ctx context.Context, user *models.User, text string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "Empty command, try /help", nil
	}

	def, ok := Lookup(fields[0])
	if !ok {
		return fmt.Sprintf("Unknown command %q, try /help", fields[0]), nil
	}
	if !def.Allowed(user.Role) {
		return fmt.Sprintf("Command /%s requires role %q or higher", def.Name, def.MinRole), nil
	}
	args := fields[1:]
	if err := def.ValidateArgs(args); err != nil {
		return err.Error(), nil
	}

	p.log.Info("processing command",
		slog.String("command", def.Name),
		slog.String("user_uid", user.UID))

	switch def.Name {
	case "start":
		return p.start(user), nil
	case "help":
		return p.help(user, args), nil
	case "list":
		return p.list(ctx, user)
	case "add":
		return p.add(ctx, user, args)
	case "delete":
		return p.remove(ctx, user, args[0])
	case "search":
		return p.search(ctx, user, args[0])
	case "stats":
		return p.stats(ctx, user)
	case "upgrade":
		if len(args) == 0 {
			return p.planCatalog(user), nil
		}
		return p.upgrade(ctx, user, args[0])
	case "promote":
		return p.promote(ctx, user, args[0], args[1])
	case "sendreminder":
		return p.sendReminder(ctx, user)
	case "forcedreminder":
		return p.forcedReminder(ctx)
	default:
		return "", fmt.Errorf("command %q registered but not implemented", def.Name)
	}
}

func (p *Processor) start(user *models.User) string {
	return fmt.Sprintf("Welcome! Your account id is %s, plan %q. Try /help for the command list.",
		user.PublicID, user.PlanType)
}

func (p *Processor) help(user *models.User, args []string) string {
	if len(args) == 0 {
		return HelpText(user.Role)
	}
	def, ok := Lookup(args[0])
	if !ok || !def.Allowed(user.Role) {
		return fmt.Sprintf("Unknown command %q, try /help", args[0])
	}
	return fmt.Sprintf("/%s - %s\n  example: %s", def.Name, def.Help, def.Example)
}

func (p *Processor) list(ctx context.Context, user *models.User) (string, error) {
	subs, err := p.subs.List(ctx, user.UID, user.Role, listPageSize, 0)
	if err != nil {
		return "", err
	}
	if len(subs) == 0 {
		return "No subscriptions yet, add one with /add", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subscriptions (%d):\n", len(subs))
	for _, sub := range subs {
		fmt.Fprintf(&b, "%s  %s  %s  expires %s (%s)\n",
			shortID(sub.PublicID), sub.ServiceName, sub.Username, sub.Expiry, sub.Status)
	}
	return b.String(), nil
}

func (p *Processor) add(ctx context.Context, user *models.User, args []string) (string, error) {
	req := models.DummySubscription{
		Username:    args[0],
		Email:       args[1],
		ServiceName: args[2],
		Expiry:      args[3],
	}
	if len(args) == 5 {
		req.AmountReceived = args[4]
	}

	sub, err := p.subs.Create(ctx, user, req)
	switch {
	case errors.Is(err, subscription.ErrSubscriptionLimit):
		return fmt.Sprintf("Plan %q limit reached, see /upgrade", user.PlanType), nil
	case err != nil && strings.Contains(err.Error(), "invalid expiry date"):
		return "Invalid expiry date, expected YYYY-MM-DD", nil
	case err != nil:
		return "", err
	}
	return fmt.Sprintf("Added %s for %s, id %s, expires %s",
		sub.ServiceName, sub.Username, shortID(sub.PublicID), sub.Expiry), nil
}

func (p *Processor) remove(ctx context.Context, user *models.User, prefix string) (string, error) {
	sub, err := p.subs.RemoveByPrefix(ctx, user.UID, prefix)
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		return fmt.Sprintf("No subscription with id starting %q", prefix), nil
	case errors.Is(err, subscription.ErrAmbiguousID):
		return fmt.Sprintf("Id prefix %q matches several subscriptions, use a longer prefix", prefix), nil
	case err != nil:
		return "", err
	}
	return fmt.Sprintf("Deleted %s (%s)", sub.ServiceName, shortID(sub.PublicID)), nil
}

func (p *Processor) search(ctx context.Context, user *models.User, query string) (string, error) {
	subs, err := p.subs.Search(ctx, user.UID, query)
	if err != nil {
		return "", err
	}
	if len(subs) == 0 {
		return fmt.Sprintf("Nothing found for %q", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d:\n", len(subs))
	for _, sub := range subs {
		fmt.Fprintf(&b, "%s  %s  %s  expires %s (%s)\n",
			shortID(sub.PublicID), sub.ServiceName, sub.Username, sub.Expiry, sub.Status)
	}
	return b.String(), nil
}

func (p *Processor) stats(ctx context.Context, user *models.User) (string, error) {
	stats, err := p.subs.Stats(ctx, user.UID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Total: %d\nActive: %d\nExpiring soon: %d\nExpired: %d",
		stats.Total, stats.Active, stats.ExpiringSoon, stats.Expired), nil
}

func (p *Processor) planCatalog(user *models.User) string {
	var b strings.Builder
	b.WriteString("Available plans:\n")
	for _, key := range models.PlanKeys() {
		plan := models.Plans[key]
		limit := fmt.Sprintf("%d subscriptions", plan.MaxSubscriptions)
		if plan.MaxSubscriptions == models.UnlimitedSubscriptions {
			limit = "unlimited subscriptions"
		}
		marker := ""
		if key == user.PlanType {
			marker = "  <- current"
		}
		fmt.Fprintf(&b, "%s - %s, %s%s\n", plan.Type, plan.Price, limit, marker)
	}
	b.WriteString("Switch with /upgrade <plan>")
	return b.String()
}

func (p *Processor) upgrade(ctx context.Context, user *models.User, planType string) (string, error) {
	plan, err := p.accounts.UpgradePlan(ctx, user.UID, planType)
	switch {
	case errors.Is(err, auth.ErrUnknownPlan):
		return fmt.Sprintf("Unknown plan %q, available: %s", planType, strings.Join(models.PlanKeys(), ", ")), nil
	case err != nil:
		return "", err
	}
	limit := fmt.Sprintf("%d subscriptions", plan.MaxSubscriptions)
	if plan.MaxSubscriptions == models.UnlimitedSubscriptions {
		limit = "unlimited subscriptions"
	}
	return fmt.Sprintf("Switched to plan %q: %s", plan.Type, limit), nil
}

func (p *Processor) promote(ctx context.Context, actor *models.User, targetPublicID, role string) (string, error) {
	target, err := p.accounts.Promote(ctx, actor, targetPublicID, role)
	if err != nil {
		return err.Error(), nil
	}
	return fmt.Sprintf("User %s is now %q", target.PublicID, target.Role), nil
}

func (p *Processor) sendReminder(ctx context.Context, user *models.User) (string, error) {
	count, err := p.reminders.DispatchForOwner(ctx, user.UID)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "No subscriptions expiring within the reminder window", nil
	}
	return fmt.Sprintf("Queued %d reminder(s)", count), nil
}

func (p *Processor) forcedReminder(ctx context.Context) (string, error) {
	count, err := p.reminders.DispatchAll(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Queued %d reminder(s) across all users", count), nil
}

// shortID возвращает короткую форму публичного идентификатора для вывода.
func shortID(publicID string) string {
	if len(publicID) > 8 {
		return publicID[:8]
	}
	return publicID
}
