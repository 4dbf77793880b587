// Package services реализует единый обработчик текстовых команд,
// общий для Telegram-бота и HTTP API.
package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Definition описывает команду: аргументы, минимальную роль, справку и пример.
// Реестр — единственный источник правды о командах: маршрутизация,
// проверка прав и текст справки строятся по нему.
type Definition struct {
	Name    string
	MinArgs int
	MaxArgs int
	MinRole string
	Help    string
	Example string
}

// Registry содержит определения всех поддерживаемых команд.
var Registry = map[string]Definition{
	"start": {
		Name:    "start",
		MinRole: "free",
		Help:    "greeting and your account id",
		Example: "/start",
	},
	"help": {
		Name:    "help",
		MaxArgs: 1,
		MinRole: "free",
		Help:    "list available commands or show one in detail",
		Example: "/help add",
	},
	"list": {
		Name:    "list",
		MinRole: "free",
		Help:    "list your subscriptions with statuses",
		Example: "/list",
	},
	"add": {
		Name:    "add",
		MinArgs: 4,
		MaxArgs: 5,
		MinRole: "free",
		Help:    "add a subscription: account, email, service, expiry date, [amount]",
		Example: "/add alice alice@example.com Netflix 2025-12-31 499",
	},
	"delete": {
		Name:    "delete",
		MinArgs: 1,
		MaxArgs: 1,
		MinRole: "free",
		Help:    "delete a subscription by id prefix",
		Example: "/delete a1b2",
	},
	"search": {
		Name:    "search",
		MinArgs: 1,
		MaxArgs: 1,
		MinRole: "free",
		Help:    "search subscriptions by account, email or service",
		Example: "/search netflix",
	},
	"stats": {
		Name:    "stats",
		MinRole: "user",
		Help:    "subscription counters by status",
		Example: "/stats",
	},
	"upgrade": {
		Name:    "upgrade",
		MaxArgs: 1,
		MinRole: "free",
		Help:    "show the plan catalog or switch to another plan",
		Example: "/upgrade premium",
	},
	"sendreminder": {
		Name:    "sendreminder",
		MinRole: "user",
		Help:    "send reminders for your expiring subscriptions",
		Example: "/sendreminder",
	},
	"promote": {
		Name:    "promote",
		MinArgs: 2,
		MaxArgs: 2,
		MinRole: "admin",
		Help:    "assign a role to a user",
		Example: "/promote USER-a1b2c3d4 manager",
	},
	"forcedreminder": {
		Name:    "forcedreminder",
		MinRole: "admin",
		Help:    "send reminders for all expiring subscriptions",
		Example: "/forcedreminder",
	},
}

// Lookup возвращает определение команды. Начальный слэш и регистр игнорируются.
func Lookup(name string) (Definition, bool) {
	def, ok := Registry[strings.ToLower(strings.TrimPrefix(name, "/"))]
	return def, ok
}

// Allowed сообщает, доступна ли команда пользователю с данной ролью.
func (d Definition) Allowed(role string) bool {
	return models.RoleRank[role] >= models.RoleRank[d.MinRole]
}

// ValidateArgs проверяет количество аргументов по определению команды.
func (d Definition) ValidateArgs(args []string) error {
	if len(args) < d.MinArgs {
		return fmt.Errorf("not enough arguments, example: %s", d.Example)
	}
	if len(args) > d.MaxArgs && d.MaxArgs >= d.MinArgs {
		return fmt.Errorf("too many arguments, example: %s", d.Example)
	}
	return nil
}

// HelpText строит справку по командам, доступным данной роли.
func HelpText(role string) string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		def := Registry[name]
		if !def.Allowed(role) {
			continue
		}
		fmt.Fprintf(&b, "/%s - %s\n  example: %s\n", def.Name, def.Help, def.Example)
	}
	return b.String()
}
