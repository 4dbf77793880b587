// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, тарифный план и роль.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID              string     // Уникальный идентификатор (uuid)
	PublicID         string     // Публичный идентификатор вида FREE-1a2b3c4d
	Email            string     // Электронная почта
	Username         string     // Имя пользователя (уникальное)
	PasswordHash     string     // Хэш пароля
	Role             string     // Роль: free, user, manager, admin, owner
	PlanType         string     // Название тарифного плана
	MaxSubscriptions int        // Лимит подписок по плану
	PlanExpiry       *time.Time // Дата окончания плана, nil — бессрочно
	TelegramChatID   *int64     // Telegram chat id, nil если не привязан
	CreatedAt        time.Time
}

// RoleRank задаёт иерархию ролей: большее значение — больше прав.
var RoleRank = map[string]int{
	"owner":   5,
	"admin":   4,
	"manager": 3,
	"user":    2,
	"free":    1,
}

// HasRole сообщает, достаточно ли роли пользователя для требуемой роли.
func (u *User) HasRole(required string) bool {
	return RoleRank[u.Role] >= RoleRank[required]
}

// IsPlanActive сообщает, действует ли платный план пользователя.
// Бесплатный план и план без даты окончания считаются действующими.
func (u *User) IsPlanActive(now time.Time) bool {
	if u.PlanExpiry == nil || u.PlanType == "free" {
		return true
	}
	return now.Before(*u.PlanExpiry)
}
