// Package expiry выводит статус подписки из её даты окончания.
//
// Статус нигде не хранится: каждая выдача пересчитывает его относительно
// текущего дня, поэтому данные не могут "протухнуть" в базе.
package expiry

import (
	"time"

	"github.com/ottmanager/subscription-tracker/internal/models"
)

// ExpiringSoonDays — порог в днях, начиная с которого подписка
// считается скоро истекающей.
const ExpiringSoonDays = 3

// ReminderWindowDays — горизонт в днях для отправки напоминаний.
const ReminderWindowDays = 7

// DaysLeft возвращает количество календарных дней от today до expiry.
// Сравниваются даты, время суток игнорируется.
func DaysLeft(expiry, today time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}

// Status возвращает производный статус подписки на дату today.
func Status(expiryDate, today time.Time) models.Status {
	days := DaysLeft(expiryDate, today)
	switch {
	case days < 0:
		return models.StatusExpired
	case days <= ExpiringSoonDays:
		return models.StatusExpiringSoon
	default:
		return models.StatusActive
	}
}
