// Package models содержит доменные структуры трекера подписок,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Subscription представляет отслеживаемую подписку на внешний сервис.
// Статус не хранится в базе — он выводится из даты окончания
// относительно текущего дня.
type Subscription struct {
	ID             int       `json:"id"`                        // Идентификатор записи
	PublicID       string    `json:"public_id"`                 // Публичный идентификатор (uuid), команды принимают его префикс
	OwnerUID       string    `json:"-"`                         // UID владельца записи
	Username       string    `json:"username"`                  // Имя аккаунта на сервисе
	Email          string    `json:"email"`                     // Почта аккаунта на сервисе
	ServiceName    string    `json:"service_name"`              // Название сервиса (Netflix, Spotify и т.д.)
	ExpiryDate     time.Time `json:"-"`                         // Дата окончания подписки
	Expiry         string    `json:"expiry"`                    // Дата окончания в формате 2006-01-02 для ответов
	AmountReceived string    `json:"amount_received,omitempty"` // Полученная сумма, строка только для отображения
	Status         Status    `json:"status"`                    // Производный статус
	DaysLeft       int       `json:"days_left"`                 // Дней до окончания (отрицательное — просрочена)
	CreatedAt      time.Time `json:"-"`
}

// DummySubscription используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Subscription.
// Дата приходит строкой, чтобы её можно было валидировать и парсить вручную.
type DummySubscription struct {
	Username       string `json:"username" validate:"required,min=1,max=100"`     // Имя аккаунта
	Email          string `json:"email" validate:"required,email"`                // Почта аккаунта
	ServiceName    string `json:"service_name" validate:"required,min=1,max=100"` // Название сервиса
	Expiry         string `json:"expiry" validate:"required,datetime=2006-01-02"` // Дата окончания в формате 2006-01-02
	AmountReceived string `json:"amount_received,omitempty" validate:"omitempty"` // Сумма (опционально)
}

// ReminderInfo — сообщение о скором окончании подписки,
// публикуемое планировщиком в очередь и потребляемое отправителем писем.
type ReminderInfo struct {
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	ServiceName string    `json:"service_name"`
	ExpiryDate  time.Time `json:"expiry_date"`
	DaysLeft    int       `json:"days_left"`
}
