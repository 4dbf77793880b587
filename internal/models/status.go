package models

// Status — производный статус подписки относительно текущей даты.
type Status string

const (
	// StatusActive — до окончания больше порога напоминания.
	StatusActive Status = "active"
	// StatusExpiringSoon — окончание в пределах трёх дней.
	StatusExpiringSoon Status = "expiring_soon"
	// StatusExpired — дата окончания уже прошла.
	StatusExpired Status = "expired"
)

// Stats — счётчики подписок пользователя, разбитые по статусу.
// Нулевые значения валидны и означают отсутствие записей.
type Stats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}
