package models

// UnlimitedSubscriptions — значение лимита, означающее отсутствие ограничений.
const UnlimitedSubscriptions = 999999

// Plan описывает тарифный план пользователя.
type Plan struct {
	Type             string   `json:"type"`
	Name             string   `json:"name"`
	Price            string   `json:"price"`
	MaxSubscriptions int      `json:"max_subscriptions"`
	DurationDays     int      `json:"duration_days"` // 0 — бессрочный план
	Features         []string `json:"features"`
}

// Plans — статический каталог тарифных планов.
var Plans = map[string]Plan{
	"free": {
		Type:             "free",
		Name:             "Free Plan",
		Price:            "₹0 (Lifetime)",
		MaxSubscriptions: 5,
		DurationDays:     0,
		Features:         []string{"Up to 5 OTT subscriptions", "Basic reminders", "Telegram + Web access"},
	},
	"basic": {
		Type:             "basic",
		Name:             "Basic Plan",
		Price:            "₹299/month",
		MaxSubscriptions: 15,
		DurationDays:     30,
		Features:         []string{"Up to 15 OTT subscriptions", "Email reminders", "Priority support"},
	},
	"premium": {
		Type:             "premium",
		Name:             "Premium Plan",
		Price:            "₹599/month",
		MaxSubscriptions: 30,
		DurationDays:     30,
		Features:         []string{"Up to 30 OTT subscriptions", "Email + SMS reminders", "Data export", "24/7 support"},
	},
	"enterprise": {
		Type:             "enterprise",
		Name:             "Enterprise Plan",
		Price:            "₹999/month",
		MaxSubscriptions: 100,
		DurationDays:     30,
		Features:         []string{"Up to 100 subscriptions", "All premium features", "API access", "Custom integration"},
	},
	"monthly_unlimited": {
		Type:             "monthly_unlimited",
		Name:             "Monthly Unlimited",
		Price:            "₹499 (30 Days)",
		MaxSubscriptions: UnlimitedSubscriptions,
		DurationDays:     30,
		Features:         []string{"Unlimited OTT subscriptions", "Manager role access", "Email + SMS reminders", "Priority support", "Advanced analytics"},
	},
	"yearly_unlimited": {
		Type:             "yearly_unlimited",
		Name:             "Yearly Unlimited",
		Price:            "₹4999 (365 Days)",
		MaxSubscriptions: UnlimitedSubscriptions,
		DurationDays:     365,
		Features:         []string{"Unlimited OTT subscriptions", "Manager role access", "Email + SMS reminders", "Priority support", "Advanced analytics", "17% discount vs monthly!"},
	},
}

// PlanKeys возвращает ключи каталога в стабильном порядке возрастания цены.
func PlanKeys() []string {
	return []string{"free", "basic", "premium", "enterprise", "monthly_unlimited", "yearly_unlimited"}
}
