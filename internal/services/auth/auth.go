// Package services содержит логику бизнес-уровня для работы с пользователями,
// аутентификацией и тарифными планами.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ottmanager/subscription-tracker/internal/lib/jwt"
	"github.com/ottmanager/subscription-tracker/internal/lib/password"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

var (
	// ErrInvalidCredentials возвращается при неверном имени пользователя или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownPlan возвращается при попытке перейти на несуществующий план.
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrUnknownRole возвращается при попытке назначить несуществующую роль.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, uid string) (*models.User, error)

	// GetUserByPublicID возвращает пользователя по публичному идентификатору.
	GetUserByPublicID(ctx context.Context, publicID string) (*models.User, error)

	// GetUserByTelegramChatID возвращает пользователя, привязанного к чату Telegram.
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)

	// UpdateUserRole меняет роль пользователя по публичному идентификатору.
	UpdateUserRole(ctx context.Context, publicID, role string) error

	// UpdateUserPlan меняет тарифный план пользователя.
	UpdateUserPlan(ctx context.Context, uid, planType string, maxSubscriptions int, planExpiry sql.NullTime) error
}

// AuthService отвечает за регистрацию, авторизацию, валидацию JWT,
// смену ролей и тарифных планов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
}

// Register создает нового пользователя с хэшированием пароля,
// дефолтной ролью "user" и бесплатным тарифом.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	freePlan := models.Plans["free"]
	user := models.User{
		PublicID:         "USER-" + uuid.New().String()[:8],
		Email:            email,
		Username:         username,
		PasswordHash:     hashed,
		Role:             "user", // дефолтная роль при регистрации
		PlanType:         freePlan.Type,
		MaxSubscriptions: freePlan.MaxSubscriptions,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе из базы.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser возвращает пользователя по UID.
func (s *AuthService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetUser(ctx, uid)
}

// GetOrCreateTelegramUser возвращает пользователя, привязанного к чату Telegram,
// создавая при первом обращении учётную запись с бесплатным тарифом.
func (s *AuthService) GetOrCreateTelegramUser(ctx context.Context, chatID int64, username string) (*models.User, error) {
	user, err := s.users.GetUserByTelegramChatID(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	freePlan := models.Plans["free"]
	if username == "" {
		username = fmt.Sprintf("tg_%d", chatID)
	}
	newUser := models.User{
		PublicID:         "FREE-" + uuid.New().String()[:8],
		Username:         username,
		Role:             "free",
		PlanType:         freePlan.Type,
		MaxSubscriptions: freePlan.MaxSubscriptions,
		TelegramChatID:   &chatID,
	}
	uid, err := s.users.RegisterUser(ctx, newUser)
	if err != nil {
		return nil, err
	}
	newUser.UID = uid
	return &newUser, nil
}

// UpgradePlan переводит пользователя на новый тарифный план.
// Для планов с ограниченным сроком действия выставляется дата окончания.
func (s *AuthService) UpgradePlan(ctx context.Context, uid, planType string) (*models.Plan, error) {
	plan, ok := models.Plans[strings.ToLower(planType)]
	if !ok {
		return nil, ErrUnknownPlan
	}

	var planExpiry sql.NullTime
	if plan.DurationDays > 0 {
		planExpiry = sql.NullTime{
			Time:  s.now().UTC().AddDate(0, 0, plan.DurationDays),
			Valid: true,
		}
	}
	if err := s.users.UpdateUserPlan(ctx, uid, plan.Type, plan.MaxSubscriptions, planExpiry); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Promote назначает пользователю новую роль по его публичному идентификатору.
// Назначать можно только роль строго ниже роли инициатора.
func (s *AuthService) Promote(ctx context.Context, actor *models.User, targetPublicID, role string) (*models.User, error) {
	role = strings.ToLower(role)
	rank, ok := models.RoleRank[role]
	if !ok {
		return nil, ErrUnknownRole
	}
	if rank >= models.RoleRank[actor.Role] {
		return nil, fmt.Errorf("cannot assign role %q: equal or above your own", role)
	}

	target, err := s.users.GetUserByPublicID(ctx, targetPublicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.users.UpdateUserRole(ctx, targetPublicID, role); err != nil {
		return nil, err
	}
	target.Role = role
	return target, nil
}
