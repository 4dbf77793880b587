package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ottmanager/subscription-tracker/internal/models"
)

const userColumns = `uid, public_id, email, username, password_hash, role,
			      plan_type, max_subscriptions, plan_expiry, telegram_chat_id, created_at`

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (public_id, email, username, password_hash, role,
			      plan_type, max_subscriptions, plan_expiry, telegram_chat_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.PublicID, user.Email, user.Username, user.PasswordHash, user.Role,
		user.PlanType, user.MaxSubscriptions, user.PlanExpiry, user.TelegramChatID).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// GetUserByPublicID возвращает пользователя по публичному идентификатору (FREE..., USER...).
func (s *Storage) GetUserByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	const op = "storage.GetUserByPublicID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE public_id = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, publicID), op)
}

// GetUserByTelegramChatID возвращает пользователя по привязанному Telegram chat id.
func (s *Storage) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	const op = "storage.GetUserByTelegramChatID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE telegram_chat_id = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, chatID), op)
}

// UpdateUserRole меняет роль пользователя по его публичному идентификатору.
func (s *Storage) UpdateUserRole(ctx context.Context, publicID, role string) error {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $1 WHERE public_id = $2`
	result, err := s.DB.ExecContext(ctx, query, role, publicID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// UpdateUserPlan меняет тарифный план пользователя, его лимит подписок
// и дату окончания плана.
func (s *Storage) UpdateUserPlan(ctx context.Context, userUID, planType string, maxSubscriptions int, planExpiry sql.NullTime) error {
	const op = "storage.UpdateUserPlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET plan_type = $1, max_subscriptions = $2, plan_expiry = $3
			  WHERE uid = $4`
	result, err := s.DB.ExecContext(ctx, query, planType, maxSubscriptions, planExpiry, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var planExpiry sql.NullTime
	var telegramChatID sql.NullInt64
	if err := row.Scan(&u.UID, &u.PublicID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.PlanType, &u.MaxSubscriptions, &planExpiry, &telegramChatID,
		&u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if planExpiry.Valid {
		u.PlanExpiry = &planExpiry.Time
	}
	if telegramChatID.Valid {
		u.TelegramChatID = &telegramChatID.Int64
	}
	return u, nil
}
