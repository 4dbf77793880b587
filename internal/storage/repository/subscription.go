package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ottmanager/subscription-tracker/internal/models"
)

// likeEscaper экранирует метасимволы LIKE в пользовательском вводе,
// чтобы % и _ сопоставлялись буквально.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (public_id, owner_uid, username, email,
			      service_name, expiry_date, amount_received)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.PublicID, sub.OwnerUID, sub.Username, sub.Email,
		sub.ServiceName, sub.ExpiryDate, sub.AmountReceived).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadSubscription возвращает подписку владельца по её ID.
func (s *Storage) ReadSubscription(ctx context.Context, ownerUID string, id int) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, public_id, owner_uid, username, email, service_name,
			      expiry_date, amount_received, created_at
			  FROM subscriptions
			  WHERE owner_uid = $1 AND id = $2`
	row := s.DB.QueryRowContext(ctx, query, ownerUID, id)

	var result models.Subscription
	if err := row.Scan(&result.ID, &result.PublicID, &result.OwnerUID, &result.Username,
		&result.Email, &result.ServiceName, &result.ExpiryDate, &result.AmountReceived,
		&result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// RemoveSubscription удаляет подписку владельца по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, ownerUID string, id int) (int, error) {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE owner_uid = $1 AND id = $2`
	result, err := s.DB.ExecContext(ctx, query, ownerUID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FindByPublicIDPrefix возвращает подписки владельца, public_id которых
// начинается с prefix. Команда /delete принимает такой префикс.
func (s *Storage) FindByPublicIDPrefix(ctx context.Context, ownerUID, prefix string) ([]*models.Subscription, error) {
	const op = "storage.FindByPublicIDPrefix"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, public_id, owner_uid, username, email, service_name,
			      expiry_date, amount_received, created_at
			  FROM subscriptions
			  WHERE owner_uid = $1 AND public_id::text LIKE $2 || '%' ESCAPE '\'
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID, escapeLikePattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSubscriptions(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListSubscriptions возвращает список подписок владельца с пагинацией.
func (s *Storage) ListSubscriptions(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, public_id, owner_uid, username, email, service_name,
			      expiry_date, amount_received, created_at
			  FROM subscriptions
			  WHERE owner_uid = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSubscriptions(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllSubscriptions возвращает список всех подписок с пагинацией.
func (s *Storage) ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, public_id, owner_uid, username, email, service_name,
			      expiry_date, amount_received, created_at
			  FROM subscriptions
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSubscriptions(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SearchSubscriptions ищет подписки владельца по подстроке
// в имени аккаунта, почте или названии сервиса (без учёта регистра).
func (s *Storage) SearchSubscriptions(ctx context.Context, ownerUID, query string) ([]*models.Subscription, error) {
	const op = "storage.SearchSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sqlQuery := `SELECT id, public_id, owner_uid, username, email, service_name,
			      expiry_date, amount_received, created_at
			  FROM subscriptions
			  WHERE owner_uid = $1
			    AND (username ILIKE '%' || $2 || '%' ESCAPE '\'
			      OR email ILIKE '%' || $2 || '%' ESCAPE '\'
			      OR service_name ILIKE '%' || $2 || '%' ESCAPE '\')
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, sqlQuery, ownerUID, escapeLikePattern(query))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSubscriptions(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountSubscriptions возвращает количество подписок владельца.
// Используется для проверки лимита тарифного плана.
func (s *Storage) CountSubscriptions(ctx context.Context, ownerUID string) (int, error) {
	const op = "storage.CountSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM subscriptions WHERE owner_uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, ownerUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListExpiryDates возвращает даты окончания всех подписок владельца.
// Статистика по статусам считается в бизнес-логике из этих дат.
func (s *Storage) ListExpiryDates(ctx context.Context, ownerUID string) ([]time.Time, error) {
	const op = "storage.ListExpiryDates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT expiry_date FROM subscriptions WHERE owner_uid = $1`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindExpiringWithin находит подписки всех пользователей, истекающие
// в ближайшие days дней (включая сегодняшний день).
func (s *Storage) FindExpiringWithin(ctx context.Context, days int) ([]*models.ReminderInfo, error) {
	const op = "storage.FindExpiringWithin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT email, username, service_name, expiry_date,
			      (expiry_date - CURRENT_DATE) AS days_left
			  FROM subscriptions
			  WHERE expiry_date >= CURRENT_DATE
			    AND expiry_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
			  ORDER BY expiry_date`
	rows, err := s.DB.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ReminderInfo
	for rows.Next() {
		var info models.ReminderInfo
		if err := rows.Scan(&info.Email, &info.Username, &info.ServiceName,
			&info.ExpiryDate, &info.DaysLeft); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindExpiringWithinForOwner находит истекающие подписки одного владельца.
// Используется командой /sendreminder.
func (s *Storage) FindExpiringWithinForOwner(ctx context.Context, ownerUID string, days int) ([]*models.ReminderInfo, error) {
	const op = "storage.FindExpiringWithinForOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT email, username, service_name, expiry_date,
			      (expiry_date - CURRENT_DATE) AS days_left
			  FROM subscriptions
			  WHERE owner_uid = $1
			    AND expiry_date >= CURRENT_DATE
			    AND expiry_date <= CURRENT_DATE + $2 * INTERVAL '1 day'
			  ORDER BY expiry_date`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID, days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ReminderInfo
	for rows.Next() {
		var info models.ReminderInfo
		if err := rows.Scan(&info.Email, &info.Username, &info.ServiceName,
			&info.ExpiryDate, &info.DaysLeft); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSubscriptions(rows *sql.Rows) ([]*models.Subscription, error) {
	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.PublicID, &item.OwnerUID, &item.Username,
			&item.Email, &item.ServiceName, &item.ExpiryDate, &item.AmountReceived,
			&item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
