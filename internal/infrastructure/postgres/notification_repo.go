package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, user_id, event_id, kind, title, message, is_read, created_at`

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, event_id, kind, title, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + notificationColumns

	row := r.pool.QueryRow(ctx, query, n.UserID, n.EventID, n.Kind, n.Title, n.Message)
	created, err := scanNotification(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateNotification
		}
		return nil, err
	}
	return created, nil
}

func (r *NotificationRepository) ExistsForEvent(ctx context.Context, userID, eventID, kind string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND event_id = $2 AND kind = $3
		)`, userID, eventID, kind).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check notification exists: %w", err)
	}
	return exists, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	// Ownership is part of the predicate so one user cannot flip another's.
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	row := r.pool.QueryRow(ctx, query, id, userID)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.EventID, &n.Kind, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	return &n, nil
}
