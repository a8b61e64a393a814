package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) StartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.event_type, e.route_id, r.name, e.meeting_point, e.starts_at
		FROM events e
		JOIN routes r ON r.id = e.route_id
		WHERE e.starts_at >= $1 AND e.starts_at < $2
		ORDER BY e.starts_at ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events in window: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Type, &e.RouteID, &e.RouteName, &e.MeetingPoint, &e.StartsAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *EventRepository) ParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM event_participants WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
