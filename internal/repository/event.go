package repository

import (
	"context"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
)

// EventRepository is the dispatcher's read-only view over events and
// participations, which are owned by the CRUD side of the system.
type EventRepository interface {
	// StartingBetween returns events with from <= starts_at < to, with the
	// route name already joined in.
	StartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error)

	// ParticipantIDs returns the user IDs registered for the event.
	ParticipantIDs(ctx context.Context, eventID string) ([]string, error)
}
