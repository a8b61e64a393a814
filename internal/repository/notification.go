package repository

import (
	"context"

	"github.com/clubciclismoepn/backend/internal/domain"
)

type NotificationRepository interface {
	// Create appends to the ledger. Inserting a second reminder for the same
	// (user, event, kind) returns domain.ErrDuplicateNotification.
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)

	// ExistsForEvent reports whether the ledger already holds a notification
	// for the dedup key (userID, eventID, kind).
	ExistsForEvent(ctx context.Context, userID, eventID, kind string) (bool, error)

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)

	// MarkRead flips is_read for a notification owned by userID.
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
}
