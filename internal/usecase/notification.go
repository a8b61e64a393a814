package usecase

import (
	"context"
	"fmt"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/repository"
)

type NotificationUsecase struct {
	notifications repository.NotificationRepository
}

func NewNotificationUsecase(notifications repository.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

func (u *NotificationUsecase) ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	out, err := u.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead flips is_read on a notification the user owns. Reads by other
// users look like a missing notification.
func (u *NotificationUsecase) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	return u.notifications.MarkRead(ctx, id, userID)
}
