package domain

import (
	"errors"
	"time"
)

var (
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrDuplicateNotification = errors.New("notification already delivered")
)

// KindEventReminder is the dispatcher's notification kind; together with
// (user_id, event_id) it forms the delivery dedup key.
const KindEventReminder = "event_reminder"

// ReminderTitle is the fixed title of dispatcher reminders.
const ReminderTitle = "¡Recordatorio de evento!"

type Notification struct {
	ID        string
	UserID    string
	EventID   *string // nil for notifications not tied to an event
	Kind      string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
