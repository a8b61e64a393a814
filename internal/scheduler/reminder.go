// Package scheduler hosts the background processes: the reminder
// dispatcher that notifies event participants ahead of time, and the
// janitor that purges spent recovery tokens.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/metrics"
	"github.com/clubciclismoepn/backend/internal/repository"
	"github.com/robfig/cron/v3"
)

// Reminder scans for events entering the lead-time window on every tick
// and appends at-most-once notifications for their participants. The
// notification ledger's unique dedup index makes delivery idempotent
// across ticks and restarts.
type Reminder struct {
	events        repository.EventRepository
	notifications repository.NotificationRepository
	logger        *slog.Logger
	interval      time.Duration
	lead          time.Duration
	loc           *time.Location
}

func NewReminder(
	events repository.EventRepository,
	notifications repository.NotificationRepository,
	logger *slog.Logger,
	interval time.Duration,
	lead time.Duration,
	loc *time.Location,
) *Reminder {
	return &Reminder{
		events:        events,
		notifications: notifications,
		logger:        logger.With("component", "reminder"),
		interval:      interval,
		lead:          lead,
		loc:           loc,
	}
}

// Start runs the dispatcher until ctx is cancelled. SkipIfStillRunning
// drops a tick that comes due while the previous one is still going, and
// Recover keeps a panicking tick from taking down the process.
func (r *Reminder) Start(ctx context.Context) {
	cl := &cronLogger{logger: r.logger}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)))
	c.Schedule(cron.Every(r.interval), cron.FuncJob(func() { r.tick(ctx) }))
	c.Start()

	r.logger.Info("reminder dispatcher started", "interval", r.interval, "lead", r.lead)

	<-ctx.Done()
	<-c.Stop().Done()
	r.logger.Info("reminder dispatcher shut down")
}

// tick processes one matching window. A failure on one event or
// participant is logged and skipped; the rest of the batch still runs.
func (r *Reminder) tick(ctx context.Context) {
	started := time.Now()
	defer func() {
		metrics.ReminderTickDuration.Observe(time.Since(started).Seconds())
	}()

	// Events starting lead-time from now, matched minute by minute. The
	// window floor pairs with the dedup index: the window keeps the scan
	// cheap, the index guarantees at-most-once.
	windowStart := started.Add(r.lead).UTC().Truncate(time.Minute)
	windowEnd := windowStart.Add(time.Minute)

	events, err := r.events.StartingBetween(ctx, windowStart, windowEnd)
	if err != nil {
		metrics.ReminderErrorsTotal.Inc()
		r.logger.Error("query upcoming events", "error", err)
		return
	}
	if len(events) == 0 {
		return
	}

	r.logger.Info("events entering reminder window", "count", len(events), "window_start", windowStart)

	for _, ev := range events {
		participants, err := r.events.ParticipantIDs(ctx, ev.ID)
		if err != nil {
			metrics.ReminderErrorsTotal.Inc()
			r.logger.Error("list participants", "event_id", ev.ID, "error", err)
			continue
		}
		for _, userID := range participants {
			if err := r.remind(ctx, userID, ev); err != nil {
				metrics.ReminderErrorsTotal.Inc()
				r.logger.Error("send reminder", "event_id", ev.ID, "user_id", userID, "error", err)
			}
		}
	}
}

func (r *Reminder) remind(ctx context.Context, userID string, ev *domain.Event) error {
	sent, err := r.notifications.ExistsForEvent(ctx, userID, ev.ID, domain.KindEventReminder)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if sent {
		return nil
	}

	eventID := ev.ID
	message := fmt.Sprintf(
		"Recuerda que el evento %s %s es mañana a las %s. ¡Prepárate!",
		ev.Type, ev.RouteName, ev.StartsAt.In(r.loc).Format("15:04"),
	)

	_, err = r.notifications.Create(ctx, &domain.Notification{
		UserID:  userID,
		EventID: &eventID,
		Kind:    domain.KindEventReminder,
		Title:   domain.ReminderTitle,
		Message: message,
	})
	if errors.Is(err, domain.ErrDuplicateNotification) {
		// Lost a race with an earlier tick or another instance; the ledger wins.
		return nil
	}
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}

	metrics.RemindersSentTotal.Inc()
	r.logger.Info("reminder sent", "event_id", ev.ID, "user_id", userID)
	return nil
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
