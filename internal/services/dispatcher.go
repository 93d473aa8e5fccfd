package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"volunteermatching/internal/domain"
)

const (
	matchMessageFormat    = "New event matching your skills: %s on %s"
	reminderMessageFormat = "Reminder: %s is tomorrow!"
)

// DispatchStats summarizes one reminder dispatch.
type DispatchStats struct {
	Created    int
	Suppressed int
}

// Dispatcher turns ranked matches into notifications.
type Dispatcher struct {
	store  domain.NotificationStore
	ledger domain.ReminderLedger
	email  domain.EmailService
	clock  clock.Clock
	logger *slog.Logger
}

// NewDispatcher returns a Dispatcher. email may be nil, in which case
// notifications are only recorded in the store.
func NewDispatcher(store domain.NotificationStore, ledger domain.ReminderLedger, email domain.EmailService, clk clock.Clock, logger *slog.Logger) *Dispatcher {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Dispatcher{
		store:  store,
		ledger: ledger,
		email:  email,
		clock:  clk,
		logger: logger,
	}
}

// DispatchMatchNotifications creates one event_match notification per match.
// Repeated calls for the same event notify again.
func (d *Dispatcher) DispatchMatchNotifications(ctx context.Context, event *domain.Event, matches []domain.MatchResult) ([]*domain.Notification, error) {
	message := fmt.Sprintf(matchMessageFormat, event.Name, event.Date)
	created := make([]*domain.Notification, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		writeCtx := context.WithoutCancel(ctx)
		n, err := d.store.Append(writeCtx,
			domain.NewNotification(m.VolunteerID, domain.KindEventMatch, message, event.Name, d.clock.Now()))
		if err != nil {
			return created, fmt.Errorf("append match notification for %s: %w", m.VolunteerID, err)
		}
		created = append(created, n)
		d.deliver(writeCtx, event, m, n)
	}
	return created, nil
}

// DispatchReminderNotifications creates one event_reminder notification per
// match unless the ledger already holds (recipient, event, today). The ledger
// entry is written before the notification; once written, the append and the
// email complete even if ctx is cancelled.
func (d *Dispatcher) DispatchReminderNotifications(ctx context.Context, event *domain.Event, eventDate time.Time, matches []domain.MatchResult, today time.Time) ([]*domain.Notification, DispatchStats, error) {
	var stats DispatchStats
	message := fmt.Sprintf(reminderMessageFormat, event.Name)
	created := make([]*domain.Notification, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return created, stats, err
		}
		writeCtx := context.WithoutCancel(ctx)
		fresh, err := d.ledger.TryRecord(writeCtx, m.VolunteerID, event.Name, today, eventDate)
		if err != nil {
			return created, stats, fmt.Errorf("record reminder for %s: %w", m.VolunteerID, err)
		}
		if !fresh {
			stats.Suppressed++
			d.logger.DebugContext(ctx, "duplicate reminder suppressed", "recipient", m.VolunteerID, "event", event.Name)
			continue
		}
		n, err := d.store.Append(writeCtx,
			domain.NewNotification(m.VolunteerID, domain.KindEventReminder, message, event.Name, d.clock.Now()))
		if err != nil {
			return created, stats, fmt.Errorf("append reminder for %s: %w", m.VolunteerID, err)
		}
		stats.Created++
		created = append(created, n)
		d.deliver(writeCtx, event, m, n)
	}
	return created, stats, nil
}

// deliver emails n to the match's contact. Failures are logged only.
func (d *Dispatcher) deliver(ctx context.Context, event *domain.Event, m domain.MatchResult, n *domain.Notification) {
	if d.email == nil {
		return
	}
	data := &domain.NotificationEmailData{
		Email:     m.Contact,
		Username:  m.VolunteerID,
		EventName: event.Name,
		EventDate: event.Date,
		Location:  event.Location,
		Message:   n.Message,
		Score:     m.Score,
	}
	if err := d.email.SendNotification(ctx, n.Kind, data); err != nil {
		d.logger.WarnContext(ctx, "notification email failed", "recipient", m.VolunteerID, "event", event.Name, "kind", n.Kind, "err", err)
	}
}
