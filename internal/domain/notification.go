package domain

import (
	"context"
	"time"
)

// NotificationKind classifies a notification.
type NotificationKind string

const (
	KindEventMatch    NotificationKind = "event_match"
	KindEventReminder NotificationKind = "event_reminder"
)

// Notification is an entry in a recipient's notification log.
// ID is assigned by the store and is gapless within one recipient.
type Notification struct {
	ID          int              `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Kind        NotificationKind `json:"type"`
	Message     string           `json:"message"`
	RelatedID   string           `json:"related_id"`
	CreatedAt   time.Time        `json:"created_at"`
	Read        bool             `json:"read"`
}

// NewNotification returns an unread notification. ID is set by the store on append.
func NewNotification(recipientID string, kind NotificationKind, message, relatedID string, createdAt time.Time) *Notification {
	return &Notification{
		RecipientID: recipientID,
		Kind:        kind,
		Message:     message,
		RelatedID:   relatedID,
		CreatedAt:   createdAt,
	}
}

// NotificationStore holds one append-only log per recipient.
type NotificationStore interface {
	// Append assigns the next ID in the recipient's log and stores n.
	Append(ctx context.Context, n *Notification) (*Notification, error)
	// List returns copies of the recipient's notifications in insertion order.
	List(ctx context.Context, recipientID string) ([]*Notification, error)
	// MarkRead flips the read flag of the given IDs and returns how many exist.
	MarkRead(ctx context.Context, recipientID string, ids []int) (int, error)
}

// ReminderLedger records which reminders were already sent.
type ReminderLedger interface {
	// TryRecord atomically inserts (recipient, event, reminderDate) and
	// reports whether it was absent before the call.
	TryRecord(ctx context.Context, recipientID, eventID string, reminderDate, eventDate time.Time) (bool, error)
	// Prune removes entries for events dated before cutoff and returns how many went.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}
