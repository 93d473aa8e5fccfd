package memory

import (
	"context"
	"sync"
	"time"

	"volunteermatching/internal/domain"
)

type ledgerKey struct {
	recipientID  string
	eventID      string
	reminderDate string
}

type reminderLedger struct {
	mu      sync.Mutex
	entries map[ledgerKey]time.Time // value is the event date, used by Prune
}

// NewReminderLedger returns an in-memory ReminderLedger.
func NewReminderLedger() domain.ReminderLedger {
	return &reminderLedger{entries: make(map[ledgerKey]time.Time)}
}

func (l *reminderLedger) TryRecord(_ context.Context, recipientID, eventID string, reminderDate, eventDate time.Time) (bool, error) {
	key := ledgerKey{
		recipientID:  recipientID,
		eventID:      eventID,
		reminderDate: reminderDate.Format(time.DateOnly),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[key]; ok {
		return false, nil
	}
	l.entries[key] = eventDate
	return true, nil
}

func (l *reminderLedger) Prune(_ context.Context, cutoff time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for k, eventDate := range l.entries {
		if eventDate.Before(cutoff) {
			delete(l.entries, k)
			removed++
		}
	}
	return removed, nil
}
