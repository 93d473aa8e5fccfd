// Package memory holds process-local implementations of the engine's stores.
package memory

import (
	"context"
	"sync"

	"github.com/im7mortal/kmutex"

	"volunteermatching/internal/domain"
)

type notificationStore struct {
	// keys serializes every read and write of a single recipient's log.
	keys *kmutex.Kmutex

	// mu guards the logs map itself, not the entries.
	mu   sync.RWMutex
	logs map[string][]*domain.Notification
}

// NewNotificationStore returns an in-memory NotificationStore with one lock per recipient.
func NewNotificationStore() domain.NotificationStore {
	return &notificationStore{
		keys: kmutex.New(),
		logs: make(map[string][]*domain.Notification),
	}
}

// Append never observes ctx cancellation: once a caller decides to write, the
// write completes so the log and any ledger entry stay consistent.
func (s *notificationStore) Append(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	s.keys.Lock(n.RecipientID)
	defer s.keys.Unlock(n.RecipientID)

	s.mu.RLock()
	next := len(s.logs[n.RecipientID]) + 1
	s.mu.RUnlock()

	stored := *n
	stored.ID = next

	s.mu.Lock()
	s.logs[n.RecipientID] = append(s.logs[n.RecipientID], &stored)
	s.mu.Unlock()

	out := stored
	return &out, nil
}

func (s *notificationStore) List(_ context.Context, recipientID string) ([]*domain.Notification, error) {
	s.keys.Lock(recipientID)
	defer s.keys.Unlock(recipientID)

	s.mu.RLock()
	log := s.logs[recipientID]
	s.mu.RUnlock()

	out := make([]*domain.Notification, 0, len(log))
	for _, n := range log {
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func (s *notificationStore) MarkRead(_ context.Context, recipientID string, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	s.keys.Lock(recipientID)
	defer s.keys.Unlock(recipientID)

	s.mu.RLock()
	log := s.logs[recipientID]
	s.mu.RUnlock()

	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	updated := 0
	for _, n := range log {
		if _, ok := want[n.ID]; ok {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}
