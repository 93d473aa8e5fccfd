package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"volunteermatching/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeVolunteerRegistry is an in-memory VolunteerRegistry for tests.
type fakeVolunteerRegistry struct {
	mu         sync.Mutex
	volunteers []*domain.Volunteer
	failures   int   // ListAll fails this many times before succeeding
	err        error // error returned while failures > 0
	listCalls  int
}

func newFakeVolunteerRegistry(volunteers ...*domain.Volunteer) *fakeVolunteerRegistry {
	return &fakeVolunteerRegistry{volunteers: volunteers}
}

func (f *fakeVolunteerRegistry) ListAll(ctx context.Context) ([]*domain.Volunteer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failures > 0 {
		f.failures--
		return nil, f.err
	}
	out := make([]*domain.Volunteer, len(f.volunteers))
	copy(out, f.volunteers)
	return out, nil
}

func (f *fakeVolunteerRegistry) FindByUsername(ctx context.Context, username string) (*domain.Volunteer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.volunteers {
		if v.Username == username {
			return v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVolunteerRegistry) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// fakeEventRegistry is an in-memory EventRegistry for tests.
type fakeEventRegistry struct {
	mu        sync.Mutex
	events    []*domain.Event
	failures  int
	err       error
	listCalls int
	// block, when set, makes ListAll wait until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func newFakeEventRegistry(events ...*domain.Event) *fakeEventRegistry {
	return &fakeEventRegistry{events: events}
}

func (f *fakeEventRegistry) ListAll(ctx context.Context) ([]*domain.Event, error) {
	f.mu.Lock()
	f.listCalls++
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, f.err
	}
	out := make([]*domain.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeEventRegistry) FindByName(ctx context.Context, name string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRegistry) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// fakeEmailService records every notification email.
type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.NotificationEmailData
	kind []domain.NotificationKind
	err  error
}

func (f *fakeEmailService) SendNotification(ctx context.Context, kind domain.NotificationKind, data *domain.NotificationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	// A real mailer's request fails once its context is done.
	if err := ctx.Err(); err != nil {
		return err
	}
	f.sent = append(f.sent, data)
	f.kind = append(f.kind, kind)
	return nil
}

// fakeLedger wraps a ReminderLedger and can fail TryRecord.
type fakeLedger struct {
	domain.ReminderLedger
	err error
	// afterRecord, when set, runs after each successful TryRecord.
	afterRecord func()
}

func (f *fakeLedger) TryRecord(ctx context.Context, recipientID, eventID string, reminderDate, eventDate time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	fresh, err := f.ReminderLedger.TryRecord(ctx, recipientID, eventID, reminderDate, eventDate)
	if err == nil && f.afterRecord != nil {
		f.afterRecord()
	}
	return fresh, err
}
