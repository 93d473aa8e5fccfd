package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"

	"volunteermatching/internal/domain"
	"volunteermatching/internal/repository/memory"
)

func newTestDispatcher(email domain.EmailService, now time.Time) (*Dispatcher, domain.NotificationStore, domain.ReminderLedger) {
	store := memory.NewNotificationStore()
	ledger := memory.NewReminderLedger()
	return NewDispatcher(store, ledger, email, testclock.NewClock(now), discardLogger()), store, ledger
}

func matchesFor(event *domain.Event, usernames ...string) []domain.MatchResult {
	out := make([]domain.MatchResult, 0, len(usernames))
	for _, u := range usernames {
		out = append(out, domain.MatchResult{VolunteerID: u, EventID: event.Name, Contact: u + "@example.com", Score: 100})
	}
	return out
}

func TestDispatcher_DispatchMatchNotifications(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	email := &fakeEmailService{}
	d, store, _ := newTestDispatcher(email, now)
	event := domain.NewEvent("First Aid Training", []string{"First Aid"}, domain.UrgencyMedium, "2024-12-01T10:00:00.000Z", "Medical Center")

	created, err := d.DispatchMatchNotifications(ctx, event, matchesFor(event, "alice", "bob"))
	require.NoError(t, err)
	require.Len(t, created, 2)

	n := created[0]
	require.Equal(t, 1, n.ID)
	require.Equal(t, "alice", n.RecipientID)
	require.Equal(t, domain.KindEventMatch, n.Kind)
	require.Equal(t, "New event matching your skills: First Aid Training on 2024-12-01T10:00:00.000Z", n.Message)
	require.Equal(t, "First Aid Training", n.RelatedID)
	require.Equal(t, now, n.CreatedAt)
	require.False(t, n.Read)

	// Match notifications are not deduplicated.
	_, err = d.DispatchMatchNotifications(ctx, event, matchesFor(event, "alice"))
	require.NoError(t, err)
	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, 2, list[1].ID)

	require.Len(t, email.sent, 3)
	require.Equal(t, "alice@example.com", email.sent[0].Email)
	require.Equal(t, "Medical Center", email.sent[0].Location)
	require.Equal(t, domain.KindEventMatch, email.kind[0])
}

func TestDispatcher_DispatchReminderNotifications_Dedupe(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	today := startOfDay(now)
	d, store, _ := newTestDispatcher(nil, now)
	event := domain.NewEvent("Tomorrow Event", []string{"Heavy Lifting"}, domain.UrgencyHigh, "2025-03-11", "City Center")
	eventDate := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	matches := matchesFor(event, "alice", "bob")

	created, stats, err := d.DispatchReminderNotifications(ctx, event, eventDate, matches, today)
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, DispatchStats{Created: 2}, stats)
	require.Equal(t, "Reminder: Tomorrow Event is tomorrow!", created[0].Message)
	require.Equal(t, domain.KindEventReminder, created[0].Kind)

	created, stats, err = d.DispatchReminderNotifications(ctx, event, eventDate, matches, today)
	require.NoError(t, err)
	require.Empty(t, created)
	require.Equal(t, DispatchStats{Suppressed: 2}, stats)

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A new calendar day is a new reminder epoch.
	created, _, err = d.DispatchReminderNotifications(ctx, event, eventDate, matches, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, created, 2)
}

func TestDispatcher_ConcurrentReminderDispatchAdmitsOnePerRecipient(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	d, store, _ := newTestDispatcher(nil, now)
	event := domain.NewEvent("Food Drive", []string{"Driving"}, domain.UrgencyLow, "2025-03-11", "Depot")
	eventDate := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	matches := matchesFor(event, "alice", "bob", "carol")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = d.DispatchReminderNotifications(ctx, event, eventDate, matches, startOfDay(now))
		}()
	}
	wg.Wait()

	for _, u := range []string{"alice", "bob", "carol"} {
		list, err := store.List(ctx, u)
		require.NoError(t, err)
		require.Len(t, list, 1, u)
	}
}

func TestDispatcher_ConcurrentMatchDispatchIDsAreGapless(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDispatcher(nil, time.Now())
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			event := domain.NewEvent(fmt.Sprintf("Event %d", i), []string{"x"}, domain.UrgencyLow, "2025-03-11", "x")
			_, _ = d.DispatchMatchNotifications(ctx, event, matchesFor(event, "alice"))
		}(i)
	}
	wg.Wait()

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, n)
	ids := make([]int, 0, n)
	for _, notif := range list {
		ids = append(ids, notif.ID)
	}
	require.True(t, sort.IntsAreSorted(ids))
	for i, id := range ids {
		require.Equal(t, i+1, id)
	}
}

func TestDispatcher_EmailFailureKeepsNotification(t *testing.T) {
	ctx := context.Background()
	email := &fakeEmailService{err: errors.New("smtp down")}
	d, store, _ := newTestDispatcher(email, time.Now())
	event := domain.NewEvent("Food Drive", []string{"Driving"}, domain.UrgencyLow, "2025-03-11", "Depot")

	created, err := d.DispatchMatchNotifications(ctx, event, matchesFor(event, "alice"))
	require.NoError(t, err)
	require.Len(t, created, 1)

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDispatcher_CancelledContextStopsBeforeNextRecipient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, store, _ := newTestDispatcher(nil, time.Now())
	event := domain.NewEvent("Food Drive", []string{"Driving"}, domain.UrgencyLow, "2025-03-11", "Depot")

	created, stats, err := d.DispatchReminderNotifications(ctx, event, time.Now(), matchesFor(event, "alice"), time.Now())
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, created)
	require.Zero(t, stats.Created)

	list, err := store.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestDispatcher_LedgerErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	store := memory.NewNotificationStore()
	ledger := &fakeLedger{ReminderLedger: memory.NewReminderLedger(), err: errors.New("db gone")}
	d := NewDispatcher(store, ledger, nil, testclock.NewClock(time.Now()), discardLogger())
	event := domain.NewEvent("Food Drive", []string{"Driving"}, domain.UrgencyLow, "2025-03-11", "Depot")

	_, _, err := d.DispatchReminderNotifications(ctx, event, time.Now(), matchesFor(event, "alice"), time.Now())
	require.ErrorContains(t, err, "db gone")

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, list, "no notification without a ledger entry")
}

func TestDispatcher_ReminderPastLedgerCompletesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := memory.NewNotificationStore()
	ledger := &fakeLedger{ReminderLedger: memory.NewReminderLedger(), afterRecord: cancel}
	email := &fakeEmailService{}
	d := NewDispatcher(store, ledger, email, testclock.NewClock(time.Now()), discardLogger())
	event := domain.NewEvent("Food Drive", []string{"Driving"}, domain.UrgencyLow, "2025-03-11", "Depot")

	// Shutdown lands between the ledger write and the append for alice.
	created, stats, err := d.DispatchReminderNotifications(ctx, event, time.Now(), matchesFor(event, "alice", "bob"), time.Now())
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, created, 1)
	require.Equal(t, 1, stats.Created)

	list, err := store.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, email.sent, 1, "the stored reminder is still emailed")
	require.Equal(t, "alice@example.com", email.sent[0].Email)

	list, err = store.List(context.Background(), "bob")
	require.NoError(t, err)
	require.Empty(t, list)
}
