package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"volunteermatching/internal/domain"
)

// ErrSchedulerStarted is returned by Start when the scheduler is running or was stopped.
var ErrSchedulerStarted = errors.New("reminder scheduler already started")

// SchedulerState is the lifecycle state of a ReminderScheduler.
type SchedulerState int32

const (
	StateIdle SchedulerState = iota
	StateSweeping
	StateStopped
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSweeping:
		return "sweeping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// SchedulerConfig configures a ReminderScheduler. Zero values take defaults.
type SchedulerConfig struct {
	Interval   time.Duration
	Window     time.Duration
	MaxMatches int
	Location   *time.Location
	Retry      RetryPolicy
}

const (
	DefaultReminderInterval = time.Hour
	DefaultReminderWindow   = 24 * time.Hour
)

// SweepReport describes the outcome of one sweep.
type SweepReport struct {
	SweepID             string
	StartedAt           time.Time
	FinishedAt          time.Time
	EventsSeen          int
	EventsQualified     int
	InvalidDates        int
	EventsFailed        int
	RemindersCreated    int
	RemindersSuppressed int
	LedgerPruned        int
}

// ReminderScheduler periodically sweeps all events and sends reminders for
// those starting within the reminder window. Sweeps never overlap.
type ReminderScheduler struct {
	events     domain.EventRegistry
	volunteers domain.VolunteerRegistry
	dispatcher *Dispatcher
	ledger     domain.ReminderLedger
	clock      clock.Clock
	logger     *slog.Logger
	cfg        SchedulerConfig

	sweeping atomic.Bool
	started  atomic.Bool

	mu    sync.Mutex
	state SchedulerState
}

// NewReminderScheduler returns an idle scheduler.
func NewReminderScheduler(
	events domain.EventRegistry,
	volunteers domain.VolunteerRegistry,
	dispatcher *Dispatcher,
	ledger domain.ReminderLedger,
	clk clock.Clock,
	logger *slog.Logger,
	cfg SchedulerConfig,
) *ReminderScheduler {
	if clk == nil {
		clk = clock.WallClock
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReminderInterval
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultReminderWindow
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = domain.DefaultMaxMatches
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ReminderScheduler{
		events:     events,
		volunteers: volunteers,
		dispatcher: dispatcher,
		ledger:     ledger,
		clock:      clk,
		logger:     logger,
		cfg:        cfg,
	}
}

// State reports the current lifecycle state.
func (s *ReminderScheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ReminderScheduler) setState(state SchedulerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	s.state = state
}

// SchedulerHandle controls a running scheduler loop.
type SchedulerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop asks the loop to exit and waits for it. A sweep in progress stops at
// the next event boundary; writes already past the ledger check complete.
func (h *SchedulerHandle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the loop has exited.
func (h *SchedulerHandle) Done() <-chan struct{} {
	return h.done
}

// Start runs the sweep loop in a background goroutine until ctx is cancelled
// or the returned handle is stopped. A scheduler can be started only once.
func (s *ReminderScheduler) Start(ctx context.Context) (*SchedulerHandle, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, ErrSchedulerStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &SchedulerHandle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		s.loop(ctx)
	}()
	return h, nil
}

func (s *ReminderScheduler) loop(ctx context.Context) {
	s.logger.InfoContext(ctx, "reminder scheduler started", "interval", s.cfg.Interval.String(), "window", s.cfg.Window.String())
	defer func() {
		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()
		s.logger.Info("reminder scheduler stopped")
	}()

	timer := s.clock.NewTimer(s.cfg.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.Chan():
			report, err := s.RunSweep(ctx)
			switch {
			case errors.Is(err, domain.ErrSweepInProgress):
				s.logger.DebugContext(ctx, "tick dropped, sweep still running")
			case err != nil && ctx.Err() != nil:
				// Shutdown; the next select returns.
			case err != nil:
				s.logger.ErrorContext(ctx, "reminder sweep failed", "sweep_id", report.SweepID, "err", err)
			}
			timer.Reset(s.cfg.Interval)
		}
	}
}

// RunSweep performs one sweep now. It returns ErrSweepInProgress without
// doing anything if another sweep is running on this scheduler. Per-event
// failures are logged and counted in the report, never returned.
func (s *ReminderScheduler) RunSweep(ctx context.Context) (SweepReport, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return SweepReport{}, domain.ErrSweepInProgress
	}
	defer s.sweeping.Store(false)
	s.setState(StateSweeping)
	defer s.setState(StateIdle)

	now := s.clock.Now().In(s.cfg.Location)
	today := startOfDay(now)
	report := SweepReport{SweepID: uuid.NewString(), StartedAt: now}
	logger := s.logger.With("sweep_id", report.SweepID)

	events, err := listEvents(ctx, s.events, s.cfg.Retry, logger)
	if err != nil {
		report.FinishedAt = s.clock.Now()
		return report, err
	}

	var volunteers []*domain.Volunteer
	loaded := false
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = s.clock.Now()
			return report, err
		}
		if event == nil {
			continue
		}
		report.EventsSeen++

		eventDate, err := event.ParseDate(s.cfg.Location)
		if err != nil {
			report.InvalidDates++
			logger.WarnContext(ctx, "skipping event with invalid date", "event", event.Name, "date", event.Date, "err", err)
			continue
		}
		if !inReminderWindow(eventDate, now, s.cfg.Window) {
			continue
		}
		report.EventsQualified++

		if !loaded {
			volunteers, err = listVolunteers(ctx, s.volunteers, s.cfg.Retry, logger)
			if err != nil {
				if ctx.Err() != nil {
					report.FinishedAt = s.clock.Now()
					return report, ctx.Err()
				}
				report.EventsFailed++
				logger.ErrorContext(ctx, "skipping event, volunteers unavailable", "event", event.Name, "err", err)
				continue
			}
			loaded = true
		}

		matches := RankVolunteersForEvent(event, volunteers, s.cfg.MaxMatches, now)
		_, stats, err := s.dispatcher.DispatchReminderNotifications(ctx, event, eventDate, matches, today)
		report.RemindersCreated += stats.Created
		report.RemindersSuppressed += stats.Suppressed
		if err != nil {
			if ctx.Err() != nil {
				report.FinishedAt = s.clock.Now()
				return report, ctx.Err()
			}
			report.EventsFailed++
			logger.ErrorContext(ctx, "reminder dispatch failed", "event", event.Name, "err", err)
			continue
		}
		logger.DebugContext(ctx, "reminders dispatched", "event", event.Name, "matches", len(matches), "created", stats.Created, "suppressed", stats.Suppressed)
	}

	pruned, err := s.ledger.Prune(ctx, today)
	if err != nil {
		logger.WarnContext(ctx, "reminder ledger prune failed", "err", err)
	}
	report.LedgerPruned = pruned
	report.FinishedAt = s.clock.Now()

	logger.InfoContext(ctx, "reminder sweep completed",
		"events", report.EventsSeen,
		"qualified", report.EventsQualified,
		"invalid_dates", report.InvalidDates,
		"failed", report.EventsFailed,
		"created", report.RemindersCreated,
		"suppressed", report.RemindersSuppressed,
		"pruned", report.LedgerPruned)
	return report, nil
}

// inReminderWindow reports whether now <= eventDate <= now+window.
func inReminderWindow(eventDate, now time.Time, window time.Duration) bool {
	return !eventDate.Before(now) && !eventDate.After(now.Add(window))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
