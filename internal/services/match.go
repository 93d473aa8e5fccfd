package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/juju/clock"

	"volunteermatching/internal/domain"
)

type matchService struct {
	volunteers domain.VolunteerRegistry
	events     domain.EventRegistry
	store      domain.NotificationStore
	dispatcher *Dispatcher
	clock      clock.Clock
	logger     *slog.Logger
	maxMatches int
	retry      RetryPolicy
}

// MatchServiceConfig tunes a MatchService. Zero values take defaults.
type MatchServiceConfig struct {
	MaxMatches int
	Retry      RetryPolicy
}

// NewMatchService returns the MatchService used by the application layer.
func NewMatchService(
	volunteers domain.VolunteerRegistry,
	events domain.EventRegistry,
	store domain.NotificationStore,
	dispatcher *Dispatcher,
	clk clock.Clock,
	logger *slog.Logger,
	cfg MatchServiceConfig,
) domain.MatchService {
	if clk == nil {
		clk = clock.WallClock
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = domain.DefaultMaxMatches
	}
	return &matchService{
		volunteers: volunteers,
		events:     events,
		store:      store,
		dispatcher: dispatcher,
		clock:      clk,
		logger:     logger,
		maxMatches: cfg.MaxMatches,
		retry:      cfg.Retry,
	}
}

func (s *matchService) ComputeMatchesForEvent(ctx context.Context, eventName string) ([]domain.MatchResult, error) {
	var event *domain.Event
	err := registryCall(ctx, s.retry, s.logger, "find event", func(ctx context.Context) error {
		var err error
		event, err = s.events.FindByName(ctx, eventName)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	volunteers, err := listVolunteers(ctx, s.volunteers, s.retry, s.logger)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	return RankVolunteersForEvent(event, volunteers, s.maxMatches, s.clock.Now()), nil
}

func (s *matchService) ComputeMatchesForVolunteer(ctx context.Context, username string) ([]domain.MatchResult, error) {
	var volunteer *domain.Volunteer
	err := registryCall(ctx, s.retry, s.logger, "find volunteer", func(ctx context.Context) error {
		var err error
		volunteer, err = s.volunteers.FindByUsername(ctx, username)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find volunteer: %w", err)
	}
	events, err := listEvents(ctx, s.events, s.retry, s.logger)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return RankEventsForVolunteer(volunteer, events, 0, s.clock.Now()), nil
}

func (s *matchService) OnEventCreated(ctx context.Context, event *domain.Event) ([]domain.MatchResult, []*domain.Notification, error) {
	if event == nil {
		return nil, nil, fmt.Errorf("%w: event is nil", domain.ErrInvalidEvent)
	}
	if err := event.Validate(); err != nil {
		return nil, nil, err
	}
	// Normalized on a copy; the caller's event is not modified.
	ev := *event
	urgency, ok := domain.ParseUrgency(string(ev.Urgency))
	if !ok {
		return nil, nil, fmt.Errorf("%w: urgency %q", domain.ErrInvalidEvent, ev.Urgency)
	}
	ev.Urgency = urgency
	event = &ev

	volunteers, err := listVolunteers(ctx, s.volunteers, s.retry, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("list volunteers: %w", err)
	}
	matches := RankVolunteersForEvent(event, volunteers, s.maxMatches, s.clock.Now())
	notifications, err := s.dispatcher.DispatchMatchNotifications(ctx, event, matches)
	if err != nil {
		return matches, notifications, fmt.Errorf("dispatch match notifications: %w", err)
	}
	s.logger.InfoContext(ctx, "event matches dispatched", "event", event.Name, "matches", len(matches), "notifications", len(notifications))
	return matches, notifications, nil
}

func (s *matchService) GetNotifications(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	list, err := s.store.List(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationsRead returns ErrNotFound when ids is non-empty and none of
// them exist in the recipient's log.
func (s *matchService) MarkNotificationsRead(ctx context.Context, recipientID string, ids []int) (int, error) {
	updated, err := s.store.MarkRead(ctx, recipientID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	if updated == 0 && len(ids) > 0 {
		return 0, domain.ErrNotFound
	}
	return updated, nil
}
