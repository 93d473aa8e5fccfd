package domain

import (
	"context"
	"time"
)

// DefaultMaxMatches caps the volunteers returned for a single event.
const DefaultMaxMatches = 5

// MatchThreshold is the exclusive lower bound a score must exceed to qualify.
const MatchThreshold = 50.0

// MatchResult pairs a volunteer with an event and their compatibility score.
// Results are computed on demand and never persisted.
type MatchResult struct {
	VolunteerID string     `json:"username"`
	EventID     string     `json:"event_name"`
	Contact     string     `json:"email"`
	Score       float64    `json:"score"`
	ComputedAt  time.Time  `json:"computed_at"`
	Event       *Event     `json:"event,omitempty"`
	Volunteer   *Volunteer `json:"-"`
}

// MatchService is the surface the application layer uses to query matches,
// react to new events and read notifications.
type MatchService interface {
	ComputeMatchesForEvent(ctx context.Context, eventName string) ([]MatchResult, error)
	ComputeMatchesForVolunteer(ctx context.Context, username string) ([]MatchResult, error)
	// OnEventCreated validates the event, ranks volunteers and dispatches event_match notifications.
	OnEventCreated(ctx context.Context, event *Event) ([]MatchResult, []*Notification, error)
	GetNotifications(ctx context.Context, recipientID string) ([]*Notification, error)
	MarkNotificationsRead(ctx context.Context, recipientID string, ids []int) (int, error)
}
