package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Urgency is the priority an event organizer assigns to an event.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency normalizes s and reports whether it names a known urgency.
func ParseUrgency(s string) (Urgency, bool) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return u, true
	}
	return "", false
}

const (
	minEventNameLength = 3
	maxEventNameLength = 100
)

// Event represents a volunteering event. Name doubles as the event identifier.
// Date holds the raw value supplied by the registry; use ParseDate to read it.
type Event struct {
	Name           string   `json:"event_name"`
	RequiredSkills []string `json:"required_skills"`
	Urgency        Urgency  `json:"urgency"`
	Date           string   `json:"event_date"`
	Location       string   `json:"location"`
	Description    string   `json:"description,omitempty"`
}

// NewEvent returns a new Event with the given fields.
func NewEvent(name string, requiredSkills []string, urgency Urgency, date, location string) *Event {
	return &Event{
		Name:           name,
		RequiredSkills: requiredSkills,
		Urgency:        urgency,
		Date:           date,
		Location:       location,
	}
}

// eventDateLayouts are tried in order. Layouts without a zone are read in the
// caller's location.
var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate parses the event date. Calendar dates resolve to midnight in loc.
func (e *Event) ParseDate(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	raw := strings.TrimSpace(e.Date)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: event %q has no date", ErrInvalidEventDate, e.Name)
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: event %q: %q", ErrInvalidEventDate, e.Name, raw)
}

// Validate checks the event once at the boundary. It returns nil or an error
// wrapping ErrInvalidEvent that lists every violated rule.
func (e *Event) Validate() error {
	var errs []string
	name := strings.TrimSpace(e.Name)
	nameLen := utf8.RuneCountInString(name)
	switch {
	case name == "":
		errs = append(errs, "event name is required")
	case nameLen < minEventNameLength || nameLen > maxEventNameLength:
		errs = append(errs, fmt.Sprintf("event name must be between %d and %d characters", minEventNameLength, maxEventNameLength))
	}
	if len(NormalizeSkills(e.RequiredSkills)) == 0 {
		errs = append(errs, "at least one required skill is needed")
	}
	if _, ok := ParseUrgency(string(e.Urgency)); !ok {
		errs = append(errs, "urgency must be one of: low, medium, high")
	}
	if _, err := e.ParseDate(time.UTC); err != nil {
		errs = append(errs, "event date is missing or invalid")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, strings.Join(errs, "; "))
	}
	return nil
}

// NormalizeSkills lowercases and trims skills, dropping blanks and duplicates.
// The result preserves first-seen order.
func NormalizeSkills(skills []string) []string {
	if len(skills) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// EventRegistry is the read side of event storage consumed by the engine.
type EventRegistry interface {
	ListAll(ctx context.Context) ([]*Event, error)
	FindByName(ctx context.Context, name string) (*Event, error)
}
