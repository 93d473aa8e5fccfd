package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvent_ParseDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	tests := []struct {
		name    string
		date    string
		want    time.Time
		wantErr bool
	}{
		{"utc timestamp", "2024-12-01T10:00:00.000Z", time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC), false},
		{"offset timestamp", "2024-12-01T10:00:00+02:00", time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC), false},
		{"local timestamp", "2024-12-01T10:00:00", time.Date(2024, 12, 1, 10, 0, 0, 0, loc), false},
		{"space separated", "2024-12-01 10:00:00", time.Date(2024, 12, 1, 10, 0, 0, 0, loc), false},
		{"date only", "2024-12-01", time.Date(2024, 12, 1, 0, 0, 0, 0, loc), false},
		{"surrounding spaces", " 2024-12-01 ", time.Date(2024, 12, 1, 0, 0, 0, 0, loc), false},
		{"empty", "", time.Time{}, true},
		{"garbage", "tomorrow", time.Time{}, true},
		{"bad month", "2024-13-01", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvent("Park Cleanup", []string{"x"}, UrgencyLow, tt.date, "Park")
			got, err := e.ParseDate(loc)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidEventDate)
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestEvent_Validate(t *testing.T) {
	valid := func() *Event {
		return NewEvent("Park Cleanup", []string{"Heavy Lifting"}, UrgencyMedium, "2025-03-11", "Park")
	}
	tests := []struct {
		name   string
		mutate func(e *Event)
		want   []string
	}{
		{"valid", func(e *Event) {}, nil},
		{"upper-case urgency", func(e *Event) { e.Urgency = "High" }, nil},
		{"missing name", func(e *Event) { e.Name = "  " }, []string{"event name is required"}},
		{"name too short", func(e *Event) { e.Name = "ab" }, []string{"between 3 and 100"}},
		{"name too long", func(e *Event) { e.Name = strings.Repeat("a", 101) }, []string{"between 3 and 100"}},
		{"two-character multibyte name", func(e *Event) { e.Name = "日本" }, []string{"between 3 and 100"}},
		{"three-character multibyte name", func(e *Event) { e.Name = "日本語" }, nil},
		{"hundred multibyte characters", func(e *Event) { e.Name = strings.Repeat("é", 100) }, nil},
		{"no skills", func(e *Event) { e.RequiredSkills = nil }, []string{"required skill"}},
		{"unknown urgency", func(e *Event) { e.Urgency = "critical" }, []string{"urgency must be one of"}},
		{"bad date", func(e *Event) { e.Date = "someday" }, []string{"event date"}},
		{"several problems", func(e *Event) {
			e.Name = ""
			e.Urgency = ""
			e.Date = ""
		}, []string{"event name is required", "urgency", "event date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := e.Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidEvent)
			for _, w := range tt.want {
				require.ErrorContains(t, err, w)
			}
		})
	}
}

func TestParseUrgency(t *testing.T) {
	u, ok := ParseUrgency(" HIGH ")
	require.True(t, ok)
	require.Equal(t, UrgencyHigh, u)

	_, ok = ParseUrgency("urgent")
	require.False(t, ok)
}

func TestNormalizeSkills(t *testing.T) {
	require.Equal(t, []string{"first aid", "cpr"}, NormalizeSkills([]string{" First Aid", "CPR", "first aid ", "", "cpr"}))
	require.Nil(t, NormalizeSkills(nil))
	require.Empty(t, NormalizeSkills([]string{" ", ""}))
}
