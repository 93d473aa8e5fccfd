package services

import (
	"sort"
	"time"

	"volunteermatching/internal/domain"
)

// Score returns the percentage of requiredSkills covered by volunteerSkills.
// Matching is case-insensitive; an empty or nil set on either side scores 0.
// The denominator is the required set, so the result never exceeds 100.
func Score(volunteerSkills, requiredSkills []string) float64 {
	required := domain.NormalizeSkills(requiredSkills)
	have := domain.NormalizeSkills(volunteerSkills)
	if len(required) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	matched := 0
	for _, s := range required {
		if _, ok := set[s]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(required)) * 100
}

// RankVolunteersForEvent returns the volunteers scoring above the match
// threshold for event, best first, capped at maxMatches (DefaultMaxMatches
// when maxMatches <= 0). Equal scores keep the order volunteers were given in.
func RankVolunteersForEvent(event *domain.Event, volunteers []*domain.Volunteer, maxMatches int, now time.Time) []domain.MatchResult {
	if maxMatches <= 0 {
		maxMatches = domain.DefaultMaxMatches
	}
	if event == nil {
		return []domain.MatchResult{}
	}
	results := make([]domain.MatchResult, 0, len(volunteers))
	for _, v := range volunteers {
		if v == nil {
			continue
		}
		score := Score(v.Skills, event.RequiredSkills)
		if score <= domain.MatchThreshold {
			continue
		}
		results = append(results, domain.MatchResult{
			VolunteerID: v.Username,
			EventID:     event.Name,
			Contact:     v.Email,
			Score:       score,
			ComputedAt:  now,
			Volunteer:   v,
		})
	}
	sortByScore(results)
	if len(results) > maxMatches {
		results = results[:maxMatches]
	}
	return results
}

// RankEventsForVolunteer returns the events volunteer qualifies for, best
// first. The list is uncapped unless maxMatches > 0.
func RankEventsForVolunteer(volunteer *domain.Volunteer, events []*domain.Event, maxMatches int, now time.Time) []domain.MatchResult {
	if volunteer == nil {
		return []domain.MatchResult{}
	}
	results := make([]domain.MatchResult, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		score := Score(volunteer.Skills, e.RequiredSkills)
		if score <= domain.MatchThreshold {
			continue
		}
		results = append(results, domain.MatchResult{
			VolunteerID: volunteer.Username,
			EventID:     e.Name,
			Contact:     volunteer.Email,
			Score:       score,
			ComputedAt:  now,
			Event:       e,
		})
	}
	sortByScore(results)
	if maxMatches > 0 && len(results) > maxMatches {
		results = results[:maxMatches]
	}
	return results
}

func sortByScore(results []domain.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
