package domain

import "context"

// Volunteer is a read-only snapshot of a registered volunteer.
type Volunteer struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Skills   []string `json:"skills"`
}

// NewVolunteer returns a new Volunteer with the given fields.
func NewVolunteer(username, email string, skills []string) *Volunteer {
	return &Volunteer{
		Username: username,
		Email:    email,
		Skills:   skills,
	}
}

// VolunteerRegistry is the read side of volunteer storage consumed by the engine.
type VolunteerRegistry interface {
	ListAll(ctx context.Context) ([]*Volunteer, error)
	FindByUsername(ctx context.Context, username string) (*Volunteer, error)
}
