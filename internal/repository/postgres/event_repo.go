package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"volunteermatching/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventRegistry backed by the events table.
// event_date is read as text; parsing happens in the engine.
func NewEventRepository(db *sql.DB) domain.EventRegistry {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT name, required_skills, urgency, event_date, location, description
		FROM events
		ORDER BY created_at, name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) FindByName(ctx context.Context, name string) (*domain.Event, error) {
	query := `
		SELECT name, required_skills, urgency, event_date, location, description
		FROM events
		WHERE name = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var skills []string
	var urgency string
	var dateNull, locationNull, descNull sql.NullString
	if err := row.Scan(&e.Name, pq.Array(&skills), &urgency, &dateNull, &locationNull, &descNull); err != nil {
		return nil, err
	}
	e.RequiredSkills = skills
	e.Urgency = domain.Urgency(urgency)
	if dateNull.Valid {
		e.Date = dateNull.String
	}
	if locationNull.Valid {
		e.Location = locationNull.String
	}
	if descNull.Valid {
		e.Description = descNull.String
	}
	return e, nil
}
