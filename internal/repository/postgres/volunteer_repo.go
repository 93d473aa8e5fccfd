package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"volunteermatching/internal/domain"
)

type volunteerRepository struct {
	DB *sql.DB
}

func NewVolunteerRepository(db *sql.DB) domain.VolunteerRegistry {
	return &volunteerRepository{
		DB: db,
	}
}

func (r *volunteerRepository) ListAll(ctx context.Context) ([]*domain.Volunteer, error) {
	query := `
		SELECT username, email, skills
		FROM volunteers
		ORDER BY created_at, username
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	volunteers := make([]*domain.Volunteer, 0)
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, err
		}
		volunteers = append(volunteers, v)
	}
	return volunteers, rows.Err()
}

func (r *volunteerRepository) FindByUsername(ctx context.Context, username string) (*domain.Volunteer, error) {
	query := `
		SELECT username, email, skills
		FROM volunteers
		WHERE username = $1
	`
	v, err := scanVolunteer(r.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVolunteer(row rowScanner) (*domain.Volunteer, error) {
	v := &domain.Volunteer{}
	var emailNull sql.NullString
	var skills []string
	if err := row.Scan(&v.Username, &emailNull, pq.Array(&skills)); err != nil {
		return nil, err
	}
	if emailNull.Valid {
		v.Email = emailNull.String
	}
	v.Skills = skills
	return v, nil
}
