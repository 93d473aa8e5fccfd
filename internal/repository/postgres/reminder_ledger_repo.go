package postgres

import (
	"context"
	"database/sql"
	"time"

	"volunteermatching/internal/domain"
)

type reminderLedgerRepository struct {
	DB *sql.DB
}

// NewReminderLedgerRepository returns a ReminderLedger backed by the
// reminder_ledger table. The table's primary key on
// (recipient_id, event_id, reminder_date) makes TryRecord atomic across processes.
func NewReminderLedgerRepository(db *sql.DB) domain.ReminderLedger {
	return &reminderLedgerRepository{
		DB: db,
	}
}

func (r *reminderLedgerRepository) TryRecord(ctx context.Context, recipientID, eventID string, reminderDate, eventDate time.Time) (bool, error) {
	query := `
		INSERT INTO reminder_ledger (recipient_id, event_id, reminder_date, event_date, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (recipient_id, event_id, reminder_date) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, recipientID, eventID, reminderDate.Format(time.DateOnly), eventDate)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *reminderLedgerRepository) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM reminder_ledger WHERE event_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
