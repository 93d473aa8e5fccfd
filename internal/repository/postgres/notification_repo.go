package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"volunteermatching/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

// NewNotificationRepository returns a NotificationStore backed by the
// notifications table, keyed by (recipient_id, id).
func NewNotificationRepository(db *sql.DB) domain.NotificationStore {
	return &notificationRepository{
		DB: db,
	}
}

// Append takes a transaction-scoped advisory lock on the recipient so the
// next id is computed and inserted without a concurrent writer in between.
func (r *notificationRepository) Append(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, n.RecipientID); err != nil {
		return nil, fmt.Errorf("lock recipient %s: %w", n.RecipientID, err)
	}
	stored := *n
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM notifications WHERE recipient_id = $1`, n.RecipientID).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("next notification id for %s: %w", n.RecipientID, err)
	}
	query := `
		INSERT INTO notifications (recipient_id, id, kind, message, related_id, created_at, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, query, stored.RecipientID, stored.ID, string(stored.Kind), stored.Message, stored.RelatedID, stored.CreatedAt, stored.Read)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	query := `
		SELECT recipient_id, id, kind, message, related_id, created_at, read
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		var kind string
		if err := rows.Scan(&n.RecipientID, &n.ID, &kind, &n.Message, &n.RelatedID, &n.CreatedAt, &n.Read); err != nil {
			return nil, err
		}
		n.Kind = domain.NotificationKind(kind)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID string, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	idArgs := make([]int64, len(ids))
	for i, id := range ids {
		idArgs[i] = int64(id)
	}
	query := `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND id = ANY($2)`
	result, err := r.DB.ExecContext(ctx, query, recipientID, pq.Array(idArgs))
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
