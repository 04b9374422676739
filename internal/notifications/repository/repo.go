package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/collabhub-dev/collab-backend/internal/notifications/domain"
)

// NotificationRepository provides persistence for notifications.
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert writes a notification if none exists yet for the same
// (user, event) pair. Returns false when the row was already there,
// which makes redelivery of the same change event a no-op.
func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, user_id, event_id, message, read, project_id, project_title, creator_name)
		VALUES ($1, $2, $3, $4, false, $5, $6, $7)
		ON CONFLICT (user_id, event_id) DO NOTHING
		RETURNING created_at
	`

	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.EventID, n.Message, n.ProjectID, n.ProjectTitle, n.CreatorName,
	).Scan(&n.CreatedAt)
	if err == sql.ErrNoRows {
		// Conflict path: the event was already dispatched to this user.
		return false, nil
	}
	if err != nil {
		return false, storeErr("insert notification", err)
	}
	return true, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, event_id, message, read, project_id, project_title, creator_name, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.Message, &n.Read,
			&n.ProjectID, &n.ProjectTitle, &n.CreatorName, &n.CreatedAt); err != nil {
			return nil, storeErr("scan notification", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list notifications", err)
	}
	return out, nil
}

// UnreadCount returns how many unread notifications the user has.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`, userID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count unread", err)
	}
	return count, nil
}

// MarkRead flips one notification to read. Idempotent: marking an
// already-read notification is a no-op, not an error. Ownership is
// enforced in the predicate so users cannot mark each other's rows.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return storeErr("mark read", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storeErr("mark read", err)
	}
	if affected == 0 {
		// Already-read rows still match the predicate, so zero rows
		// means the notification does not exist for this user.
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification for the user. No-op when
// there is nothing unread.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID,
	)
	if err != nil {
		return storeErr("mark all read", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
