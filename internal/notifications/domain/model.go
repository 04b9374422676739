package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("notification not found")

	// ErrStoreUnavailable wraps driver-level failures so handlers can
	// answer with a retryable status instead of a generic 500.
	ErrStoreUnavailable = errors.New("notification store unavailable")
)

// Notification is one per-recipient record derived from a change
// event. At most one exists per (user, event); Read only ever moves
// false → true.
type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	Message      string    `json:"message"`
	Read         bool      `json:"read"`
	ProjectID    string    `json:"project_id"`
	ProjectTitle string    `json:"project_title"`
	CreatorName  string    `json:"creator_name"`
	CreatedAt    time.Time `json:"created_at"`
}
