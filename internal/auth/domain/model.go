package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/collabhub-dev/collab-backend/internal/authz"
)

var ErrUserNotFound = errors.New("user not found")

// User is an identity resolved at the auth boundary. Role is already
// normalized into the closed enum; nothing downstream touches the raw
// role string.
type User struct {
	ID          string     `json:"id"`
	FirebaseUID string     `json:"firebase_uid"`
	Email       string     `json:"email"`
	Role        authz.Role `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DisplayName derives a human-facing name from the email local part.
func (u *User) DisplayName() string {
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}
