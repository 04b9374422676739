package repository

import (
	"context"
	"database/sql"

	"github.com/collabhub-dev/collab-backend/internal/auth/domain"
	"github.com/collabhub-dev/collab-backend/internal/authz"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, firebase_uid, email, role, created_at, updated_at`

// GetByFirebaseUID retrieves a user by their Firebase UID.
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, uid))
}

// GetByID retrieves a user by their database id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// EnsureUser upserts a users row keyed by Firebase UID. New users get
// the client role; role is never changed by sync, only assigned once.
func (r *UserRepository) EnsureUser(ctx context.Context, firebaseUID, email string) (*domain.User, error) {
	query := `
		INSERT INTO users (id, firebase_uid, email, role)
		VALUES (gen_random_uuid(), $1, $2, 'client')
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING ` + userColumns

	return r.scanUser(r.db.QueryRowContext(ctx, query, firebaseUID, email))
}

// ListAll returns every user. The dispatcher uses this as the
// interested recipient set (broadcast-to-staff model).
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0, 16)
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var rawRole string

	err := row.Scan(&u.ID, &u.FirebaseUID, &u.Email, &rawRole, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	// Normalize once at the storage boundary; downstream code only
	// switches on the enum.
	u.Role = authz.ParseRole(rawRole)
	return &u, nil
}
