package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/collabhub-dev/collab-backend/internal/authz"
	"github.com/collabhub-dev/collab-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, description, created_by, assigned_to, status, files, created_at, updated_at`

// Create inserts a new project row and fills in the generated id and
// timestamps. The files column starts empty; attachments are written in
// a second phase once the id exists (storage keys embed it).
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (id, title, description, created_by, assigned_to, status, files)
		VALUES ($1, $2, $3, $4, $5, $6, '[]'::jsonb)
		RETURNING created_at, updated_at
	`

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = domain.StatusPending
	}

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.Description, p.CreatedBy, p.AssignedTo, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return storeErr("insert project", err)
	}
	p.Files = []domain.FileAttachment{}

	return nil
}

// GetByID retrieves a single project.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := r.scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get project", err)
	}
	return p, nil
}

// List returns the projects visible under the given scope. The filter
// runs in SQL because it is a security boundary, not presentation.
func (r *ProjectRepository) List(ctx context.Context, scope authz.ListScope, userID string) ([]domain.Project, error) {
	base := `SELECT ` + projectColumns + ` FROM projects `
	order := ` ORDER BY created_at DESC`

	var rows *sql.Rows
	var err error
	switch scope {
	case authz.ScopeOwn:
		rows, err = r.db.QueryContext(ctx, base+`WHERE created_by = $1`+order, userID)
	case authz.ScopeAssigned:
		rows, err = r.db.QueryContext(ctx, base+`WHERE assigned_to = $1`+order, userID)
	case authz.ScopeAll:
		rows, err = r.db.QueryContext(ctx, base+order)
	default:
		return []domain.Project{}, nil
	}
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := r.scanProject(rows)
		if err != nil {
			return nil, storeErr("scan project", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list projects", err)
	}
	return out, nil
}

// TitleExists reports whether any project already uses the title,
// case-insensitively, optionally excluding the project being edited.
// excludeID is empty when creating; comparing through id::text keeps
// the empty string a valid parameter against the uuid column.
func (r *ProjectRepository) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM projects WHERE LOWER(title) = LOWER($1) AND ($2 = '' OR id::text <> $2))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, title, excludeID).Scan(&exists); err != nil {
		return false, storeErr("check title", err)
	}
	return exists, nil
}

// Update writes the mutable fields and bumps updated_at.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	query := `
		UPDATE projects
		SET title = $2, description = $3, assigned_to = $4, status = $5, files = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	filesJSON, err := json.Marshal(p.Files)
	if err != nil {
		filesJSON = []byte("[]")
	}

	err = r.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.Description, p.AssignedTo, p.Status, filesJSON,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return storeErr("update project", err)
	}
	return nil
}

// UpdateFiles replaces only the files column. Used by the second phase
// of create.
func (r *ProjectRepository) UpdateFiles(ctx context.Context, id string, attachments []domain.FileAttachment) error {
	query := `UPDATE projects SET files = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`

	filesJSON, err := json.Marshal(attachments)
	if err != nil {
		filesJSON = []byte("[]")
	}

	var updatedAt sql.NullTime
	err = r.db.QueryRowContext(ctx, query, id, filesJSON).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return storeErr("update project files", err)
	}
	return nil
}

// Delete removes the row. Hard delete; blob cleanup is the caller's
// best-effort concern.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, storeErr("delete project", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("delete project", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ProjectRepository) scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var description, assignedTo sql.NullString
	var filesRaw []byte

	err := row.Scan(
		&p.ID, &p.Title, &description, &p.CreatedBy, &assignedTo,
		&p.Status, &filesRaw, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = description.String
	}
	if assignedTo.Valid {
		p.AssignedTo = &assignedTo.String
	}

	attachments, err := domain.NormalizeAttachments(filesRaw)
	if err != nil {
		return nil, fmt.Errorf("normalize files for %s: %w", p.ID, err)
	}
	p.Files = attachments

	return &p, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
