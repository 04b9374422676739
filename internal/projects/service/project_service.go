package service

import (
	"context"
	"log"
	"strings"

	authdomain "github.com/collabhub-dev/collab-backend/internal/auth/domain"
	"github.com/collabhub-dev/collab-backend/internal/authz"
	"github.com/collabhub-dev/collab-backend/internal/files"
	"github.com/collabhub-dev/collab-backend/internal/projects/domain"
)

// ProjectStore is the persistence contract the lifecycle depends on.
type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, scope authz.ListScope, userID string) ([]domain.Project, error)
	TitleExists(ctx context.Context, title, excludeID string) (bool, error)
	Update(ctx context.Context, p *domain.Project) error
	UpdateFiles(ctx context.Context, id string, attachments []domain.FileAttachment) error
	Delete(ctx context.Context, id string) (bool, error)
}

// UserDirectory resolves user ids; the lifecycle uses it to confirm an
// assignee actually is a designer.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*authdomain.User, error)
}

// EventPublisher emits change events for the notification dispatcher.
type EventPublisher interface {
	ProjectCreated(ctx context.Context, actor *authdomain.User, p *domain.Project) error
}

// ProjectService owns the project lifecycle: every mutation goes
// through the role matrix before it touches the store.
type ProjectService struct {
	store     ProjectStore
	users     UserDirectory
	pipeline  *files.Pipeline
	blobs     files.BlobStore
	publisher EventPublisher
}

func NewProjectService(store ProjectStore, users UserDirectory, pipeline *files.Pipeline, blobs files.BlobStore, publisher EventPublisher) *ProjectService {
	return &ProjectService{
		store:     store,
		users:     users,
		pipeline:  pipeline,
		blobs:     blobs,
		publisher: publisher,
	}
}

// CreateInput carries the caller-supplied fields for Create.
type CreateInput struct {
	Title       string
	Description string
	AssignedTo  string
	Files       []files.SubmittedFile
}

// Create inserts the project, then uploads the pending files against
// the generated id, then attaches the succeeded uploads. Partial upload
// failure downgrades to a warning; the project is still created.
func (s *ProjectService) Create(ctx context.Context, actor *authdomain.User, in CreateInput) (*domain.Project, *domain.PartialUploadFailure, error) {
	if !authz.Authorize(actor.Role, authz.ActionCreate, false, false) {
		return nil, nil, domain.ErrUnauthorized
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, nil, &domain.ValidationError{Field: "title", Msg: "el título es obligatorio"}
	}
	assignee := strings.TrimSpace(in.AssignedTo)
	if assignee == "" || assignee == domain.Unassigned {
		return nil, nil, &domain.ValidationError{Field: "assigned_to", Msg: "todo proyecto necesita un diseñador asignado"}
	}
	if err := s.requireDesigner(ctx, assignee); err != nil {
		return nil, nil, err
	}

	p := &domain.Project{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   actor.ID,
		AssignedTo:  &assignee,
		Status:      domain.StatusPending,
	}

	// Phase 1: persist the row to obtain the id the storage keys embed.
	if err := s.store.Create(ctx, p); err != nil {
		return nil, nil, err
	}

	var warn *domain.PartialUploadFailure
	if len(in.Files) > 0 {
		// Phase 2: upload against the generated id, then attach.
		res := s.pipeline.Upload(ctx, p.ID, in.Files)
		if err := s.store.UpdateFiles(ctx, p.ID, res.Succeeded); err != nil {
			return nil, nil, err
		}
		p.Files = res.Succeeded
		if len(res.FailedNames) > 0 {
			warn = &domain.PartialUploadFailure{FailedNames: res.FailedNames}
		}
	}

	if s.publisher != nil {
		if err := s.publisher.ProjectCreated(ctx, actor, p); err != nil {
			log.Printf("[projects] publish created event for %s: %v", p.ID, err)
		}
	}

	s.resolveURLs(p)
	return p, warn, nil
}

// Read fetches a single project if the actor's role and relationship to
// it allow. Forbidden reads surface as an explicit denial, not as
// not-found.
func (s *ProjectService) Read(ctx context.Context, actor *authdomain.User, id string) (*domain.Project, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.Authorize(actor.Role, authz.ActionRead, s.isOwner(actor, p), s.isAssignee(actor, p)) {
		return nil, domain.ErrUnauthorized
	}

	s.resolveURLs(p)
	return p, nil
}

// List returns the projects visible to the actor. Scope filtering runs
// at the query layer.
func (s *ProjectService) List(ctx context.Context, actor *authdomain.User) ([]domain.Project, error) {
	if !authz.Authorize(actor.Role, authz.ActionList, false, false) {
		return nil, domain.ErrUnauthorized
	}

	items, err := s.store.List(ctx, authz.Scope(actor.Role), actor.ID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		s.resolveURLs(&items[i])
	}
	return items, nil
}

// UpdatePatch carries the optional fields of an update. Nil means
// "leave unchanged".
type UpdatePatch struct {
	Title       *string
	Description *string
	AssignedTo  *string
	Status      *string
}

// Update applies a patch and the submitted file list. Submitted durable
// entries are matched against the persisted list (caller metadata is
// not trusted); persisted attachments missing from the submitted list
// are treated as explicitly removed. New files are uploaded; failures
// downgrade to a warning.
func (s *ProjectService) Update(ctx context.Context, actor *authdomain.User, id string, patch UpdatePatch, submitted []files.SubmittedFile) (*domain.Project, *domain.PartialUploadFailure, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !authz.Authorize(actor.Role, authz.ActionUpdate, s.isOwner(actor, p), s.isAssignee(actor, p)) {
		return nil, nil, domain.ErrUnauthorized
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, nil, &domain.ValidationError{Field: "title", Msg: "el título es obligatorio"}
		}
		p.Title = title
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.AssignedTo != nil {
		assignee := strings.TrimSpace(*patch.AssignedTo)
		if assignee == "" || assignee == domain.Unassigned {
			return nil, nil, &domain.ValidationError{Field: "assigned_to", Msg: "todo proyecto necesita un diseñador asignado"}
		}
		if err := s.requireDesigner(ctx, assignee); err != nil {
			return nil, nil, err
		}
		p.AssignedTo = &assignee
	}
	if patch.Status != nil {
		status := *patch.Status
		switch status {
		case domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, domain.StatusDelayed:
			p.Status = status
		default:
			return nil, nil, &domain.ValidationError{Field: "status", Msg: "estado desconocido: " + status}
		}
	}

	// A nil submitted list means the request carried no file section
	// at all: the attachments stay as they are. Removal is only ever
	// explicit, by resubmitting a list without the entry.
	var warn *domain.PartialUploadFailure
	if submitted != nil {
		persisted := make(map[string]domain.FileAttachment, len(p.Files))
		for _, f := range p.Files {
			persisted[f.SanitizedPath] = f
		}

		kept := make([]domain.FileAttachment, 0, len(submitted))
		pending := make([]files.SubmittedFile, 0, len(submitted))
		for _, f := range submitted {
			if f.Durable() {
				if existing, ok := persisted[f.Attachment.SanitizedPath]; ok {
					kept = append(kept, existing)
				}
				continue
			}
			pending = append(pending, f)
		}

		final := kept
		if len(pending) > 0 {
			res := s.pipeline.Upload(ctx, p.ID, pending)
			final = append(final, res.Succeeded...)
			if len(res.FailedNames) > 0 {
				warn = &domain.PartialUploadFailure{FailedNames: res.FailedNames}
			}
		}
		p.Files = final
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, nil, err
	}

	s.resolveURLs(p)
	return p, warn, nil
}

// Delete removes the row, then cleans up the project's blobs
// best-effort. Cleanup failure never rolls back the row deletion;
// orphaned blobs are an accepted risk.
func (s *ProjectService) Delete(ctx context.Context, actor *authdomain.User, id string) error {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.Authorize(actor.Role, authz.ActionDelete, s.isOwner(actor, p), s.isAssignee(actor, p)) {
		return domain.ErrUnauthorized
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.cleanupBlobs(ctx, id)
	return nil
}

// NewTitleSession builds a debounced title checker for an interactive
// editing session. excludeID is empty when creating.
func (s *ProjectService) NewTitleSession(excludeID string, onResult func(TitleCheckResult)) *TitleChecker {
	return NewTitleChecker(s.store, excludeID, onResult)
}

// CheckTitle runs one immediate advisory uniqueness check.
func (s *ProjectService) CheckTitle(ctx context.Context, candidate, excludeID string) (TitleCheckResult, error) {
	if strings.TrimSpace(candidate) == "" {
		return TitleCheckResult{}, nil
	}
	return NewTitleChecker(s.store, excludeID, nil).Check(ctx, candidate)
}

func (s *ProjectService) requireDesigner(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return &domain.ValidationError{Field: "assigned_to", Msg: "el usuario asignado no existe"}
	}
	if u.Role != authz.RoleDesigner {
		return &domain.ValidationError{Field: "assigned_to", Msg: "el usuario asignado no es diseñador"}
	}
	return nil
}

func (s *ProjectService) isOwner(actor *authdomain.User, p *domain.Project) bool {
	return p.CreatedBy == actor.ID
}

func (s *ProjectService) isAssignee(actor *authdomain.User, p *domain.Project) bool {
	return p.AssignedTo != nil && *p.AssignedTo == actor.ID
}

// resolveURLs recomputes public URLs from storage keys on every read;
// URLs are never trusted from the row.
func (s *ProjectService) resolveURLs(p *domain.Project) {
	if s.blobs == nil {
		return
	}
	for i := range p.Files {
		if p.Files[i].SanitizedPath != "" {
			p.Files[i].PublicURL = s.blobs.PublicURL(p.Files[i].SanitizedPath)
		}
	}
}

func (s *ProjectService) cleanupBlobs(ctx context.Context, projectID string) {
	if s.blobs == nil {
		return
	}
	prefix := "projects/" + projectID + "/"
	objects, err := s.blobs.List(ctx, prefix)
	if err != nil {
		log.Printf("[projects] blob cleanup list %s: %v", prefix, err)
		return
	}
	for _, obj := range objects {
		if err := s.blobs.Delete(ctx, obj.Key); err != nil {
			log.Printf("[projects] blob cleanup delete %s: %v", obj.Key, err)
		}
	}
}
