package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/collabhub-dev/collab-backend/internal/auth/domain"
	"github.com/collabhub-dev/collab-backend/internal/authz"
	"github.com/collabhub-dev/collab-backend/internal/files"
	"github.com/collabhub-dev/collab-backend/internal/projects/domain"
)

type fakeStore struct {
	projects  map[string]*domain.Project
	nextID    int
	lastScope authz.ListScope
	lastUser  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: make(map[string]*domain.Project), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, p *domain.Project) error {
	p.ID = fmt.Sprintf("p%03d", f.nextID)
	f.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	p.Files = []domain.FileAttachment{}
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.Files = append([]domain.FileAttachment(nil), p.Files...)
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, scope authz.ListScope, userID string) ([]domain.Project, error) {
	f.lastScope = scope
	f.lastUser = userID
	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) TitleExists(_ context.Context, title, excludeID string) (bool, error) {
	for id, p := range f.projects {
		if id != excludeID && strings.EqualFold(p.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Update(_ context.Context, p *domain.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateFiles(_ context.Context, id string, attachments []domain.FileAttachment) error {
	p, ok := f.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Files = attachments
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.projects[id]; !ok {
		return false, nil
	}
	delete(f.projects, id)
	return true, nil
}

type fakeDirectory struct {
	users map[string]*authdomain.User
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*authdomain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	return u, nil
}

type fakePublisher struct {
	created []string
}

func (f *fakePublisher) ProjectCreated(_ context.Context, _ *authdomain.User, p *domain.Project) error {
	f.created = append(f.created, p.ID)
	return nil
}

type fakeBlobs struct {
	puts     map[string][]byte
	deletes  []string
	failPut  map[string]bool
	failList bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{puts: make(map[string][]byte), failPut: make(map[string]bool)}
}

func (f *fakeBlobs) Put(_ context.Context, key string, data []byte) error {
	if f.failPut[key] {
		return errors.New("put failed")
	}
	f.puts[key] = data
	return nil
}

func (f *fakeBlobs) PublicURL(key string) string {
	return "https://files.example.com/" + key
}

func (f *fakeBlobs) List(_ context.Context, prefix string) ([]files.Object, error) {
	if f.failList {
		return nil, errors.New("list failed")
	}
	var out []files.Object
	for k, v := range f.puts {
		if strings.HasPrefix(k, prefix) {
			out = append(out, files.Object{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	delete(f.puts, key)
	return nil
}

type fixture struct {
	svc       *ProjectService
	store     *fakeStore
	blobs     *fakeBlobs
	publisher *fakePublisher

	pm, designer1, designer2, client1, client2 *authdomain.User
}

func newFixture() *fixture {
	store := newFakeStore()
	blobs := newFakeBlobs()
	publisher := &fakePublisher{}

	pm := &authdomain.User{ID: "u-pm", Email: "laura@estudio.com", Role: authz.RoleProjectManager}
	d1 := &authdomain.User{ID: "u-d1", Email: "marco@estudio.com", Role: authz.RoleDesigner}
	d2 := &authdomain.User{ID: "u-d2", Email: "sofia@estudio.com", Role: authz.RoleDesigner}
	c1 := &authdomain.User{ID: "u-c1", Email: "cliente1@acme.com", Role: authz.RoleClient}
	c2 := &authdomain.User{ID: "u-c2", Email: "cliente2@acme.com", Role: authz.RoleClient}

	dir := &fakeDirectory{users: map[string]*authdomain.User{
		pm.ID: pm, d1.ID: d1, d2.ID: d2, c1.ID: c1, c2.ID: c2,
	}}

	svc := NewProjectService(store, dir, files.NewPipeline(blobs), blobs, publisher)
	return &fixture{
		svc: svc, store: store, blobs: blobs, publisher: publisher,
		pm: pm, designer1: d1, designer2: d2, client1: c1, client2: c2,
	}
}

func TestCreate_Validation(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	t.Run("designer cannot create", func(t *testing.T) {
		_, _, err := fx.svc.Create(ctx, fx.designer1, CreateInput{Title: "X", AssignedTo: fx.designer1.ID})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("empty title", func(t *testing.T) {
		_, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{Title: "  ", AssignedTo: fx.designer1.ID})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
	})

	t.Run("unassigned sentinel rejected", func(t *testing.T) {
		_, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{Title: "X", AssignedTo: domain.Unassigned})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "assigned_to", verr.Field)
	})

	t.Run("assignee must be a designer", func(t *testing.T) {
		_, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{Title: "X", AssignedTo: fx.client1.ID})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "assigned_to", verr.Field)
	})
}

func TestCreate_TwoPhaseWithPartialFailure(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	// The failing key embeds the id the store will generate next.
	fx.blobs.failPut["projects/p001/dos.pdf"] = true

	p, warn, err := fx.svc.Create(ctx, fx.pm, CreateInput{
		Title:      "Rediseño de marca",
		AssignedTo: fx.designer1.ID,
		Files: []files.SubmittedFile{
			{Attachment: domain.FileAttachment{Name: "uno.pdf"}, Data: []byte("a")},
			{Attachment: domain.FileAttachment{Name: "dos.pdf"}, Data: []byte("b")},
			{Attachment: domain.FileAttachment{Name: "tres.pdf"}, Data: []byte("c")},
		},
	})
	require.NoError(t, err, "partial upload failure must not fail the create")
	require.NotNil(t, warn)
	assert.Equal(t, []string{"dos.pdf"}, warn.FailedNames)

	require.Len(t, p.Files, 2)
	stored, err := fx.store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Files, 2, "only succeeded uploads are persisted")
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, []string{p.ID}, fx.publisher.created, "creation event published")
}

func TestReadAndUpdate_AuthorizationScenario(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	p, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{Title: "Landing Page", AssignedTo: fx.designer1.ID})
	require.NoError(t, err)

	_, err = fx.svc.Read(ctx, fx.designer2, p.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "unassigned designer cannot read")

	got, err := fx.svc.Read(ctx, fx.designer1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Landing Page", got.Title)

	title := "Hacked"
	_, _, err = fx.svc.Update(ctx, fx.client2, p.ID, UpdatePatch{Title: &title}, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "non-creator client cannot update")
}

func TestUpdate_IdempotentResubmission(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	p, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{
		Title:      "Con archivo",
		AssignedTo: fx.designer1.ID,
		Files: []files.SubmittedFile{
			{Attachment: domain.FileAttachment{Name: "brief.pdf"}, Data: []byte("pdf")},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Files, 1)
	putsBefore := len(fx.blobs.puts)

	// Resubmit the durable attachment and nothing new.
	updated, warn, err := fx.svc.Update(ctx, fx.pm, p.ID, UpdatePatch{}, []files.SubmittedFile{
		{Attachment: domain.FileAttachment{SanitizedPath: p.Files[0].SanitizedPath}},
	})
	require.NoError(t, err)
	assert.Nil(t, warn)
	assert.Len(t, fx.blobs.puts, putsBefore, "no blob writes on resubmission")
	require.Len(t, updated.Files, 1)
	assert.Equal(t, p.Files[0].SanitizedPath, updated.Files[0].SanitizedPath)
	assert.Equal(t, "brief.pdf", updated.Files[0].Name, "metadata comes from the persisted row")
}

func TestUpdate_DropsRemovedAttachments(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	p, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{
		Title:      "Dos archivos",
		AssignedTo: fx.designer1.ID,
		Files: []files.SubmittedFile{
			{Attachment: domain.FileAttachment{Name: "keep.pdf"}, Data: []byte("k")},
			{Attachment: domain.FileAttachment{Name: "drop.pdf"}, Data: []byte("d")},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Files, 2)

	var keepKey string
	for _, f := range p.Files {
		if f.Name == "keep.pdf" {
			keepKey = f.SanitizedPath
		}
	}

	updated, _, err := fx.svc.Update(ctx, fx.pm, p.ID, UpdatePatch{}, []files.SubmittedFile{
		{Attachment: domain.FileAttachment{SanitizedPath: keepKey}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Files, 1)
	assert.Equal(t, "keep.pdf", updated.Files[0].Name)
}

// A metadata-only patch carries no file list at all. That is not the
// same as submitting an empty list: nothing was removed, so the
// durable attachments survive untouched.
func TestUpdate_NilFileListKeepsAttachments(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	p, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{
		Title:      "Solo estado",
		AssignedTo: fx.designer1.ID,
		Files: []files.SubmittedFile{
			{Attachment: domain.FileAttachment{Name: "brief.pdf"}, Data: []byte("pdf")},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Files, 1)

	status := domain.StatusInProgress
	updated, warn, err := fx.svc.Update(ctx, fx.pm, p.ID, UpdatePatch{Status: &status}, nil)
	require.NoError(t, err)
	assert.Nil(t, warn)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	require.Len(t, updated.Files, 1, "status-only update must not drop the durable attachment")
	assert.Equal(t, "brief.pdf", updated.Files[0].Name)

	// An explicitly empty list, by contrast, removes everything.
	cleared, _, err := fx.svc.Update(ctx, fx.pm, p.ID, UpdatePatch{}, []files.SubmittedFile{})
	require.NoError(t, err)
	assert.Empty(t, cleared.Files)
}

func TestUpdate_StatusValidation(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	p, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{Title: "Estado", AssignedTo: fx.designer1.ID})
	require.NoError(t, err)

	good := domain.StatusInProgress
	updated, _, err := fx.svc.Update(ctx, fx.pm, p.ID, UpdatePatch{Status: &good}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	bad := "archived"
	_, _, err = fx.svc.Update(ctx, fx.pm, p.ID, UpdatePatch{Status: &bad}, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestList_ScopePassedToQueryLayer(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.svc.List(ctx, fx.client1)
	require.NoError(t, err)
	assert.Equal(t, authz.ScopeOwn, fx.store.lastScope)
	assert.Equal(t, fx.client1.ID, fx.store.lastUser)

	_, err = fx.svc.List(ctx, fx.designer1)
	require.NoError(t, err)
	assert.Equal(t, authz.ScopeAssigned, fx.store.lastScope)

	_, err = fx.svc.List(ctx, fx.pm)
	require.NoError(t, err)
	assert.Equal(t, authz.ScopeAll, fx.store.lastScope)
}

func TestDelete_CleansUpBlobsBestEffort(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	p, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{
		Title:      "Borrar",
		AssignedTo: fx.designer1.ID,
		Files: []files.SubmittedFile{
			{Attachment: domain.FileAttachment{Name: "a.pdf"}, Data: []byte("a")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, fx.pm, p.ID))
	_, err = fx.svc.Read(ctx, fx.pm, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, fx.blobs.deletes, 1)

	// Cleanup failure must not resurrect or fail the delete.
	p2, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{Title: "Borrar 2", AssignedTo: fx.designer1.ID})
	require.NoError(t, err)
	fx.blobs.failList = true
	assert.NoError(t, fx.svc.Delete(ctx, fx.pm, p2.ID))
}

func TestDelete_DesignerDenied(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	p, _, err := fx.svc.Create(ctx, fx.pm, CreateInput{Title: "Protegido", AssignedTo: fx.designer1.ID})
	require.NoError(t, err)

	err = fx.svc.Delete(ctx, fx.designer1, p.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
