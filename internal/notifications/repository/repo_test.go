package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabhub-dev/collab-backend/internal/notifications/domain"
)

func setupRepo(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewNotificationRepository(db), mock, db
}

func TestInsert_NewRow(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), "u-d1", "ev-1", "laura ha creado un nuevo proyecto: Landing Page",
			"p1", "Landing Page", "laura").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	n := &domain.Notification{
		UserID:       "u-d1",
		EventID:      "ev-1",
		Message:      "laura ha creado un nuevo proyecto: Landing Page",
		ProjectID:    "p1",
		ProjectTitle: "Landing Page",
		CreatorName:  "laura",
	}
	inserted, err := repo.Insert(context.Background(), n)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_ConflictIsNoOp(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	// ON CONFLICT DO NOTHING returns no row on the duplicate path.
	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnError(sql.ErrNoRows)

	inserted, err := repo.Insert(context.Background(), &domain.Notification{
		UserID: "u-d1", EventID: "ev-1",
	})
	require.NoError(t, err)
	assert.False(t, inserted, "redelivered event must not create a second row")
}

// Driver failures surface as ErrStoreUnavailable so handlers answer
// with a retryable status, matching the project endpoints.
func TestStoreUnavailableTaxonomy(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	boom := errors.New("connection refused")

	mock.ExpectQuery(`INSERT INTO notifications`).WillReturnError(boom)
	_, err := repo.Insert(context.Background(), &domain.Notification{UserID: "u-1", EventID: "ev-1"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	mock.ExpectQuery(`SELECT .+ FROM notifications`).WillReturnError(boom)
	_, err = repo.ListByUser(context.Background(), "u-1", 10)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(boom)
	_, err = repo.UnreadCount(context.Background(), "u-1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	mock.ExpectExec(`UPDATE notifications`).WillReturnError(boom)
	err = repo.MarkRead(context.Background(), "u-1", "n-1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	mock.ExpectExec(`UPDATE notifications`).WillReturnError(boom)
	err = repo.MarkAllRead(context.Background(), "u-1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMarkRead(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	t.Run("marks own notification", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`)).
			WithArgs("n1", "u-d1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkRead(context.Background(), "u-d1", "n1"))
	})

	t.Run("missing or foreign notification", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`)).
			WithArgs("n1", "u-other").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkRead(context.Background(), "u-other", "n1"), domain.ErrNotFound)
	})
}

func TestMarkAllRead(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`SET read = true WHERE user_id = $1 AND read = false`)).
		WithArgs("u-d1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.MarkAllRead(context.Background(), "u-d1"))

	// Nothing unread: still fine.
	mock.ExpectExec(regexp.QuoteMeta(`SET read = true WHERE user_id = $1 AND read = false`)).
		WithArgs("u-d1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.MarkAllRead(context.Background(), "u-d1"))
}

func TestListByUser(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "event_id", "message", "read",
		"project_id", "project_title", "creator_name", "created_at",
	}).
		AddRow("n2", "u-d1", "ev-2", "msg 2", false, "p2", "Dos", "laura", now).
		AddRow("n1", "u-d1", "ev-1", "msg 1", true, "p1", "Uno", "laura", now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .+ FROM notifications`).
		WithArgs("u-d1", 50).
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "u-d1", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "n2", items[0].ID)
	assert.False(t, items[0].Read)
	assert.True(t, items[1].Read)
}
