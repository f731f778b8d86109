package activities

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinmeta/cmdr-backend/pkg/db/models"
	"github.com/clinmeta/cmdr-backend/pkg/enums"
	"github.com/clinmeta/cmdr-backend/pkg/pagination"
)

func setupActivitiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	parents := `
CREATE TABLE IF NOT EXISTS activities (
  uid TEXT PRIMARY KEY,
  library_name TEXT NOT NULL,
  status TEXT NOT NULL,
  major_version INTEGER NOT NULL,
  minor_version INTEGER NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	versions := `
CREATE TABLE IF NOT EXISTS activity_versions (
  id TEXT PRIMARY KEY,
  activity_uid TEXT NOT NULL,
  status TEXT NOT NULL,
  major_version INTEGER NOT NULL,
  minor_version INTEGER NOT NULL,
  author_id TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME,
  change_description TEXT NOT NULL,
  name TEXT NOT NULL,
  definition TEXT,
  abbreviation TEXT,
  grouping_term_uid TEXT
);`
	openIdx := `
CREATE UNIQUE INDEX IF NOT EXISTS activity_versions_open
  ON activity_versions (activity_uid) WHERE end_date IS NULL;`

	for _, stmt := range []string{parents, versions, openIdx} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedActivity(t *testing.T, repo *Repository, name string) (string, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	uid, err := repo.GenerateUID(ctx)
	require.NoError(t, err)

	versionID := uuid.New()
	parent := &models.Activity{
		VersionedItem: models.VersionedItem{
			UID:          uid,
			LibraryName:  "Sponsor",
			Status:       enums.ItemStatusDraft,
			MajorVersion: 0,
			MinorVersion: 1,
		},
		Name: name,
	}
	version := &models.ActivityVersion{
		VersionRecord: models.VersionRecord{
			ID:                versionID,
			Status:            enums.ItemStatusDraft,
			MajorVersion:      0,
			MinorVersion:      1,
			AuthorID:          "author-1",
			StartDate:         time.Now().UTC(),
			ChangeDescription: "Initial version",
		},
		ActivityUID: uid,
		Name:        name,
	}
	require.NoError(t, repo.Insert(ctx, parent, version))
	return uid, versionID
}

func TestGenerateUIDPrefix(t *testing.T) {
	repo := NewRepository(setupActivitiesTestDB(t))
	uid, err := repo.GenerateUID(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uid, "Activity_"), "uid %q", uid)
}

func TestSaveTransitionMovesOpenRow(t *testing.T) {
	db := setupActivitiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	uid, openID := seedActivity(t, repo, "Systolic Blood Pressure")

	parent, err := repo.FindParent(ctx, uid, false)
	require.NoError(t, err)
	require.NotNil(t, parent)

	parent.Status = enums.ItemStatusFinal
	parent.MajorVersion = 1
	parent.MinorVersion = 0
	next := &models.ActivityVersion{
		VersionRecord: models.VersionRecord{
			ID:                uuid.New(),
			Status:            enums.ItemStatusFinal,
			MajorVersion:      1,
			MinorVersion:      0,
			AuthorID:          "author-2",
			StartDate:         time.Now().UTC(),
			ChangeDescription: "Approved version",
		},
		ActivityUID: uid,
		Name:        parent.Name,
	}
	require.NoError(t, repo.SaveTransition(ctx, parent, openID, next))

	open, err := repo.FindOpenVersion(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, next.ID, open.ID)
	assert.Equal(t, enums.ItemStatusFinal, open.Status)

	history, err := repo.ListVersions(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// Re-closing the already closed row must fail.
	err = repo.SaveTransition(ctx, parent, openID, &models.ActivityVersion{
		VersionRecord: models.VersionRecord{ID: uuid.New(), AuthorID: "author-2", StartDate: time.Now().UTC()},
		ActivityUID:   uid,
		Name:          parent.Name,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	reloaded, err := repo.FindParent(ctx, uid, false)
	require.NoError(t, err)
	assert.Equal(t, enums.ItemStatusFinal, reloaded.Status)
	assert.Equal(t, uint(1), reloaded.MajorVersion)
}

func TestNameExistsProbe(t *testing.T) {
	repo := NewRepository(setupActivitiesTestDB(t))
	ctx := context.Background()

	seedActivity(t, repo, "Heart Rate")

	found, err := repo.NameExists(ctx, "Heart Rate")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.NameExists(ctx, "Respiratory Rate")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteRemovesHistory(t *testing.T) {
	repo := NewRepository(setupActivitiesTestDB(t))
	ctx := context.Background()

	uid, _ := seedActivity(t, repo, "Body Weight")
	require.NoError(t, repo.Delete(ctx, uid))

	parent, err := repo.FindParent(ctx, uid, false)
	require.NoError(t, err)
	assert.Nil(t, parent)

	history, err := repo.ListVersions(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestListPagination(t *testing.T) {
	repo := NewRepository(setupActivitiesTestDB(t))
	ctx := context.Background()

	names := []string{"Albumin", "Bilirubin", "Creatinine"}
	for _, name := range names {
		seedActivity(t, repo, "Page "+name)
		time.Sleep(2 * time.Millisecond)
	}

	first, cursor, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilter{LibraryName: "Sponsor"})
	require.NoError(t, err)
	require.NotEmpty(t, cursor)
	assert.Len(t, first, 2)

	second, _, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: cursor}, ListFilter{LibraryName: "Sponsor"})
	require.NoError(t, err)
	require.NotEmpty(t, second)
	for _, row := range second {
		for _, prev := range first {
			assert.NotEqual(t, prev.UID, row.UID)
		}
	}
}
