// users_test.go - Tests for the User Directory and File Store
// Run with: go test ./...

package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"plasticity-backend/apperr"
	"plasticity-backend/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a fresh SQLite database for each test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserDirectory(setupTestDB(t))

	first := &models.User{Email: "maker@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, first))
	assert.NotZero(t, first.ID)

	second := &models.User{Email: "maker@example.com", Password: "other"}
	err := users.Create(ctx, second)
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	assert.Zero(t, second.ID)

	var count int64
	users.db.Model(&models.User{}).Where("email = ?", "maker@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestNewUserDefaults(t *testing.T) {
	ctx := context.Background()
	users := NewUserDirectory(setupTestDB(t))

	u := &models.User{Email: "a@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Multiplier)
	assert.False(t, got.IsSeller)
	assert.Empty(t, got.UploadedFiles)
}

func TestFindByResetToken(t *testing.T) {
	ctx := context.Background()
	users := NewUserDirectory(setupTestDB(t))
	now := time.Now()

	u := &models.User{Email: "reset@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, users.SetResetToken(ctx, u.ID, "tok-123", now.Add(time.Hour)))

	got, err := users.FindByResetToken(ctx, "tok-123", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.FindByResetToken(ctx, "tok-123", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, apperr.ErrNotFoundOrExpired)

	_, err = users.FindByResetToken(ctx, "unknown", now)
	assert.ErrorIs(t, err, apperr.ErrNotFoundOrExpired)

	_, err = users.FindByResetToken(ctx, "", now)
	assert.ErrorIs(t, err, apperr.ErrNotFoundOrExpired)
}

func TestClearExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	users := NewUserDirectory(setupTestDB(t))
	now := time.Now()

	stale := &models.User{Email: "stale@example.com", Password: "hash"}
	fresh := &models.User{Email: "fresh@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, stale))
	require.NoError(t, users.Create(ctx, fresh))
	require.NoError(t, users.SetResetToken(ctx, stale.ID, "old", now.Add(-time.Minute)))
	require.NoError(t, users.SetResetToken(ctx, fresh.ID, "new", now.Add(time.Hour)))

	n, err := users.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = users.FindByResetToken(ctx, "new", now)
	assert.NoError(t, err)
}

func TestUpdatesAreIndependent(t *testing.T) {
	ctx := context.Background()
	users := NewUserDirectory(setupTestDB(t))

	u := &models.User{Email: "seller@example.com", Password: "hash", IsSeller: true}
	require.NoError(t, users.Create(ctx, u))

	require.NoError(t, users.UpdateProfile(ctx, u.ID, "seller@example.com", models.Profile{Name: "Ada", Location: "Austin"}))
	require.NoError(t, users.UpdatePrinter(ctx, u.ID, models.Printer{Model: "MK3", SupportsPLA: true}, 2.5))
	require.NoError(t, users.UpdatePassword(ctx, u.ID, "newhash"))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Profile.Name)
	assert.Equal(t, "Austin", got.Profile.Location)
	assert.Equal(t, "MK3", got.Printer.Model)
	assert.True(t, got.Printer.SupportsPLA)
	assert.False(t, got.Printer.SupportsABS)
	assert.Equal(t, 2.5, got.Multiplier)
	assert.Equal(t, "newhash", got.Password)

	err = users.UpdatePrinter(ctx, u.ID, models.Printer{}, -1)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserDirectory(setupTestDB(t))

	a := &models.User{Email: "a@example.com", Password: "hash"}
	b := &models.User{Email: "b@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))

	err := users.UpdateProfile(ctx, b.ID, "a@example.com", models.Profile{})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
}

func TestHistoryOnlyGrowsAndDeleteRemovesAll(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserDirectory(db)
	files := NewFileStore(users)

	u := &models.User{Email: "owner@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))

	for _, name := range []string{"a.stl", "b.stl", "c.stl"} {
		entry := files.Entry(name, "uploads/"+name)
		require.NoError(t, files.Attach(ctx, u.ID, &entry))
	}

	history, err := files.History(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "a.stl", history[0].FileName)
	assert.Equal(t, "uploads/c.stl", history[2].Location)

	require.NoError(t, users.Delete(ctx, u.ID))

	_, err = users.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var remaining int64
	db.Model(&models.UploadedFile{}).Where("user_id = ?", u.ID).Count(&remaining)
	assert.Zero(t, remaining)

	assert.ErrorIs(t, users.Delete(ctx, u.ID), apperr.ErrNotFound)
}

func TestAttachToMissingUser(t *testing.T) {
	ctx := context.Background()
	files := NewFileStore(NewUserDirectory(setupTestDB(t)))

	entry := files.Entry("ghost.stl", "uploads/ghost.stl")
	assert.ErrorIs(t, files.Attach(ctx, 999, &entry), apperr.ErrNotFound)

	empty := files.Entry("", "")
	assert.ErrorIs(t, files.Attach(ctx, 1, &empty), apperr.ErrValidation)
}
