package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"octoterm/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "octoterm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octoterm.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	second.Close()
}

func TestCredentialLifecycle(t *testing.T) {
	ctx := context.Background()
	creds := NewCredentialStore(openTestDB(t))

	_, err := creds.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, creds.Save(ctx, Credential{Token: "first", Login: "mona"}))
	require.NoError(t, creds.Save(ctx, Credential{Token: "second", Login: "mona"}))

	got, err := creds.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Token)
	assert.Equal(t, "mona", got.Login)
	assert.NotEmpty(t, got.SavedAt)

	require.NoError(t, creds.Delete(ctx))
	require.NoError(t, creds.Delete(ctx))
	_, err = creds.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsDefaultUntilSaved(t *testing.T) {
	ctx := context.Background()
	settings := NewSettingsStore(openTestDB(t))

	got, err := settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), got)

	want := model.Settings{
		Appearance:           model.AppearanceDark,
		Language:             "ko",
		NotificationsEnabled: false,
		CodeHighlighting:     true,
		WebLinksEnabled:      false,
	}
	require.NoError(t, settings.Save(ctx, want))

	got, err = settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsRejectUnknownAppearance(t *testing.T) {
	settings := NewSettingsStore(openTestDB(t))
	s := model.DefaultSettings()
	s.Appearance = "sepia"
	assert.Error(t, settings.Save(context.Background(), s))
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT token, login, saved_at FROM credentials").WillReturnError(boom)
	mock.ExpectExec("DELETE FROM credentials").WillReturnError(boom)
	mock.ExpectQuery("FROM settings").WillReturnError(boom)

	_, err = NewCredentialStore(db).Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = NewCredentialStore(db).Delete(context.Background())
	assert.ErrorContains(t, err, "failed to delete credential")

	_, err = NewSettingsStore(db).Load(context.Background())
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
