package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"octoterm/internal/model"

	"github.com/jmoiron/sqlx"
)

type settingsRow struct {
	Appearance           string `db:"appearance"`
	Language             string `db:"language"`
	NotificationsEnabled bool   `db:"notifications_enabled"`
	CodeHighlighting     bool   `db:"code_highlighting"`
	WebLinksEnabled      bool   `db:"web_links_enabled"`
}

// SettingsStore persists user preferences.
type SettingsStore struct {
	db *sqlx.DB
}

// NewSettingsStore creates a settings store on db.
func NewSettingsStore(db *sqlx.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Load returns the saved settings, or the defaults when nothing is saved.
func (s *SettingsStore) Load(ctx context.Context) (model.Settings, error) {
	var row settingsRow
	err := s.db.GetContext(ctx, &row, `
		SELECT appearance, language, notifications_enabled, code_highlighting, web_links_enabled
		FROM settings WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return model.Settings{
		Appearance:           model.Appearance(row.Appearance),
		Language:             row.Language,
		NotificationsEnabled: row.NotificationsEnabled,
		CodeHighlighting:     row.CodeHighlighting,
		WebLinksEnabled:      row.WebLinksEnabled,
	}, nil
}

// Save stores settings, replacing what was there.
func (s *SettingsStore) Save(ctx context.Context, settings model.Settings) error {
	row := settingsRow{
		Appearance:           string(settings.Appearance),
		Language:             settings.Language,
		NotificationsEnabled: settings.NotificationsEnabled,
		CodeHighlighting:     settings.CodeHighlighting,
		WebLinksEnabled:      settings.WebLinksEnabled,
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO settings (id, appearance, language, notifications_enabled, code_highlighting, web_links_enabled)
		VALUES (1, :appearance, :language, :notifications_enabled, :code_highlighting, :web_links_enabled)
		ON CONFLICT(id) DO UPDATE SET
			appearance = excluded.appearance,
			language = excluded.language,
			notifications_enabled = excluded.notifications_enabled,
			code_highlighting = excluded.code_highlighting,
			web_links_enabled = excluded.web_links_enabled,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, row)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
