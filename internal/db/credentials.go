package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Credential is the stored access token and the login it belongs to.
type Credential struct {
	Token   string `db:"token"`
	Login   string `db:"login"`
	SavedAt string `db:"saved_at"`
}

// CredentialStore keeps the single signed-in credential.
type CredentialStore struct {
	db *sqlx.DB
}

// NewCredentialStore creates a credential store on db.
func NewCredentialStore(db *sqlx.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Save replaces the stored credential.
func (s *CredentialStore) Save(ctx context.Context, c Credential) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO credentials (id, token, login) VALUES (1, :token, :login)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			login = excluded.login,
			saved_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, c)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// Load returns the stored credential, or ErrNotFound.
func (s *CredentialStore) Load(ctx context.Context) (Credential, error) {
	var c Credential
	err := s.db.GetContext(ctx, &c, `SELECT token, login, saved_at FROM credentials WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to load credential: %w", err)
	}
	return c, nil
}

// Delete removes the stored credential. Deleting nothing is not an error.
func (s *CredentialStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
