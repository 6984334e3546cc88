package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/joshdurbin/imagefeed/internal/repository"
)

// Repository implements repository.TokenRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database and applies pending migrations
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// LoadToken returns the stored token
func (r *Repository) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx, "SELECT access_token FROM oauth_tokens WHERE id = 1").Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// SaveToken stores the token, replacing any previous one
func (r *Repository) SaveToken(ctx context.Context, token string) error {
	query := `
		INSERT INTO oauth_tokens (id, access_token, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET access_token = excluded.access_token, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// DeleteToken removes the stored token
func (r *Repository) DeleteToken(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM oauth_tokens WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ensure Repository implements the interface
var _ repository.TokenRepository = (*Repository)(nil)
