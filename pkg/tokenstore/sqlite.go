package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/codingbro/school/pkg/tokenstore/migrations"

	_ "modernc.org/sqlite"
)

// SQLite persists the token pair in a single-row SQLite table. It shares a
// database file with whatever else the host application stores locally.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dsn and applies any pending
// schema migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate token database: %w", err)
	}

	return s, nil
}

// applyMigrations applies any pending migrations from the embedded
// filesystem, compiled into the binary.
func (s *SQLite) applyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Get(ctx context.Context) (TokenPair, bool) {
	var pair TokenPair
	err := s.db.QueryRowContext(
		ctx,
		`SELECT access_token, refresh_token FROM tokens WHERE id = 1`,
	).Scan(&pair.Access, &pair.Refresh)
	if err != nil || pair.IsZero() {
		return TokenPair{}, false
	}
	return pair, true
}

// Set writes both tokens in a single upsert so readers never observe a
// half-written pair.
func (s *SQLite) Set(ctx context.Context, pair TokenPair) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tokens (id, access_token, refresh_token, updated_at)
		 VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		   access_token = excluded.access_token,
		   refresh_token = excluded.refresh_token,
		   updated_at = excluded.updated_at`,
		pair.Access, pair.Refresh,
	)
	if err != nil {
		return fmt.Errorf("failed to persist token pair: %w", err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear token pair: %w", err)
	}
	return nil
}
