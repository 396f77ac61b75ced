// Package postgres implements the store.Journal interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Journal implements store.Journal backed by a PostgreSQL database.
type Journal struct {
	db *sql.DB
}

// Compile-time check that Journal implements store.Journal.
var _ store.Journal = (*Journal)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*Journal, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

// NewWithDB wraps an existing connection without running migrations.
func NewWithDB(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) RecordEdit(ctx context.Context, rec *model.EditRecord) error {
	return queryRecordEdit(ctx, j.db, rec)
}

func (j *Journal) ListEdits(ctx context.Context, filter store.EditFilter) ([]*model.EditRecord, error) {
	return queryListEdits(ctx, j.db, filter)
}

// PruneBefore deletes resolved edits older than cutoff and returns the count.
func (j *Journal) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return queryPruneEdits(ctx, j.db, cutoff)
}
