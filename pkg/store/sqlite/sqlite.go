// Package sqlite implements store.Store on top of a SQLite database.
//
// The schema is owned by goose migrations embedded in the binary and applied
// on open, so a fresh database file is usable immediately.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/dashgate/pkg/store"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const backend = "sqlite"

// Config contains configuration for the SQLite backend.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging so readers don't block the writer.
	// Default: true
	WALMode bool

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default SQLite configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:         "data/dashgate.db",
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// Store is a SQLite-backed definition store.
type Store struct {
	db     *sqlx.DB
	config *Config
	logger *slog.Logger
}

// row mirrors the definitions table.
type row struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	Definition []byte    `db:"definition"`
	Encoding   string    `db:"encoding"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Open connects to the database at config.Path and applies pending migrations.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	logger := slog.Default().With("component", "store.sqlite")

	db, err := sqlx.Connect("sqlite", dsn(config))
	if err != nil {
		return nil, store.NewStorageError(backend, "open", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}

	s := &Store{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)
	return s, nil
}

// dsn builds the connection string. Per-connection pragmas go here so every
// connection the pool opens gets them.
func dsn(config *Config) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", config.Path, config.BusyTimeout.Milliseconds())
}

// initialize applies database-wide pragmas and migrations.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return store.NewStorageError(backend, "enable_wal", err)
		}
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return store.NewStorageError(backend, "set_dialect", err)
	}
	if err := goose.Up(s.db.DB, "migrations"); err != nil {
		return store.NewStorageError(backend, "migrate", err)
	}

	s.logger.Debug("database migrations applied")
	return nil
}

// FindDefinition returns the record stored under id.
func (s *Store) FindDefinition(ctx context.Context, id string) (*store.Record, error) {
	var r row
	err := s.db.GetContext(ctx, &r,
		`SELECT id, title, definition, encoding, updated_at FROM definitions WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.NewStorageError(backend, "find", err)
	}
	return r.record(), nil
}

// ListIDs returns all stored identifiers in ascending order.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM definitions ORDER BY id ASC`); err != nil {
		return nil, store.NewStorageError(backend, "list", err)
	}
	return ids, nil
}

// PutDefinition inserts or replaces rec.
func (s *Store) PutDefinition(ctx context.Context, rec *store.Record) error {
	if rec == nil || rec.ID == "" {
		return store.NewStorageError(backend, "put", errors.New("record id is required"))
	}
	r := row{
		ID:         rec.ID,
		Title:      rec.Title,
		Definition: rec.Definition,
		Encoding:   rec.Encoding,
		UpdatedAt:  rec.UpdatedAt,
	}
	if r.Encoding == "" {
		r.Encoding = store.EncodingIdentity
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO definitions (id, title, definition, encoding, updated_at)
		VALUES (:id, :title, :definition, :encoding, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			definition = excluded.definition,
			encoding = excluded.encoding,
			updated_at = excluded.updated_at`, r)
	if err != nil {
		return store.NewStorageError(backend, "put", err)
	}
	return nil
}

// DeleteDefinition removes the record stored under id.
func (s *Store) DeleteDefinition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM definitions WHERE id = ?`, id)
	if err != nil {
		return store.NewStorageError(backend, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.NewStorageError(backend, "delete", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing sqlite store: %w", err)
	}
	return nil
}

func (r *row) record() *store.Record {
	return &store.Record{
		ID:         r.ID,
		Title:      r.Title,
		Definition: r.Definition,
		Encoding:   r.Encoding,
		UpdatedAt:  r.UpdatedAt,
	}
}
