package session

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/bububa/purecheck/errdefs"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps contexts as JSON rows in a SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path, ttl <= 0 uses DefaultTTL
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}
	return &SQLiteStore{
		db:   db,
		path: path,
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Context, error) {
	var (
		data      string
		updatedAt int64
	)
	row := s.db.QueryRowContext(ctx, "SELECT data, updated_at FROM sessions WHERE id = ?", id)
	if err := row.Scan(&data, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errdefs.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	if s.now().Sub(time.Unix(0, updatedAt)) > s.ttl {
		return nil, errdefs.ErrNotFound
	}
	ret := new(Context)
	if err := json.Unmarshal([]byte(data), ret); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return ret, nil
}

func (s *SQLiteStore) Put(ctx context.Context, id string, c *Context) error {
	now := s.now()
	value := *c
	if value.UpdatedAt.IsZero() {
		value.UpdatedAt = now
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, id, string(data), now.UnixNano())
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Purge deletes expired contexts and returns how many were deleted
func (s *SQLiteStore) Purge(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", s.now().Add(-s.ttl).UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
