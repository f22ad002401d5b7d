package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rendis/aqimap/internal/model"
)

// Store is the sqlite-backed payload cache.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	ttl time.Duration
}

// NewStore opens (creating if needed) the cache database at dbPath. A ttl of
// 0 keeps entries forever.
func NewStore(dbPath string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, ttl: ttl}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS boundary_payloads (
		kind TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		payload BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Put replaces the cached payload for e.Kind.
func (s *Store) Put(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boundary_payloads (kind, provider, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			provider = excluded.provider,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, string(e.Kind), e.Provider, e.Payload, e.FetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("storing payload for %s: %w", e.Kind, err)
	}
	return nil
}

// Get returns the cached payload for kind, or ErrMiss when absent or expired.
func (s *Store) Get(ctx context.Context, kind model.Kind) (Entry, error) {
	var (
		e  = Entry{Kind: kind}
		ms int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT provider, payload, fetched_at FROM boundary_payloads WHERE kind = ?`, string(kind),
	).Scan(&e.Provider, &e.Payload, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading payload for %s: %w", kind, err)
	}
	e.FetchedAt = time.UnixMilli(ms)
	if s.ttl > 0 && time.Since(e.FetchedAt) > s.ttl {
		return Entry{}, ErrMiss
	}
	return e, nil
}

// Count returns how many kinds have a cached payload.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM boundary_payloads").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
