package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLiteStore implements StateStore on a single SQLite table.
type SQLiteStore struct {
	pool    *sqlitex.Pool
	path    string
	timeout time.Duration
	closed  atomic.Bool
}

// SQLiteStoreConfig holds SQLite store configuration.
type SQLiteStoreConfig struct {
	// Path is the database file, or ":memory:". Parent directories are
	// created for file paths.
	Path string

	// Timeout bounds each call, covering the wait for the connection
	// and the statements run on it.
	// Default: 5s
	Timeout time.Duration
}

// DefaultSQLiteStoreConfig returns configuration with sensible defaults.
func DefaultSQLiteStoreConfig() SQLiteStoreConfig {
	return SQLiteStoreConfig{
		Timeout: 5 * time.Second,
	}
}

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID`

// NewSQLiteStore opens (or creates) a SQLite database and its kv table.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSQLiteStoreConfig().Timeout
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	// One connection: every call is short and the store has one writer.
	// It also keeps ":memory:" databases coherent across calls.
	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    1,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}

	s := &SQLiteStore{
		pool:    pool,
		path:    cfg.Path,
		timeout: cfg.Timeout,
	}

	// Touch a connection now so a bad path fails here, not on first Get.
	_, release, err := s.take()
	if err != nil {
		pool.Close()
		return nil, err
	}
	release()

	return s, nil
}

func prepareConn(conn *sqlite.Conn) error {
	for _, stmt := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		kvSchema,
	} {
		if err := sqlitex.ExecuteTransient(conn, stmt, nil); err != nil {
			return fmt.Errorf("sqlite prepare: %w", err)
		}
	}
	return nil
}

// take borrows the connection. The timeout context stays bound to the
// connection as its interrupt until release returns it to the pool.
func (s *SQLiteStore) take() (*sqlite.Conn, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)

	conn, err := s.pool.Take(ctx)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("sqlite take: %w", err)
	}
	release := func() {
		s.pool.Put(conn)
		cancel()
	}
	return conn, release, nil
}

// Get retrieves a value by key.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	conn, release, err := s.take()
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		val   []byte
		found bool
	)
	err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			val = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, val)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return val, nil
}

// Put stores a value.
func (s *SQLiteStore) Put(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	conn, release, err := s.take()
	if err != nil {
		return err
	}
	defer release()

	if value == nil {
		value = []byte{}
	}
	err = sqlitex.Execute(conn,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		&sqlitex.ExecOptions{Args: []any{key, value}},
	)
	if err != nil {
		return fmt.Errorf("sqlite put: %w", err)
	}
	return nil
}

// Delete removes a key.
func (s *SQLiteStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	conn, release, err := s.take()
	if err != nil {
		return err
	}
	defer release()

	err = sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
	})
	if err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

// Keys returns all keys matching a pattern, sorted.
func (s *SQLiteStore) Keys(pattern string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	conn, release, err := s.take()
	if err != nil {
		return nil, err
	}
	defer release()

	var keys []string
	err = sqlitex.Execute(conn, "SELECT key FROM kv ORDER BY key", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			key := stmt.ColumnText(0)
			if MatchPattern(pattern, key) {
				keys = append(keys, key)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite keys: %w", err)
	}
	return keys, nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("sqlite close %s: %w", s.path, err)
	}
	return nil
}
