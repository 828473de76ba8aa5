package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"expensebook/internal/log"
)

// SQLiteKV stores documents in a single kv table.
type SQLiteKV struct {
	db     *sql.DB
	path   string
	schema uint
	logger *log.Logger
}

// NewSQLiteKV opens (creating if needed) the database at dbPath and
// migrates it. A nil logger discards output.
func NewSQLiteKV(dbPath string, logger *log.Logger) (*SQLiteKV, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if dbPath == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	schema, err := RunMigrations(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteKV{db: db, path: dbPath, schema: schema, logger: logger}, nil
}

// Path returns the database file path.
func (s *SQLiteKV) Path() string { return s.path }

// SchemaVersion returns the migration version applied at open time.
func (s *SQLiteKV) SchemaVersion() uint { return s.schema }

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	return s.Batch(ctx, Set(key, value))
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	return s.Batch(ctx, Remove(key))
}

// Batch applies every mutation inside one transaction.
func (s *SQLiteKV) Batch(ctx context.Context, muts ...Mutation) error {
	if len(muts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	for _, m := range muts {
		if m.Delete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, m.Key); err != nil {
				return fmt.Errorf("delete %s: %w", m.Key, err)
			}
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			m.Key, m.Value, now)
		if err != nil {
			return fmt.Errorf("put %s: %w", m.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	keys := make([]string, len(muts))
	for i, m := range muts {
		keys[i] = m.Key
	}
	s.logger.DebugContext(ctx, "Batch committed", log.FieldKey, keys, log.FieldCount, len(muts))
	return nil
}

// Keys lists stored keys in lexical order.
func (s *SQLiteKV) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteKV) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
