// Package sqlite provides the SQLite-backed storage.Store used in production.
// Every write also appends to a change log that other processes tail.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/louisbranch/agencysite/internal/platform/id"
	sqlitemigrate "github.com/louisbranch/agencysite/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
	"github.com/louisbranch/agencysite/internal/services/site/storage/sqlite/migrations"
)

// Store is a storage.Store over one SQLite file.
type Store struct {
	sqlDB  *sql.DB
	path   string
	origin string
	logger *zap.Logger
	clock  func() time.Time
	broker *storage.Broker

	mu      sync.Mutex
	lastSeq int64
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOrigin overrides the generated writer id.
func WithOrigin(origin string) Option {
	return func(s *Store) {
		if strings.TrimSpace(origin) != "" {
			s.origin = strings.TrimSpace(origin)
		}
	}
}

// WithClock overrides the write timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the store at path and applies migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	origin, err := id.NewID()
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("generate origin: %w", err)
	}
	store := &Store{
		sqlDB:  sqlDB,
		path:   cleanPath,
		origin: origin,
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	store.broker = storage.NewBroker(store.logger)

	applied, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "")
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		store.logger.Info("applied migrations", zap.Strings("files", applied))
	}
	if err := sqlDB.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM kv_changes").Scan(&store.lastSeq); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("read change cursor: %w", err)
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Origin returns the writer id stamped on this store's changes.
func (s *Store) Origin() string {
	return s.origin
}

// Close closes subscribers and the database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.broker.Close()
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	return nil
}

// Get returns one entry.
func (s *Store) Get(ctx context.Context, key string) (storage.Entry, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Entry{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT key, value, version, created_seq, updated_at
FROM kv_entries
WHERE key = ?
`, key)
	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Entry{}, storage.ErrNotFound
		}
		return storage.Entry{}, fmt.Errorf("get %s: %w", key, err)
	}
	return entry, nil
}

// List returns entries under prefix in insertion order.
func (s *Store) List(ctx context.Context, prefix string) ([]storage.Entry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT key, value, version, created_seq, updated_at
FROM kv_entries
WHERE substr(CAST(key AS BLOB), 1, ?) = CAST(? AS BLOB)
ORDER BY created_seq
`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	defer rows.Close()

	entries := make([]storage.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Apply runs ops in one transaction and records a change row per effective
// write.
func (s *Store) Apply(ctx context.Context, ops ...storage.Op) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := storage.ValidateOps(ops); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback batch: %v", cause, rollbackErr)
		}
		return cause
	}

	now := toMillis(s.clock())
	changes := make([]storage.Change, 0, len(ops))
	for _, op := range ops {
		change, applied, err := s.applyOp(ctx, tx, op, now)
		if err != nil {
			return rollbackWith(err)
		}
		if applied {
			changes = append(changes, change)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.broker.Publish(changes...)
	return nil
}

func (s *Store) applyOp(ctx context.Context, tx *sql.Tx, op storage.Op, now int64) (storage.Change, bool, error) {
	switch op.Kind {
	case storage.OpDelete:
		result, err := tx.ExecContext(ctx, "DELETE FROM kv_entries WHERE key = ?", op.Key)
		if err != nil {
			return storage.Change{}, false, fmt.Errorf("delete %s: %w", op.Key, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return storage.Change{}, false, fmt.Errorf("delete %s: %w", op.Key, err)
		}
		if affected == 0 {
			return storage.Change{}, false, nil
		}
		seq, err := s.recordChange(ctx, tx, op.Key, storage.ChangeDelete, now)
		if err != nil {
			return storage.Change{}, false, err
		}
		return s.localChange(op.Key, storage.ChangeDelete, seq), true, nil
	}

	seq, err := s.recordChange(ctx, tx, op.Key, storage.ChangePut, now)
	if err != nil {
		return storage.Change{}, false, err
	}

	switch op.Kind {
	case storage.OpCreate:
		_, err = tx.ExecContext(ctx, `
INSERT INTO kv_entries (key, value, version, created_seq, updated_at)
VALUES (?, ?, ?, ?, ?)
`, op.Key, op.Value, seq, seq, now)
		if err != nil {
			if isUniqueConstraintError(err) {
				return storage.Change{}, false, fmt.Errorf("create %s: %w", op.Key, storage.ErrConflict)
			}
			return storage.Change{}, false, fmt.Errorf("create %s: %w", op.Key, err)
		}
	case storage.OpUpdate:
		result, err := tx.ExecContext(ctx, `
UPDATE kv_entries SET value = ?, version = ?, updated_at = ?
WHERE key = ?
`, op.Value, seq, now, op.Key)
		if err != nil {
			return storage.Change{}, false, fmt.Errorf("update %s: %w", op.Key, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return storage.Change{}, false, fmt.Errorf("update %s: %w", op.Key, err)
		}
		if affected == 0 {
			return storage.Change{}, false, fmt.Errorf("update %s: %w", op.Key, storage.ErrNotFound)
		}
	case storage.OpPut:
		_, err = tx.ExecContext(ctx, `
INSERT INTO kv_entries (key, value, version, created_seq, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value = excluded.value,
	version = excluded.version,
	updated_at = excluded.updated_at
`, op.Key, op.Value, seq, seq, now)
		if err != nil {
			return storage.Change{}, false, fmt.Errorf("put %s: %w", op.Key, err)
		}
	}
	return s.localChange(op.Key, storage.ChangePut, seq), true, nil
}

func (s *Store) recordChange(ctx context.Context, tx *sql.Tx, key string, op storage.ChangeOp, now int64) (int64, error) {
	result, err := tx.ExecContext(ctx, `
INSERT INTO kv_changes (key, op, origin, changed_at) VALUES (?, ?, ?, ?)
`, key, string(op), s.origin, now)
	if err != nil {
		return 0, fmt.Errorf("record change %s: %w", key, err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record change %s: %w", key, err)
	}
	return seq, nil
}

func (s *Store) localChange(key string, op storage.ChangeOp, seq int64) storage.Change {
	return storage.Change{Key: key, Op: op, Seq: seq, Origin: s.origin, Local: true}
}

// Watch subscribes to changes under prefix. Changes from other processes
// arrive once a Poller is running.
func (s *Store) Watch(ctx context.Context, prefix string) (<-chan storage.Change, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.broker.Subscribe(ctx, prefix)
}

type scanner func(dest ...any) error

func scanEntry(scan scanner) (storage.Entry, error) {
	var entry storage.Entry
	var updatedAt int64
	if err := scan(&entry.Key, &entry.Value, &entry.Version, &entry.CreatedSeq, &updatedAt); err != nil {
		return storage.Entry{}, err
	}
	entry.UpdatedAt = fromMillis(updatedAt)
	return entry, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}
