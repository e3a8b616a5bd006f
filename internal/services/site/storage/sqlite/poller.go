package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

const (
	// DefaultPollInterval bounds how stale another process's write can look
	// when file notifications are unavailable.
	DefaultPollInterval = 2 * time.Second
	// DefaultChangeRetention is how long change rows are kept for tailing.
	DefaultChangeRetention = 24 * time.Hour

	pruneInterval = time.Hour
)

// Poll republishes changes written by other origins since the last poll and
// returns how many it published.
func (s *Store) Poll(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	cursor := s.lastSeq
	s.mu.Unlock()

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, key, op, origin
FROM kv_changes
WHERE seq > ?
ORDER BY seq
`, cursor)
	if err != nil {
		return 0, fmt.Errorf("poll changes: %w", err)
	}
	defer rows.Close()

	var changes []storage.Change
	maxSeq := cursor
	for rows.Next() {
		var change storage.Change
		var op string
		if err := rows.Scan(&change.Seq, &change.Key, &op, &change.Origin); err != nil {
			return 0, fmt.Errorf("scan change: %w", err)
		}
		if change.Seq > maxSeq {
			maxSeq = change.Seq
		}
		if change.Origin == s.origin {
			continue
		}
		change.Op = storage.ChangeOp(op)
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate changes: %w", err)
	}

	s.mu.Lock()
	if maxSeq > s.lastSeq {
		s.lastSeq = maxSeq
	}
	s.mu.Unlock()

	s.broker.Publish(changes...)
	return len(changes), nil
}

// PruneChanges deletes change rows recorded before cutoff.
func (s *Store) PruneChanges(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM kv_changes WHERE changed_at < ?", toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune changes: %w", err)
	}
	return result.RowsAffected()
}

// Poller tails the change log so Watch subscribers see writes from other
// processes sharing the database file.
type Poller struct {
	store     *Store
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	clock     func() time.Time
}

// NewPoller builds a poller. Non-positive durations use the defaults.
func NewPoller(store *Store, interval time.Duration, retention time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if retention <= 0 {
		retention = DefaultChangeRetention
	}
	return &Poller{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    store.logger,
		clock:     time.Now,
	}
}

// Run polls on file notifications and on every interval tick until ctx is
// done.
func (p *Poller) Run(ctx context.Context) error {
	var events chan fsnotify.Event
	var watchErrors chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Warn("file notifications unavailable, polling on interval only", zap.Error(err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(p.store.path)); err != nil {
			p.logger.Warn("watch database directory", zap.String("dir", filepath.Dir(p.store.path)), zap.Error(err))
		} else {
			events = watcher.Events
			watchErrors = watcher.Errors
		}
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	pruneTicker := time.NewTicker(pruneInterval)
	defer pruneTicker.Stop()

	p.prune(ctx)
	base := filepath.Base(p.store.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.poll(ctx)
		case <-pruneTicker.C:
			p.prune(ctx)
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), base) && event.Has(fsnotify.Write) {
				p.poll(ctx)
			}
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			p.logger.Warn("database file watch error", zap.Error(err))
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	count, err := p.store.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("poll changes", zap.Error(err))
		}
		return
	}
	if count > 0 {
		p.logger.Debug("republished external changes", zap.Int("count", count))
	}
}

func (p *Poller) prune(ctx context.Context) {
	removed, err := p.store.PruneChanges(ctx, p.clock().Add(-p.retention))
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("prune change log", zap.Error(err))
		}
		return
	}
	if removed > 0 {
		p.logger.Info("pruned change log", zap.Int64("removed", removed))
	}
}
