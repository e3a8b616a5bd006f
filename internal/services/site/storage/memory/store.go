// Package memory provides an in-process storage.Store for tests and
// single-process development.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/platform/id"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// Store keeps entries in a map guarded by a mutex. Batches are applied to a
// copy of the map and swapped in on success.
type Store struct {
	origin string
	broker *storage.Broker
	clock  func() time.Time

	mu      sync.RWMutex
	entries map[string]storage.Entry
	seq     int64
	closed  bool
}

// New builds an empty store.
func New(logger *zap.Logger) *Store {
	origin, err := id.NewID()
	if err != nil {
		origin = "memory"
	}
	return &Store{
		origin:  origin,
		broker:  storage.NewBroker(logger),
		clock:   time.Now,
		entries: map[string]storage.Entry{},
	}
}

// Origin returns the writer id stamped on this store's changes.
func (s *Store) Origin() string {
	return s.origin
}

// Get returns one entry.
func (s *Store) Get(ctx context.Context, key string) (storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return storage.Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.Entry{}, storage.ErrClosed
	}
	entry, ok := s.entries[key]
	if !ok {
		return storage.Entry{}, storage.ErrNotFound
	}
	return cloneEntry(entry), nil
}

// List returns entries under prefix in insertion order.
func (s *Store) List(ctx context.Context, prefix string) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	out := make([]storage.Entry, 0)
	for key, entry := range s.entries {
		if strings.HasPrefix(key, prefix) {
			out = append(out, cloneEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedSeq < out[j].CreatedSeq })
	return out, nil
}

// Apply runs ops as one batch.
func (s *Store) Apply(ctx context.Context, ops ...storage.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateOps(ops); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return storage.ErrClosed
	}
	work := make(map[string]storage.Entry, len(s.entries)+len(ops))
	for key, entry := range s.entries {
		work[key] = entry
	}
	seq := s.seq
	now := s.clock().UTC()
	changes := make([]storage.Change, 0, len(ops))

	for _, op := range ops {
		existing, exists := work[op.Key]
		switch op.Kind {
		case storage.OpCreate:
			if exists {
				s.mu.Unlock()
				return fmt.Errorf("create %s: %w", op.Key, storage.ErrConflict)
			}
		case storage.OpUpdate:
			if !exists {
				s.mu.Unlock()
				return fmt.Errorf("update %s: %w", op.Key, storage.ErrNotFound)
			}
		case storage.OpDelete:
			if !exists {
				continue
			}
			seq++
			delete(work, op.Key)
			changes = append(changes, storage.Change{Key: op.Key, Op: storage.ChangeDelete, Seq: seq, Origin: s.origin, Local: true})
			continue
		}

		seq++
		entry := storage.Entry{
			Key:        op.Key,
			Value:      bytes.Clone(op.Value),
			Version:    seq,
			CreatedSeq: seq,
			UpdatedAt:  now,
		}
		if exists {
			entry.CreatedSeq = existing.CreatedSeq
		}
		work[op.Key] = entry
		changes = append(changes, storage.Change{Key: op.Key, Op: storage.ChangePut, Seq: seq, Origin: s.origin, Local: true})
	}

	s.entries = work
	s.seq = seq
	s.mu.Unlock()

	s.broker.Publish(changes...)
	return nil
}

// Watch subscribes to changes under prefix.
func (s *Store) Watch(ctx context.Context, prefix string) (<-chan storage.Change, error) {
	return s.broker.Subscribe(ctx, prefix)
}

// Close releases subscribers. Later calls fail with storage.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.broker.Close()
	return nil
}

func cloneEntry(entry storage.Entry) storage.Entry {
	entry.Value = bytes.Clone(entry.Value)
	return entry
}
