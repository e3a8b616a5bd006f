package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	platformotel "github.com/louisbranch/agencysite/internal/platform/otel"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// KeyField is the conflict field reported when the primary key collides.
const KeyField = "key"

// Config describes one entity collection.
type Config[T any] struct {
	// Name prefixes every storage key of the collection.
	Name string
	// Key returns the natural key of a record.
	Key func(T) string
	// Unique maps index names to secondary unique values. Empty values are
	// not indexed.
	Unique map[string]func(T) string
	// Seed returns demo records inserted the first time the collection loads
	// with no records. A marker key keeps later loads from seeding again.
	Seed func() []T
	// Validate runs before every insert and update.
	Validate func(T) error
	// Dependents lists extra keys deleted together with a record.
	Dependents func(key string) []string
}

// Collection stores one record per key plus one entry per unique index value,
// so uniqueness is enforced by the store inside each write batch.
type Collection[T any] struct {
	store  storage.Store
	cfg    Config[T]
	logger *zap.Logger
	tracer trace.Tracer
}

// NewCollection builds a collection provider.
func NewCollection[T any](store storage.Store, cfg Config[T], logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		store:  store,
		cfg:    cfg,
		logger: logger.With(zap.String("collection", cfg.Name)),
		tracer: platformotel.Tracer(tracerName),
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.cfg.Name
}

func (c *Collection[T]) recordPrefix() string {
	return c.cfg.Name + "/"
}

// RecordKey returns the storage key of a record.
func (c *Collection[T]) RecordKey(key string) string {
	return c.recordPrefix() + key
}

func (c *Collection[T]) indexKey(index string, value string) string {
	return c.cfg.Name + "#" + index + "/" + value
}

// seededKey marks that the demo seed ran once, so a collection emptied by
// an admin stays empty.
func (c *Collection[T]) seededKey() string {
	return c.cfg.Name + "#seeded"
}

// Load seeds a collection that was never seeded and removes records that no
// longer decode, together with their index entries and dependents.
func (c *Collection[T]) Load(ctx context.Context) error {
	ctx, span := c.start(ctx, "collection.load")
	defer span.End()

	// Indexes are listed before records: a record written in between is then
	// seen live and its index entry is kept.
	indexes, err := c.indexEntries(ctx)
	if err != nil {
		return c.fail(span, err)
	}
	entries, err := c.store.List(ctx, c.recordPrefix())
	if err != nil {
		return c.fail(span, fmt.Errorf("load %s: %w", c.cfg.Name, err))
	}

	live := make(map[string]bool, len(entries))
	var cleanup []storage.Op
	for _, entry := range entries {
		key := strings.TrimPrefix(entry.Key, c.recordPrefix())
		if _, err := decodeLenient[T](entry.Value); err != nil {
			c.logger.Warn("discarding corrupt record", zap.String("key", entry.Key), zap.Error(err))
			cleanup = append(cleanup, storage.Delete(entry.Key))
			cleanup = append(cleanup, c.dependentOps(key)...)
			continue
		}
		live[key] = true
	}
	for _, index := range indexes {
		if !live[index.owner] {
			cleanup = append(cleanup, storage.Delete(index.key))
		}
	}
	if len(cleanup) > 0 {
		if err := c.store.Apply(ctx, cleanup...); err != nil {
			return c.fail(span, fmt.Errorf("remove corrupt %s: %w", c.cfg.Name, err))
		}
	}

	if c.cfg.Seed == nil {
		return nil
	}
	seeded, err := c.exists(ctx, c.seededKey())
	if err != nil {
		return c.fail(span, fmt.Errorf("check %s seed: %w", c.cfg.Name, err))
	}
	if seeded {
		return nil
	}
	inserted := 0
	if len(live) == 0 {
		for _, record := range c.cfg.Seed() {
			if err := c.Insert(ctx, record); err != nil {
				if apperrors.IsKind(err, apperrors.KindConflict) {
					continue
				}
				return c.fail(span, fmt.Errorf("seed %s: %w", c.cfg.Name, err))
			}
			inserted++
		}
	}
	if err := c.store.Apply(ctx, storage.Put(c.seededKey(), []byte("true"))); err != nil {
		return c.fail(span, fmt.Errorf("mark %s seeded: %w", c.cfg.Name, err))
	}
	if inserted > 0 {
		c.logger.Info("seeded collection", zap.Int("records", inserted))
	}
	return nil
}

type indexEntry struct {
	key   string
	owner string
}

// indexEntries lists every unique index entry with the record key it points
// at. Entries that do not decode get an empty owner.
func (c *Collection[T]) indexEntries(ctx context.Context) ([]indexEntry, error) {
	if len(c.cfg.Unique) == 0 {
		return nil, nil
	}
	entries, err := c.store.List(ctx, c.cfg.Name+"#")
	if err != nil {
		return nil, fmt.Errorf("list %s indexes: %w", c.cfg.Name, err)
	}
	out := make([]indexEntry, 0, len(entries))
	for _, entry := range entries {
		index, _, ok := strings.Cut(strings.TrimPrefix(entry.Key, c.cfg.Name+"#"), "/")
		if _, known := c.cfg.Unique[index]; !ok || !known {
			continue
		}
		var owner string
		if err := json.Unmarshal(entry.Value, &owner); err != nil {
			owner = ""
		}
		out = append(out, indexEntry{key: entry.Key, owner: owner})
	}
	return out, nil
}

func (c *Collection[T]) dependentOps(key string) []storage.Op {
	if c.cfg.Dependents == nil {
		return nil
	}
	deps := c.cfg.Dependents(key)
	ops := make([]storage.Op, 0, len(deps))
	for _, dependent := range deps {
		ops = append(ops, storage.Delete(dependent))
	}
	return ops
}

// List returns every record in insertion order. Records that fail to decode
// are skipped.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	entries, err := c.store.List(ctx, c.recordPrefix())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.cfg.Name, err)
	}
	out := make([]T, 0, len(entries))
	for _, entry := range entries {
		record, err := decodeLenient[T](entry.Value)
		if err != nil {
			c.logger.Warn("skipping undecodable record", zap.String("key", entry.Key), zap.Error(err))
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// Count returns the number of stored records.
func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	entries, err := c.store.List(ctx, c.recordPrefix())
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.cfg.Name, err)
	}
	return len(entries), nil
}

// Get returns one record by natural key.
func (c *Collection[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	entry, err := c.store.Get(ctx, c.RecordKey(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return zero, apperrors.Wrap(apperrors.KindNotFound, fmt.Sprintf("%s %q not found", c.cfg.Name, key), err)
		}
		return zero, fmt.Errorf("get %s %q: %w", c.cfg.Name, key, err)
	}
	record, err := decodeLenient[T](entry.Value)
	if err != nil {
		return zero, fmt.Errorf("decode %s %q: %w", c.cfg.Name, key, err)
	}
	return record, nil
}

// GetBy returns the record owning value in a unique index.
func (c *Collection[T]) GetBy(ctx context.Context, index string, value string) (T, error) {
	var zero T
	key, err := c.lookup(ctx, index, value)
	if err != nil {
		return zero, err
	}
	return c.Get(ctx, key)
}

func (c *Collection[T]) lookup(ctx context.Context, index string, value string) (string, error) {
	if _, ok := c.cfg.Unique[index]; !ok {
		return "", fmt.Errorf("%s has no unique index %q", c.cfg.Name, index)
	}
	entry, err := c.store.Get(ctx, c.indexKey(index, value))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperrors.Wrap(apperrors.KindNotFound, fmt.Sprintf("%s %s %q not found", c.cfg.Name, index, value), err)
		}
		return "", fmt.Errorf("lookup %s %s: %w", c.cfg.Name, index, err)
	}
	var key string
	if err := json.Unmarshal(entry.Value, &key); err != nil {
		return "", fmt.Errorf("decode %s %s index: %w", c.cfg.Name, index, err)
	}
	return key, nil
}

// Exists reports whether a record with exactly key is stored.
func (c *Collection[T]) Exists(ctx context.Context, key string) (bool, error) {
	return c.exists(ctx, c.RecordKey(key))
}

// ExistsBy reports whether value is taken in a unique index.
func (c *Collection[T]) ExistsBy(ctx context.Context, index string, value string) (bool, error) {
	if _, ok := c.cfg.Unique[index]; !ok {
		return false, fmt.Errorf("%s has no unique index %q", c.cfg.Name, index)
	}
	return c.exists(ctx, c.indexKey(index, value))
}

func (c *Collection[T]) exists(ctx context.Context, storageKey string) (bool, error) {
	_, err := c.store.Get(ctx, storageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert creates a record and its index entries in one batch. extra ops join
// the same batch. Duplicate keys fail with a field-scoped conflict naming
// KeyField or the index.
func (c *Collection[T]) Insert(ctx context.Context, record T, extra ...storage.Op) error {
	ctx, span := c.start(ctx, "collection.insert")
	defer span.End()

	key, ops, err := c.insertOps(record)
	if err != nil {
		return c.fail(span, err)
	}
	ops = append(ops, extra...)

	if err := c.store.Apply(ctx, ops...); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return c.fail(span, c.conflict(ctx, record, key, err))
		}
		return c.fail(span, fmt.Errorf("insert %s %q: %w", c.cfg.Name, key, err))
	}
	return nil
}

// InsertAll creates every record in a single batch: either all are stored or
// none is.
func (c *Collection[T]) InsertAll(ctx context.Context, records []T) error {
	ctx, span := c.start(ctx, "collection.insert_all")
	defer span.End()
	span.SetAttributes(attribute.Int("content.records", len(records)))

	if len(records) == 0 {
		return nil
	}
	var ops []storage.Op
	for _, record := range records {
		_, recordOps, err := c.insertOps(record)
		if err != nil {
			return c.fail(span, err)
		}
		ops = append(ops, recordOps...)
	}
	if err := c.store.Apply(ctx, ops...); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			for _, record := range records {
				if key := c.cfg.Key(record); c.mustExist(ctx, c.RecordKey(key)) {
					return c.fail(span, c.conflict(ctx, record, key, err))
				}
			}
			return c.fail(span, apperrors.Wrap(apperrors.KindConflict, c.cfg.Name+" batch conflicts with stored records", err))
		}
		return c.fail(span, fmt.Errorf("insert %s batch: %w", c.cfg.Name, err))
	}
	return nil
}

func (c *Collection[T]) insertOps(record T) (string, []storage.Op, error) {
	key := strings.TrimSpace(c.cfg.Key(record))
	if key == "" {
		return "", nil, apperrors.Field(apperrors.KindInvalidInput, KeyField, "error.required", c.cfg.Name+" key is required")
	}
	if c.cfg.Validate != nil {
		if err := c.cfg.Validate(record); err != nil {
			return "", nil, err
		}
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s %q: %w", c.cfg.Name, key, err)
	}

	ops := []storage.Op{storage.Create(c.RecordKey(key), raw)}
	keyJSON, _ := json.Marshal(key)
	for _, index := range c.indexNames() {
		if value := c.cfg.Unique[index](record); value != "" {
			ops = append(ops, storage.Create(c.indexKey(index, value), keyJSON))
		}
	}
	return key, ops, nil
}

// Update applies mutate to one record and persists it, moving changed index
// entries in the same batch. Mutations may not change the natural key.
func (c *Collection[T]) Update(ctx context.Context, key string, mutate func(*T) error) (T, error) {
	var zero T
	ctx, span := c.start(ctx, "collection.update")
	defer span.End()

	current, err := c.Get(ctx, key)
	if err != nil {
		c.fail(span, err)
		return zero, err
	}
	next := current
	if err := mutate(&next); err != nil {
		c.fail(span, err)
		return zero, err
	}
	if c.cfg.Key(next) != key {
		err := apperrors.Field(apperrors.KindInvalidInput, KeyField, "error.key_immutable", c.cfg.Name+" key cannot change")
		c.fail(span, err)
		return zero, err
	}
	if c.cfg.Validate != nil {
		if err := c.cfg.Validate(next); err != nil {
			c.fail(span, err)
			return zero, err
		}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		err = fmt.Errorf("encode %s %q: %w", c.cfg.Name, key, err)
		c.fail(span, err)
		return zero, err
	}

	ops := []storage.Op{storage.Update(c.RecordKey(key), raw)}
	keyJSON, _ := json.Marshal(key)
	for _, index := range c.indexNames() {
		before, after := c.cfg.Unique[index](current), c.cfg.Unique[index](next)
		if before == after {
			continue
		}
		if before != "" {
			ops = append(ops, storage.Delete(c.indexKey(index, before)))
		}
		if after != "" {
			ops = append(ops, storage.Create(c.indexKey(index, after), keyJSON))
		}
	}

	if err := c.store.Apply(ctx, ops...); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			err = c.conflict(ctx, next, "", err)
		case errors.Is(err, storage.ErrNotFound):
			err = apperrors.Wrap(apperrors.KindNotFound, fmt.Sprintf("%s %q not found", c.cfg.Name, key), err)
		default:
			err = fmt.Errorf("update %s %q: %w", c.cfg.Name, key, err)
		}
		c.fail(span, err)
		return zero, err
	}
	return next, nil
}

// Patch overwrites the top-level fields present in partial.
func (c *Collection[T]) Patch(ctx context.Context, key string, partial []byte) (T, error) {
	return c.Update(ctx, key, func(record *T) error {
		next, err := patchValue(*record, partial)
		if err != nil {
			return err
		}
		*record = next
		return nil
	})
}

// Delete removes records, their index entries and dependents. Missing keys
// are skipped. It returns the number of records removed.
func (c *Collection[T]) Delete(ctx context.Context, keys ...string) (int, error) {
	ctx, span := c.start(ctx, "collection.delete")
	defer span.End()

	var ops []storage.Op
	removed := 0
	undecodable := map[string]bool{}
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		entry, err := c.store.Get(ctx, c.RecordKey(key))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			c.fail(span, err)
			return 0, fmt.Errorf("delete %s %q: %w", c.cfg.Name, key, err)
		}
		removed++
		ops = append(ops, storage.Delete(entry.Key))
		ops = append(ops, c.dependentOps(key)...)
		record, err := decodeLenient[T](entry.Value)
		if err != nil {
			undecodable[key] = true
			continue
		}
		for _, index := range c.indexNames() {
			if value := c.cfg.Unique[index](record); value != "" {
				ops = append(ops, storage.Delete(c.indexKey(index, value)))
			}
		}
	}
	if len(undecodable) > 0 {
		// Index values of an undecodable record are unknown: match by owner.
		indexes, err := c.indexEntries(ctx)
		if err != nil {
			c.fail(span, err)
			return 0, err
		}
		for _, index := range indexes {
			if undecodable[index.owner] {
				ops = append(ops, storage.Delete(index.key))
			}
		}
	}
	if len(ops) == 0 {
		return 0, nil
	}
	if err := c.store.Apply(ctx, ops...); err != nil {
		c.fail(span, err)
		return 0, fmt.Errorf("delete %s: %w", c.cfg.Name, err)
	}
	span.SetAttributes(attribute.Int("content.removed", removed))
	return removed, nil
}

// Watch streams changes to the collection's records until ctx is done.
func (c *Collection[T]) Watch(ctx context.Context) (<-chan storage.Change, error) {
	return c.store.Watch(ctx, c.recordPrefix())
}

// KeyOf returns the natural key stored in a change key, or "" when the change
// is not a record of this collection.
func (c *Collection[T]) KeyOf(change storage.Change) string {
	key, ok := strings.CutPrefix(change.Key, c.recordPrefix())
	if !ok {
		return ""
	}
	return key
}

// conflict names the field that collided. key is "" when the primary key is
// known not to be the cause.
func (c *Collection[T]) conflict(ctx context.Context, record T, key string, cause error) error {
	field := KeyField
	if key == "" || !c.mustExist(ctx, c.RecordKey(key)) {
		for _, index := range c.indexNames() {
			value := c.cfg.Unique[index](record)
			if value == "" {
				continue
			}
			if owner, err := c.lookup(ctx, index, value); err == nil && owner != c.cfg.Key(record) {
				field = index
				break
			}
		}
	}
	return &apperrors.Error{
		Kind:    apperrors.KindConflict,
		Field:   field,
		Key:     "error.conflict." + field,
		Message: fmt.Sprintf("%s %s already taken", c.cfg.Name, field),
		Cause:   cause,
	}
}

func (c *Collection[T]) mustExist(ctx context.Context, storageKey string) bool {
	ok, err := c.exists(ctx, storageKey)
	return err == nil && ok
}

func (c *Collection[T]) indexNames() []string {
	names := make([]string, 0, len(c.cfg.Unique))
	for name := range c.cfg.Unique {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Collection[T]) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("content.collection", c.cfg.Name)))
}

func (c *Collection[T]) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
