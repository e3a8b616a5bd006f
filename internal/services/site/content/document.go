// Package content provides the generic providers the site domain is built on:
// Document for singleton content records and Collection for keyed entities.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	platformotel "github.com/louisbranch/agencysite/internal/platform/otel"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

const tracerName = "github.com/louisbranch/agencysite/internal/services/site/content"

// Document is one JSON record stored under a fixed key and merged over a
// default value on load, so fields added to the default appear in old data.
type Document[T any] struct {
	store    storage.Store
	key      string
	defaults func() T
	validate func(T) error
	logger   *zap.Logger
	tracer   trace.Tracer

	mu     sync.RWMutex
	raw    []byte
	loaded bool
}

// DocumentOption configures a Document.
type DocumentOption[T any] func(*Document[T])

// WithValidator rejects Patch and Replace results that fail validate.
func WithValidator[T any](validate func(T) error) DocumentOption[T] {
	return func(d *Document[T]) {
		d.validate = validate
	}
}

// NewDocument builds a document provider for key.
func NewDocument[T any](store storage.Store, key string, defaults func() T, logger *zap.Logger, opts ...DocumentOption[T]) *Document[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Document[T]{
		store:    store,
		key:      key,
		defaults: defaults,
		logger:   logger.With(zap.String("document", key)),
		tracer:   platformotel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Key returns the storage key.
func (d *Document[T]) Key() string {
	return d.key
}

// Loaded reports whether the first Load finished.
func (d *Document[T]) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Load reads the stored value over the default. A missing key persists the
// default and a corrupt value is logged and replaced by the default.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	ctx, span := d.start(ctx, "document.load")
	defer span.End()

	defaultRaw, err := json.Marshal(d.defaults())
	if err != nil {
		return d.fail(span, fmt.Errorf("encode default %s: %w", d.key, err))
	}

	entry, err := d.store.Get(ctx, d.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return d.reseed(ctx, span, defaultRaw)
	case err != nil:
		return d.fail(span, fmt.Errorf("load %s: %w", d.key, err))
	}

	merged, err := mergeTop(defaultRaw, entry.Value)
	if err == nil {
		var value T
		value, err = decodeLenient[T](merged)
		if err == nil {
			raw, encodeErr := json.Marshal(value)
			if encodeErr != nil {
				return d.fail(span, fmt.Errorf("encode %s: %w", d.key, encodeErr))
			}
			d.set(raw)
			return value, nil
		}
	}

	d.logger.Warn("discarding corrupt content, reseeding default", zap.Error(err))
	span.AddEvent("reseed corrupt value")
	return d.reseed(ctx, span, defaultRaw)
}

func (d *Document[T]) reseed(ctx context.Context, span trace.Span, defaultRaw []byte) (T, error) {
	if err := d.store.Apply(ctx, storage.Put(d.key, defaultRaw)); err != nil {
		return d.fail(span, fmt.Errorf("seed %s: %w", d.key, err))
	}
	d.set(defaultRaw)
	return decodeLenient[T](defaultRaw)
}

// Get returns a copy of the cached value, loading it first if needed.
func (d *Document[T]) Get(ctx context.Context) (T, error) {
	d.mu.RLock()
	raw, loaded := d.raw, d.loaded
	d.mu.RUnlock()
	if !loaded {
		return d.Load(ctx)
	}
	return decodeLenient[T](raw)
}

// Raw returns the cached value as JSON.
func (d *Document[T]) Raw(ctx context.Context) ([]byte, error) {
	d.mu.RLock()
	raw, loaded := d.raw, d.loaded
	d.mu.RUnlock()
	if loaded {
		return bytes.Clone(raw), nil
	}
	if _, err := d.Load(ctx); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return bytes.Clone(d.raw), nil
}

// Patch overwrites the top-level fields present in partial, a JSON object,
// and persists the result.
func (d *Document[T]) Patch(ctx context.Context, partial []byte) (T, error) {
	ctx, span := d.start(ctx, "document.patch")
	defer span.End()

	current, err := d.Get(ctx)
	if err != nil {
		return d.fail(span, err)
	}
	next, err := patchValue(current, partial)
	if err != nil {
		return d.fail(span, err)
	}
	return d.write(ctx, span, next)
}

// Replace overwrites the whole value.
func (d *Document[T]) Replace(ctx context.Context, value T) (T, error) {
	ctx, span := d.start(ctx, "document.replace")
	defer span.End()
	return d.write(ctx, span, value)
}

func (d *Document[T]) write(ctx context.Context, span trace.Span, value T) (T, error) {
	if d.validate != nil {
		if err := d.validate(value); err != nil {
			return d.fail(span, err)
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return d.fail(span, fmt.Errorf("encode %s: %w", d.key, err))
	}
	if err := d.store.Apply(ctx, storage.Put(d.key, raw)); err != nil {
		return d.fail(span, fmt.Errorf("save %s: %w", d.key, err))
	}
	d.set(raw)
	return decodeLenient[T](raw)
}

// Sync reloads the cache whenever another process writes the key. It returns
// when ctx is done.
func (d *Document[T]) Sync(ctx context.Context) error {
	changes, err := d.store.Watch(ctx, d.key)
	if err != nil {
		return fmt.Errorf("watch %s: %w", d.key, err)
	}
	for change := range changes {
		if change.Key != d.key || change.Local {
			continue
		}
		if _, err := d.Load(ctx); err != nil && ctx.Err() == nil {
			d.logger.Warn("reload after external change", zap.Int64("seq", change.Seq), zap.Error(err))
		}
	}
	return nil
}

func (d *Document[T]) set(raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.raw = raw
	d.loaded = true
}

func (d *Document[T]) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return d.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("content.key", d.key)))
}

func (d *Document[T]) fail(span trace.Span, err error) (T, error) {
	var zero T
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if apperrors.KindOf(err) == apperrors.KindUnknown && errors.Is(err, storage.ErrClosed) {
		err = apperrors.Wrap(apperrors.KindUnavailable, "content store closed", err)
	}
	return zero, err
}
