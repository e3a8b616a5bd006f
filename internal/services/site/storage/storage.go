// Package storage defines the key-value store the site content lives in and
// the change feed that keeps providers in sync across processes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates a requested key is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a create collided with an existing key.
	ErrConflict = errors.New("record conflict")
	// ErrClosed indicates the store was used after Close.
	ErrClosed = errors.New("store closed")
)

// Entry is one stored value.
type Entry struct {
	Key   string
	Value []byte
	// Version is the store-wide sequence number of the last write.
	Version int64
	// CreatedSeq orders entries by first insertion.
	CreatedSeq int64
	UpdatedAt  time.Time
}

// OpKind identifies one batch operation.
type OpKind string

const (
	// OpPut inserts or overwrites a key.
	OpPut OpKind = "put"
	// OpCreate inserts a key and fails with ErrConflict when it exists.
	OpCreate OpKind = "create"
	// OpUpdate overwrites a key and fails with ErrNotFound when it is missing.
	OpUpdate OpKind = "update"
	// OpDelete removes a key; missing keys are ignored.
	OpDelete OpKind = "delete"
)

// Op is one write inside an Apply batch.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

// Put builds an upsert operation.
func Put(key string, value []byte) Op { return Op{Kind: OpPut, Key: key, Value: value} }

// Create builds an insert-only operation.
func Create(key string, value []byte) Op { return Op{Kind: OpCreate, Key: key, Value: value} }

// Update builds an update-only operation.
func Update(key string, value []byte) Op { return Op{Kind: OpUpdate, Key: key, Value: value} }

// Delete builds a delete operation.
func Delete(key string) Op { return Op{Kind: OpDelete, Key: key} }

// ChangeOp identifies the effect of a write on a key.
type ChangeOp string

const (
	ChangePut    ChangeOp = "put"
	ChangeDelete ChangeOp = "delete"
)

// Change notifies subscribers that a key was written.
type Change struct {
	Key    string
	Op     ChangeOp
	Seq    int64
	Origin string
	// Local is true when this process performed the write.
	Local bool
}

// Store is the key-value store every content provider is built on.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	// List returns entries whose key starts with prefix, in insertion order.
	List(ctx context.Context, prefix string) ([]Entry, error)
	// Apply executes ops as one all-or-nothing batch.
	Apply(ctx context.Context, ops ...Op) error
	// Watch streams changes for keys under prefix until ctx is done.
	Watch(ctx context.Context, prefix string) (<-chan Change, error)
	Close() error
}

// ValidateOps rejects malformed batches before any write happens.
func ValidateOps(ops []Op) error {
	if len(ops) == 0 {
		return fmt.Errorf("at least one operation is required")
	}
	for i, op := range ops {
		if strings.TrimSpace(op.Key) == "" {
			return fmt.Errorf("operation %d: key is required", i)
		}
		switch op.Kind {
		case OpPut, OpCreate, OpUpdate:
			if op.Value == nil {
				return fmt.Errorf("operation %d (%s %s): value is required", i, op.Kind, op.Key)
			}
		case OpDelete:
		default:
			return fmt.Errorf("operation %d: unknown kind %q", i, op.Kind)
		}
	}
	return nil
}
