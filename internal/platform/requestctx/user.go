// Package requestctx carries per-request identity through a context so
// outer middleware can read what inner handlers resolved.
package requestctx

import (
	"context"
	"sync"
)

type userSlotKey struct{}

type userSlot struct {
	mu    sync.Mutex
	email string
}

// WithUserSlot returns a context holding an empty, writable user slot.
func WithUserSlot(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userSlotKey{}, &userSlot{})
}

// SetUserEmail records the authenticated user. It is a no-op when ctx has no
// slot.
func SetUserEmail(ctx context.Context, email string) {
	slot := slotFrom(ctx)
	if slot == nil {
		return
	}
	slot.mu.Lock()
	slot.email = email
	slot.mu.Unlock()
}

// UserEmailFromContext returns the recorded user, or "".
func UserEmailFromContext(ctx context.Context) string {
	slot := slotFrom(ctx)
	if slot == nil {
		return ""
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.email
}

func slotFrom(ctx context.Context) *userSlot {
	if ctx == nil {
		return nil
	}
	slot, _ := ctx.Value(userSlotKey{}).(*userSlot)
	return slot
}
