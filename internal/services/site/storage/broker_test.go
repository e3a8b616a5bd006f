package storage

import (
	"context"
	"testing"
	"time"
)

func TestBrokerDeliversByPrefix(t *testing.T) {
	t.Parallel()

	broker := NewBroker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apps, err := broker.Subscribe(ctx, "apps/")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	all, err := broker.Subscribe(ctx, "")
	if err != nil {
		t.Fatalf("subscribe all: %v", err)
	}

	broker.Publish(
		Change{Key: "apps/notes", Op: ChangePut, Seq: 1},
		Change{Key: "users/a@example.com", Op: ChangePut, Seq: 2},
	)

	if got := receive(t, apps); got.Key != "apps/notes" {
		t.Fatalf("apps change = %q", got.Key)
	}
	select {
	case change := <-apps:
		t.Fatalf("unexpected change %q for apps subscriber", change.Key)
	default:
	}
	if got := receive(t, all); got.Seq != 1 {
		t.Fatalf("first change seq = %d", got.Seq)
	}
	if got := receive(t, all); got.Seq != 2 {
		t.Fatalf("second change seq = %d", got.Seq)
	}
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	t.Parallel()

	broker := NewBroker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := broker.Subscribe(ctx, "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	for i := 0; i < subscriberBuffer+10; i++ {
		broker.Publish(Change{Key: "k", Seq: int64(i)})
	}
	if got := len(ch); got != subscriberBuffer {
		t.Fatalf("buffered = %d, want %d", got, subscriberBuffer)
	}
}

func TestBrokerClosesOnContextDone(t *testing.T) {
	t.Parallel()

	broker := NewBroker(nil)
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := broker.Subscribe(ctx, "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
	if got := broker.Subscribers(); got != 0 {
		t.Fatalf("subscribers = %d, want 0", got)
	}
}

func TestBrokerRejectsSubscribeAfterClose(t *testing.T) {
	t.Parallel()

	broker := NewBroker(nil)
	broker.Close()
	if _, err := broker.Subscribe(context.Background(), ""); err != ErrClosed {
		t.Fatalf("subscribe after close = %v, want ErrClosed", err)
	}
}

func TestValidateOps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ops  []Op
		ok   bool
	}{
		{name: "empty batch"},
		{name: "blank key", ops: []Op{Put(" ", []byte("{}"))}},
		{name: "missing value", ops: []Op{Create("a", nil)}},
		{name: "unknown kind", ops: []Op{{Kind: "merge", Key: "a"}}},
		{name: "valid", ops: []Op{Put("a", []byte("{}")), Delete("b")}, ok: true},
	}
	for _, tc := range tests {
		err := ValidateOps(tc.ops)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: err = %v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}

func receive(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case change := <-ch:
		return change
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}
