// Package storagetest runs the shared behavioral checks every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// Factory opens a fresh, empty store for one subtest.
type Factory func(t *testing.T) storage.Store

// Run executes the conformance suite against stores built by open.
func Run(t *testing.T, open Factory) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		store := open(t)
		_, err := store.Get(context.Background(), "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("get missing = %v, want ErrNotFound", err)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		mustApply(t, store, storage.Put("siteSettings", []byte(`{"siteName":"Agency"}`)))

		entry, err := store.Get(ctx, "siteSettings")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(entry.Value) != `{"siteName":"Agency"}` {
			t.Fatalf("value = %s", entry.Value)
		}
		if entry.Version == 0 || entry.CreatedSeq == 0 {
			t.Fatalf("expected sequence numbers, got %+v", entry)
		}
	})

	t.Run("list keeps insertion order under prefix", func(t *testing.T) {
		store := open(t)
		mustApply(t, store, storage.Create("apps/zeta", []byte(`1`)))
		mustApply(t, store, storage.Create("apps/alpha", []byte(`2`)))
		mustApply(t, store, storage.Create("services/web", []byte(`3`)))
		mustApply(t, store, storage.Put("apps/zeta", []byte(`4`)))

		entries, err := store.List(context.Background(), "apps/")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff([]string{"apps/zeta", "apps/alpha"}, keys(entries)); diff != "" {
			t.Fatalf("list keys mismatch (-want +got):\n%s", diff)
		}
		if string(entries[0].Value) != "4" {
			t.Fatalf("updated value = %s", entries[0].Value)
		}
	})

	t.Run("list matches multibyte prefixes by bytes", func(t *testing.T) {
		store := open(t)
		mustApply(t, store,
			storage.Create("users#username/joão", []byte(`"a"`)),
			storage.Create("users#username/joãozinho", []byte(`"b"`)),
			storage.Create("users#username/jose", []byte(`"c"`)),
		)

		entries, err := store.List(context.Background(), "users#username/joão")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff([]string{"users#username/joão", "users#username/joãozinho"}, keys(entries)); diff != "" {
			t.Fatalf("list keys mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("create conflicts and rolls back the batch", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		mustApply(t, store, storage.Create("users/a@example.com", []byte(`{}`)))

		err := store.Apply(ctx,
			storage.Create("users/b@example.com", []byte(`{}`)),
			storage.Create("users/a@example.com", []byte(`{}`)),
		)
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("apply = %v, want ErrConflict", err)
		}
		if _, err := store.Get(ctx, "users/b@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("partial batch leaked: %v", err)
		}
	})

	t.Run("update requires existing key", func(t *testing.T) {
		store := open(t)
		err := store.Apply(context.Background(), storage.Update("apps/missing", []byte(`{}`)))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("update missing = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete removes and ignores missing", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		mustApply(t, store, storage.Create("apps/a", []byte(`{}`)))
		mustApply(t, store, storage.Delete("apps/a"), storage.Delete("apps/never"))

		entries, err := store.List(ctx, "apps/")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("entries = %v, want none", keys(entries))
		}
	})

	t.Run("watch reports local changes under prefix", func(t *testing.T) {
		store := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := store.Watch(ctx, "apps/")
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
		mustApply(t, store, storage.Put("homePageContent", []byte(`{}`)))
		mustApply(t, store, storage.Create("apps/a", []byte(`{}`)), storage.Delete("apps/a"))

		first := Receive(t, changes)
		second := Receive(t, changes)
		if first.Key != "apps/a" || first.Op != storage.ChangePut || !first.Local {
			t.Fatalf("first change = %+v", first)
		}
		if second.Op != storage.ChangeDelete || second.Seq <= first.Seq {
			t.Fatalf("second change = %+v", second)
		}
	})

	t.Run("closed store rejects calls", func(t *testing.T) {
		store := open(t)
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if _, err := store.Get(context.Background(), "k"); err == nil {
			t.Fatal("expected error after close")
		}
	})
}

// Receive waits for one change or fails the test.
func Receive(t *testing.T, changes <-chan storage.Change) storage.Change {
	t.Helper()
	select {
	case change, ok := <-changes:
		if !ok {
			t.Fatal("change channel closed")
		}
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return storage.Change{}
}

func mustApply(t *testing.T, store storage.Store, ops ...storage.Op) {
	t.Helper()
	if err := store.Apply(context.Background(), ops...); err != nil {
		t.Fatalf("apply: %v", err)
	}
}

func keys(entries []storage.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Key)
	}
	return out
}
