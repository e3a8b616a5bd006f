package content

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
	"github.com/louisbranch/agencysite/internal/services/site/storage/memory"
)

type aboutPage struct {
	Title   string   `json:"title"`
	Intro   string   `json:"intro"`
	Values  []string `json:"values"`
	Mission string   `json:"mission"`
}

func defaultAbout() aboutPage {
	return aboutPage{Title: "About us", Intro: "We build things.", Values: []string{"Craft"}, Mission: "Ship"}
}

func TestDocumentLoadPersistsDefaultWhenMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New(nil)
	doc := NewDocument(store, "aboutPageContent", defaultAbout, nil)
	if doc.Loaded() {
		t.Fatal("expected not loaded before Load")
	}

	got, err := doc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(defaultAbout(), got); diff != "" {
		t.Fatalf("loaded value mismatch (-want +got):\n%s", diff)
	}
	if !doc.Loaded() {
		t.Fatal("expected loaded after Load")
	}
	if _, err := store.Get(ctx, "aboutPageContent"); err != nil {
		t.Fatalf("default not persisted: %v", err)
	}
}

func TestDocumentLoadMergesStoredOverDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New(nil)
	if err := store.Apply(ctx, storage.Put("aboutPageContent", []byte(`{"title":"Stored","retired":"x"}`))); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := NewDocument(store, "aboutPageContent", defaultAbout, nil).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := defaultAbout()
	want.Title = "Stored"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merged value mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentLoadReseedsCorruptValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for _, raw := range []string{`{"title":`, `[1,2]`, `{"title":42}`} {
		store := memory.New(nil)
		if err := store.Apply(ctx, storage.Put("aboutPageContent", []byte(raw))); err != nil {
			t.Fatalf("seed: %v", err)
		}
		got, err := NewDocument(store, "aboutPageContent", defaultAbout, nil).Load(ctx)
		if err != nil {
			t.Fatalf("load %s: %v", raw, err)
		}
		if diff := cmp.Diff(defaultAbout(), got); diff != "" {
			t.Fatalf("reseeded value for %s mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestDocumentPatchIsShallowMergeAndSurvivesReload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New(nil)
	doc := NewDocument(store, "aboutPageContent", defaultAbout, nil)
	if _, err := doc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := doc.Patch(ctx, []byte(`{"title":"New title","values":["Care","Speed"]}`))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	want := defaultAbout()
	want.Title = "New title"
	want.Values = []string{"Care", "Speed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("patched value mismatch (-want +got):\n%s", diff)
	}

	cached, err := doc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, cached); diff != "" {
		t.Fatalf("cached value mismatch (-want +got):\n%s", diff)
	}

	reloaded, err := NewDocument(store, "aboutPageContent", defaultAbout, nil).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(want, reloaded); diff != "" {
		t.Fatalf("reloaded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentPatchRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	doc := NewDocument(memory.New(nil), "aboutPageContent", defaultAbout, nil)
	for _, partial := range []string{`{"unknown":1}`, `{"title":7}`, `"title"`, `{`} {
		_, err := doc.Patch(ctx, []byte(partial))
		if !apperrors.IsKind(err, apperrors.KindInvalidInput) {
			t.Fatalf("patch %s = %v, want invalid input", partial, err)
		}
	}
}

func TestDocumentValidatorGuardsWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	doc := NewDocument(memory.New(nil), "aboutPageContent", defaultAbout, nil,
		WithValidator(func(page aboutPage) error {
			if page.Title == "" {
				return apperrors.Field(apperrors.KindInvalidInput, "title", "error.required", "title is required")
			}
			return nil
		}),
	)
	if _, err := doc.Replace(ctx, aboutPage{}); apperrors.FieldOf(err) != "title" {
		t.Fatalf("replace = %v, want title field error", err)
	}
	got, err := doc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != defaultAbout().Title {
		t.Fatalf("title = %q, want default", got.Title)
	}
}

func TestDocumentSyncReloadsOnlyExternalChanges(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &externalStore{Store: memory.New(nil)}
	doc := NewDocument(store, "aboutPageContent", defaultAbout, nil)
	if _, err := doc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- doc.Sync(ctx) }()
	waitFor(t, func() bool { return store.watching() })

	store.external.Store(true)
	if err := store.Apply(ctx, storage.Put("aboutPageContent", []byte(`{"title":"From elsewhere"}`))); err != nil {
		t.Fatalf("external write: %v", err)
	}
	waitFor(t, func() bool {
		got, err := doc.Get(ctx)
		return err == nil && got.Title == "From elsewhere"
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("sync: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sync did not stop")
	}
}

// externalStore marks changes as coming from another process once external
// is set, the way the sqlite poller republishes them.
type externalStore struct {
	*memory.Store
	external atomic.Bool
	watchers atomic.Int32
}

func (s *externalStore) Watch(ctx context.Context, prefix string) (<-chan storage.Change, error) {
	in, err := s.Store.Watch(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(chan storage.Change, 8)
	s.watchers.Add(1)
	go func() {
		defer close(out)
		for change := range in {
			if s.external.Load() {
				change.Local = false
			}
			out <- change
		}
	}()
	return out, nil
}

func (s *externalStore) watching() bool {
	return s.watchers.Load() > 0
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
