package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/louisbranch/agencysite/internal/services/site/app"
	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inbox"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
	"github.com/louisbranch/agencysite/internal/services/site/storage/memory"
)

func TestParseConfigRequiresOneAction(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "none", args: nil, wantErr: true},
		{name: "two", args: []string{"-prune-messages", "-export"}, wantErr: true},
		{name: "prefix without export", args: []string{"-prune-messages", "-prefix", "users"}, wantErr: true},
		{name: "bad retention", args: []string{"-prune-messages", "-retention-months", "0"}, wantErr: true},
		{name: "prune", args: []string{"-prune-messages"}},
		{name: "export with prefix", args: []string{"-export", "-prefix", "users"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			_, err := ParseConfig(fs, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseConfigReadsEnv(t *testing.T) {
	t.Setenv("SITE_DB_PATH", "/tmp/other.db")
	t.Setenv("SITE_MESSAGE_RETENTION_MONTHS", "5")

	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-reseed-admin"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" || cfg.RetentionMonths != 5 || !cfg.ReseedAdmin {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func loadedSite(t *testing.T, store storage.Store, now time.Time) *app.Site {
	t.Helper()
	site := app.NewSite(store, nil, app.SiteConfig{
		AdminEmail:    accounts.DefaultAdminEmail,
		AdminPassword: accounts.DefaultAdminPassword,
		BcryptCost:    bcrypt.MinCost,
		Clock:         func() time.Time { return now },
	})
	if err := site.Load(context.Background()); err != nil {
		t.Fatalf("load site: %v", err)
	}
	return site
}

func TestPruneMessagesRemovesExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New(nil)
	old := loadedSite(t, store, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	if _, err := old.Inbox.Broadcast(ctx, inbox.BroadcastInput{
		Sender:     "Admin",
		Subject:    "Welcome",
		Body:       "Hello there",
		Recipients: []string{accounts.DefaultAdminEmail},
	}); err != nil {
		t.Fatalf("broadcast old: %v", err)
	}
	recent := loadedSite(t, store, time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	if _, err := recent.Inbox.Broadcast(ctx, inbox.BroadcastInput{
		Sender:     "Admin",
		Subject:    "News",
		Body:       "Still here",
		Recipients: []string{accounts.DefaultAdminEmail},
	}); err != nil {
		t.Fatalf("broadcast recent: %v", err)
	}

	var out bytes.Buffer
	err := runWithStore(ctx, Config{
		PruneMessages:   true,
		RetentionMonths: 3,
		JSONOutput:      true,
		Now:             func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	}, store, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got report
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode report %q: %v", out.String(), err)
	}
	if diff := cmp.Diff(report{Action: "prune-messages", Count: 1}, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	remaining, err := recent.Inbox.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Subject != "News" {
		t.Fatalf("remaining = %+v", remaining)
	}
}

func TestReseedAdminRecreatesDeletedAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New(nil)
	site := loadedSite(t, store, time.Now())
	if _, err := site.Accounts.DeleteUsers(ctx, accounts.DefaultAdminEmail); err != nil {
		t.Fatalf("delete admin: %v", err)
	}

	cfg := Config{
		ReseedAdmin:     true,
		AdminEmail:      accounts.DefaultAdminEmail,
		AdminPassword:   accounts.DefaultAdminPassword,
		RetentionMonths: 3,
	}
	var out bytes.Buffer
	if err := runWithStore(ctx, cfg, store, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Administrator recreated" {
		t.Fatalf("output = %q", got)
	}

	out.Reset()
	if err := runWithStore(ctx, cfg, store, &out); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Administrator already present" {
		t.Fatalf("second output = %q", got)
	}
}

func TestExportWritesJSONLines(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New(nil)
	if err := store.Apply(ctx,
		storage.Put("notes/a", []byte(`{"title":"first"}`)),
		storage.Put("notes/b", []byte(`not json`)),
		storage.Put("other", []byte(`{}`)),
	); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var out bytes.Buffer
	if err := runWithStore(ctx, Config{Export: true, Prefix: "notes/"}, store, &out); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	var first, second exportLine
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if first.Key != "notes/a" || string(first.Value) != `{"title":"first"}` {
		t.Fatalf("first = %+v", first)
	}
	if second.Key != "notes/b" || second.Raw != "not json" || second.Value != nil {
		t.Fatalf("second = %+v", second)
	}
}
