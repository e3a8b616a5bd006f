// Package maintenance implements one-shot operations against the site store:
// message pruning, administrator reseeding and a JSON lines export.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"

	entrypoint "github.com/louisbranch/agencysite/internal/platform/cmd"
	"github.com/louisbranch/agencysite/internal/platform/logging"
	"github.com/louisbranch/agencysite/internal/services/site/app"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// Config holds maintenance command configuration.
type Config struct {
	DBPath          string        `env:"SITE_DB_PATH" envDefault:"data/site.db"`
	AdminEmail      string        `env:"SITE_ADMIN_EMAIL" envDefault:"admin@agency.test"`
	AdminPassword   string        `env:"SITE_ADMIN_PASSWORD" envDefault:"adminpassword"`
	RetentionMonths int           `env:"SITE_MESSAGE_RETENTION_MONTHS" envDefault:"3"`
	Timeout         time.Duration `env:"SITE_MAINTENANCE_TIMEOUT" envDefault:"5m"`
	LogLevel        string        `env:"SITE_LOG_LEVEL" envDefault:"warn"`
	PruneMessages   bool
	ReseedAdmin     bool
	Export          bool
	Prefix          string
	JSONOutput      bool
	// Now overrides the pruning clock. Tests only.
	Now func() time.Time
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the site sqlite database (default: SITE_DB_PATH or data/site.db)")
	fs.IntVar(&cfg.RetentionMonths, "retention-months", cfg.RetentionMonths, "months an inbox message is kept")
	fs.BoolVar(&cfg.PruneMessages, "prune-messages", false, "delete inbox messages older than the retention period")
	fs.BoolVar(&cfg.ReseedAdmin, "reseed-admin", false, "recreate the administrator account when it is missing")
	fs.BoolVar(&cfg.Export, "export", false, "write every stored record as JSON lines")
	fs.StringVar(&cfg.Prefix, "prefix", "", "only export keys with this prefix")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON reports")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	actions := 0
	for _, set := range []bool{c.PruneMessages, c.ReseedAdmin, c.Export} {
		if set {
			actions++
		}
	}
	switch {
	case actions == 0:
		return errors.New("one of -prune-messages, -reseed-admin or -export is required")
	case actions > 1:
		return errors.New("-prune-messages, -reseed-admin and -export cannot be combined")
	case c.Prefix != "" && !c.Export:
		return errors.New("-prefix requires -export")
	case c.RetentionMonths <= 0:
		return fmt.Errorf("-retention-months must be > 0, got %d", c.RetentionMonths)
	}
	return nil
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := app.OpenStore(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", closeErr)
		}
	}()
	return entrypoint.Run(ctx, entrypoint.ServiceMaintenance, logger, func(ctx context.Context) error {
		return runWithStore(ctx, cfg, store, out)
	})
}

// report is the outcome of one action.
type report struct {
	Action  string `json:"action"`
	Count   int    `json:"count"`
	Created bool   `json:"created,omitempty"`
}

func runWithStore(ctx context.Context, cfg Config, store storage.Store, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.Export {
		return export(ctx, store, cfg.Prefix, out)
	}

	site := app.NewSite(store, nil, app.SiteConfig{
		AdminEmail:      cfg.AdminEmail,
		AdminPassword:   cfg.AdminPassword,
		RetentionMonths: cfg.RetentionMonths,
	})

	var result report
	switch {
	case cfg.PruneMessages:
		if err := site.Inbox.Load(ctx); err != nil {
			return fmt.Errorf("load messages: %w", err)
		}
		now := time.Now
		if cfg.Now != nil {
			now = cfg.Now
		}
		removed, err := site.Inbox.Prune(ctx, now())
		if err != nil {
			return fmt.Errorf("prune messages: %w", err)
		}
		result = report{Action: "prune-messages", Count: removed}
	case cfg.ReseedAdmin:
		if err := site.Pages.Load(ctx); err != nil {
			return fmt.Errorf("load pages: %w", err)
		}
		created, err := site.Accounts.EnsureAdmin(ctx)
		if err != nil {
			return fmt.Errorf("reseed admin: %w", err)
		}
		count, err := site.Accounts.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		result = report{Action: "reseed-admin", Count: count, Created: created}
	}

	if cfg.JSONOutput {
		return json.NewEncoder(out).Encode(result)
	}
	switch result.Action {
	case "prune-messages":
		fmt.Fprintf(out, "Pruned %d inbox messages older than %d months\n", result.Count, cfg.RetentionMonths)
	case "reseed-admin":
		if result.Created {
			fmt.Fprintln(out, "Administrator recreated")
		} else {
			fmt.Fprintln(out, "Administrator already present")
		}
	}
	return nil
}

type exportLine struct {
	Key       string          `json:"key"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Value     json.RawMessage `json:"value,omitempty"`
	Raw       string          `json:"raw,omitempty"`
}

// export writes one JSON object per entry. Values that are not valid JSON are
// kept verbatim under "raw".
func export(ctx context.Context, store storage.Store, prefix string, out io.Writer) error {
	entries, err := store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	encoder := json.NewEncoder(out)
	for _, entry := range entries {
		line := exportLine{Key: entry.Key, Version: entry.Version, UpdatedAt: entry.UpdatedAt}
		if gjson.ValidBytes(entry.Value) {
			line.Value = entry.Value
		} else {
			line.Raw = string(entry.Value)
		}
		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("encode %s: %w", entry.Key, err)
		}
	}
	return nil
}
