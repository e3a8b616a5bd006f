// Package site parses site command flags and runs the web process.
package site

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	entrypoint "github.com/louisbranch/agencysite/internal/platform/cmd"
	"github.com/louisbranch/agencysite/internal/platform/id"
	"github.com/louisbranch/agencysite/internal/platform/logging"
	"github.com/louisbranch/agencysite/internal/services/site/app"
	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/storage/sqlite"
	"github.com/louisbranch/agencysite/internal/services/site/web"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/requestmeta"
)

// Config holds site command configuration.
type Config struct {
	HTTPAddr            string        `env:"SITE_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath              string        `env:"SITE_DB_PATH" envDefault:"data/site.db"`
	SessionSecret       string        `env:"SITE_SESSION_SECRET"`
	SessionTTL          time.Duration `env:"SITE_SESSION_TTL" envDefault:"168h"`
	AdminEmail          string        `env:"SITE_ADMIN_EMAIL" envDefault:"admin@agency.test"`
	AdminPassword       string        `env:"SITE_ADMIN_PASSWORD" envDefault:"adminpassword"`
	SeedDemo            bool          `env:"SITE_SEED_DEMO" envDefault:"true"`
	LogLevel            string        `env:"SITE_LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"SITE_LOG_FORMAT" envDefault:"json"`
	RetentionMonths     int           `env:"SITE_MESSAGE_RETENTION_MONTHS" envDefault:"3"`
	PruneInterval       time.Duration `env:"SITE_PRUNE_INTERVAL" envDefault:"1h"`
	PollInterval        time.Duration `env:"SITE_POLL_INTERVAL" envDefault:"2s"`
	TrustForwardedProto bool          `env:"SITE_TRUST_FORWARDED_PROTO"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The site SQLite database path")
	fs.StringVar(&cfg.AdminEmail, "admin-email", cfg.AdminEmail, "Email of the seeded administrator")
	fs.BoolVar(&cfg.SeedDemo, "seed-demo", cfg.SeedDemo, "Seed demo catalog entries into an empty store")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json or console)")
	fs.IntVar(&cfg.RetentionMonths, "message-retention-months", cfg.RetentionMonths, "Months an inbox message is kept")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Change log poll interval")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Trust X-Forwarded-Proto from a proxy")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("http address is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db path is required")
	}
	if c.RetentionMonths <= 0 {
		return fmt.Errorf("message retention must be positive, got %d", c.RetentionMonths)
	}
	if secret := c.SessionSecret; secret != "" && len(secret) < 16 {
		return errors.New("session secret must be at least 16 bytes")
	}
	return nil
}

// Run starts the site until ctx is done.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.Run(ctx, entrypoint.ServiceSite, logger, func(ctx context.Context) error {
		return run(ctx, cfg, logger)
	})
}

func run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	store, err := app.OpenStore(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	site := app.NewSite(store, logger, app.SiteConfig{
		SeedDemo:        cfg.SeedDemo,
		AdminEmail:      cfg.AdminEmail,
		AdminPassword:   cfg.AdminPassword,
		RetentionMonths: cfg.RetentionMonths,
		PruneInterval:   cfg.PruneInterval,
	})
	if err := site.Load(ctx); err != nil {
		return fmt.Errorf("load site: %w", err)
	}

	secret, err := sessionSecret(cfg.SessionSecret, logger)
	if err != nil {
		return err
	}
	sessions, err := accounts.NewSessions(accounts.SessionConfig{Secret: []byte(secret), TTL: cfg.SessionTTL})
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}

	server, err := web.NewServer(ctx, web.Config{
		HTTPAddr: cfg.HTTPAddr,
		Dependencies: module.Dependencies{
			Pages:        site.Pages,
			Catalog:      site.Catalog,
			Accounts:     site.Accounts,
			Sessions:     sessions,
			Chat:         site.Chat,
			Inbox:        site.Inbox,
			Files:        site.Files,
			Inquiries:    site.Inquiries,
			Logger:       logger.Named("web"),
			SchemePolicy: requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto},
		},
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sqlite.NewPoller(store, cfg.PollInterval, 0).Run(gctx)
	})
	g.Go(func() error {
		return site.Run(gctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(gctx); err != nil {
			return fmt.Errorf("serve site: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// sessionSecret returns configured, or a random per-process secret that
// invalidates sessions on restart.
func sessionSecret(configured string, logger *zap.Logger) (string, error) {
	if configured != "" {
		return configured, nil
	}
	generated, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	logger.Warn("SITE_SESSION_SECRET is not set, sessions will not survive a restart")
	return generated, nil
}
