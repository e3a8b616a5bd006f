// Package app composes the site providers over one store and runs their
// background work.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/domain/chat"
	"github.com/louisbranch/agencysite/internal/services/site/domain/files"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inbox"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// SiteConfig tunes the providers.
type SiteConfig struct {
	SeedDemo        bool
	AdminEmail      string
	AdminPassword   string
	RetentionMonths int
	PruneInterval   time.Duration
	// BcryptCost is lowered by tests.
	BcryptCost int
	Clock      func() time.Time
}

// Site holds every provider of the application.
type Site struct {
	Store     storage.Store
	Pages     *pages.Pages
	Catalog   *catalog.Catalog
	Accounts  *accounts.Service
	Chat      *chat.Service
	Inbox     *inbox.Service
	Files     *files.Service
	Inquiries *inquiries.Service

	logger        *zap.Logger
	pruneInterval time.Duration
}

// NewSite wires the providers over store.
func NewSite(store storage.Store, logger *zap.Logger, cfg SiteConfig) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	sitePages := pages.New(store, logger.Named("pages"))
	users := accounts.New(store, sitePages.PricingPlans, logger.Named("accounts"), accounts.Options{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		BcryptCost:    cfg.BcryptCost,
		Clock:         cfg.Clock,
	})
	return &Site{
		Store:    store,
		Pages:    sitePages,
		Catalog:  catalog.New(store, logger.Named("catalog"), catalog.Options{SeedDemo: cfg.SeedDemo, Clock: cfg.Clock}),
		Accounts: users,
		Chat:     chat.New(store, logger.Named("chat"), chat.Options{Clock: cfg.Clock, Directory: users}),
		Inbox: inbox.New(store, users, logger.Named("inbox"), inbox.Options{
			RetentionMonths: cfg.RetentionMonths,
			Clock:           cfg.Clock,
		}),
		Files:         files.New(store, logger.Named("files"), files.Options{Clock: cfg.Clock}),
		Inquiries:     inquiries.New(store, logger.Named("inquiries"), inquiries.Options{Clock: cfg.Clock, Minimum: sitePages}),
		logger:        logger,
		pruneInterval: cfg.PruneInterval,
	}
}

// Load loads every provider in dependency order. Pricing plans load before
// accounts so the seeded admin gets the lowest plan.
func (s *Site) Load(ctx context.Context) error {
	steps := []struct {
		name string
		load func(context.Context) error
	}{
		{name: "pages", load: s.Pages.Load},
		{name: "catalog", load: s.Catalog.Load},
		{name: "accounts", load: s.Accounts.Load},
		{name: "chat", load: s.Chat.Load},
		{name: "inbox", load: s.Inbox.Load},
		{name: "files", load: s.Files.Load},
		{name: "inquiries", load: s.Inquiries.Load},
	}
	for _, step := range steps {
		if err := step.load(ctx); err != nil {
			return fmt.Errorf("load %s: %w", step.name, err)
		}
	}
	s.logger.Info("site loaded")
	return nil
}

// Run keeps the page caches in sync and prunes old messages until ctx is
// done.
func (s *Site) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Pages.Sync(gctx)
	})
	g.Go(func() error {
		s.Inbox.RunRetention(gctx, s.pruneInterval)
		return nil
	})
	g.Go(func() error {
		return s.watchAdmin(gctx)
	})
	return g.Wait()
}

// watchAdmin reseeds the administrator when its record is deleted.
func (s *Site) watchAdmin(ctx context.Context) error {
	changes, err := s.Accounts.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch users: %w", err)
	}
	for change := range changes {
		if change.Op != storage.ChangeDelete {
			continue
		}
		created, err := s.Accounts.EnsureAdmin(ctx)
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("reseed administrator", zap.Error(err))
			continue
		}
		if created {
			s.logger.Info("administrator reseeded after delete", zap.String("key", change.Key))
		}
	}
	return nil
}
