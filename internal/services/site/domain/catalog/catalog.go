// Package catalog manages the agency's apps, services, case studies and
// customer reviews.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/platform/id"
	"github.com/louisbranch/agencysite/internal/services/site/content"
	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// Collection names.
const (
	AppsCollection        = "apps"
	ServicesCollection    = "services"
	CaseStudiesCollection = "caseStudies"
	ReviewsCollection     = "reviews"
)

// Options configures a Catalog.
type Options struct {
	// SeedDemo inserts demo records the first time each collection is loaded.
	SeedDemo bool
	Clock    func() time.Time
	NewID    func() (string, error)
}

// Catalog holds the catalog collections.
type Catalog struct {
	Apps        *content.Collection[App]
	Services    *content.Collection[Service]
	CaseStudies *content.Collection[CaseStudy]
	Reviews     *content.Collection[Review]

	clock func() time.Time
	newID func() (string, error)
}

// New builds the catalog on store.
func New(store storage.Store, logger *zap.Logger, opts Options) *Catalog {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = id.NewID
	}
	c := &Catalog{clock: opts.Clock, newID: opts.NewID}

	appsCfg := content.Config[App]{Name: AppsCollection, Key: func(a App) string { return a.Slug }, Validate: validateApp}
	servicesCfg := content.Config[Service]{Name: ServicesCollection, Key: func(s Service) string { return s.Slug }, Validate: validateService}
	caseCfg := content.Config[CaseStudy]{Name: CaseStudiesCollection, Key: func(cs CaseStudy) string { return cs.Slug }, Validate: validateCaseStudy}
	reviewsCfg := content.Config[Review]{Name: ReviewsCollection, Key: func(r Review) string { return r.ID }, Validate: validateReview}
	if opts.SeedDemo {
		appsCfg.Seed = func() []App { return demoApps(c.now()) }
		servicesCfg.Seed = demoServices
		caseCfg.Seed = demoCaseStudies
		reviewsCfg.Seed = func() []Review { return demoReviews(c.now()) }
	}

	c.Apps = content.NewCollection(store, appsCfg, logger)
	c.Services = content.NewCollection(store, servicesCfg, logger)
	c.CaseStudies = content.NewCollection(store, caseCfg, logger)
	c.Reviews = content.NewCollection(store, reviewsCfg, logger)
	return c
}

// Load loads every collection.
func (c *Catalog) Load(ctx context.Context) error {
	if err := c.Apps.Load(ctx); err != nil {
		return err
	}
	if err := c.Services.Load(ctx); err != nil {
		return err
	}
	if err := c.CaseStudies.Load(ctx); err != nil {
		return err
	}
	return c.Reviews.Load(ctx)
}

func (c *Catalog) now() time.Time {
	return c.clock().UTC()
}

// slugConflict renames a primary-key conflict to the slug form field.
func slugConflict(err error) error {
	if apperrors.IsKind(err, apperrors.KindConflict) && apperrors.FieldOf(err) == content.KeyField {
		return apperrors.Field(apperrors.KindConflict, "slug", "error.conflict.slug", "slug already in use")
	}
	return err
}

// resolveSlug fills a blank slug from the title and validates it.
func resolveSlug(slug string, title string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug = validate.Slugify(title)
	}
	if err := validate.Slug("slug", slug); err != nil {
		return "", err
	}
	return slug, nil
}

func newReviewID(newID func() (string, error)) (string, error) {
	reviewID, err := newID()
	if err != nil {
		return "", fmt.Errorf("generate review id: %w", err)
	}
	return reviewID, nil
}
