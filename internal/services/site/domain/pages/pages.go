// Package pages owns the singleton content records behind the public pages.
package pages

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/content"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// Editable is the untyped view of a document the admin content editor uses.
type Editable interface {
	Key() string
	Raw(ctx context.Context) ([]byte, error)
	PatchRaw(ctx context.Context, partial []byte) error
	Load(ctx context.Context) error
	Sync(ctx context.Context) error
}

// Entry describes one editable page record.
type Entry struct {
	// Slug is the admin URL segment.
	Slug string
	// TitleKey is the localization key of the editor heading.
	TitleKey string
	Doc      Editable
}

// Pages holds every singleton content document.
type Pages struct {
	Home            *content.Document[HomePage]
	About           *content.Document[AboutPage]
	Apps            *content.Document[AppsPage]
	Services        *content.Document[ServicesPage]
	CaseStudies     *content.Document[CaseStudiesPage]
	Application     *content.Document[ApplicationPage]
	Investment      *content.Document[InvestmentPage]
	Legal           *content.Document[LegalPage]
	ContactSettings *content.Document[ContactSettings]
	PricingPlans    *content.Document[PricingPlans]
	SiteSettings    *content.Document[SiteSettings]

	entries []Entry
}

// New builds the page documents on store.
func New(store storage.Store, logger *zap.Logger) *Pages {
	p := &Pages{
		Home:            content.NewDocument(store, KeyHome, DefaultHome, logger),
		About:           content.NewDocument(store, KeyAbout, DefaultAbout, logger),
		Apps:            content.NewDocument(store, KeyApps, DefaultApps, logger),
		Services:        content.NewDocument(store, KeyServices, DefaultServices, logger),
		CaseStudies:     content.NewDocument(store, KeyCaseStudies, DefaultCaseStudies, logger),
		Application:     content.NewDocument(store, KeyApplication, DefaultApplication, logger),
		Investment:      content.NewDocument(store, KeyInvestment, DefaultInvestment, logger, content.WithValidator(validateInvestment)),
		Legal:           content.NewDocument(store, KeyLegal, DefaultLegal, logger),
		ContactSettings: content.NewDocument(store, KeyContactSettings, DefaultContactSettings, logger, content.WithValidator(validateContact)),
		PricingPlans:    content.NewDocument(store, KeyPricingPlans, DefaultPricingPlans, logger, content.WithValidator(validatePlans)),
		SiteSettings:    content.NewDocument(store, KeySiteSettings, DefaultSiteSettings, logger, content.WithValidator(validateSiteSettings)),
	}
	p.entries = []Entry{
		{Slug: "home", TitleKey: "admin.content.home", Doc: editable(p.Home)},
		{Slug: "about", TitleKey: "admin.content.about", Doc: editable(p.About)},
		{Slug: "apps", TitleKey: "admin.content.apps", Doc: editable(p.Apps)},
		{Slug: "services", TitleKey: "admin.content.services", Doc: editable(p.Services)},
		{Slug: "case-studies", TitleKey: "admin.content.case_studies", Doc: editable(p.CaseStudies)},
		{Slug: "application", TitleKey: "admin.content.application", Doc: editable(p.Application)},
		{Slug: "investment", TitleKey: "admin.content.investment", Doc: editable(p.Investment)},
		{Slug: "legal", TitleKey: "admin.content.legal", Doc: editable(p.Legal)},
		{Slug: "contact", TitleKey: "admin.content.contact", Doc: editable(p.ContactSettings)},
		{Slug: "pricing", TitleKey: "admin.content.pricing", Doc: editable(p.PricingPlans)},
		{Slug: "site", TitleKey: "admin.content.site", Doc: editable(p.SiteSettings)},
	}
	return p
}

// Entries lists the editable documents in menu order.
func (p *Pages) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Entry finds an editable document by admin slug.
func (p *Pages) Entry(slug string) (Entry, bool) {
	for _, entry := range p.entries {
		if entry.Slug == slug {
			return entry, true
		}
	}
	return Entry{}, false
}

// Load loads every document, seeding defaults where missing.
func (p *Pages) Load(ctx context.Context) error {
	for _, entry := range p.entries {
		if err := entry.Doc.Load(ctx); err != nil {
			return fmt.Errorf("load %s: %w", entry.Doc.Key(), err)
		}
	}
	return nil
}

// Sync keeps every document cache fresh until ctx is done.
func (p *Pages) Sync(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(p.entries))
	for _, entry := range p.entries {
		wg.Add(1)
		go func(doc Editable) {
			defer wg.Done()
			if err := doc.Sync(ctx); err != nil {
				errs <- err
			}
		}(entry.Doc)
	}
	wg.Wait()
	close(errs)
	return <-errs
}

type docAdapter[T any] struct {
	*content.Document[T]
}

func editable[T any](doc *content.Document[T]) Editable {
	return docAdapter[T]{Document: doc}
}

func (a docAdapter[T]) Load(ctx context.Context) error {
	_, err := a.Document.Load(ctx)
	return err
}

func (a docAdapter[T]) PatchRaw(ctx context.Context, partial []byte) error {
	_, err := a.Document.Patch(ctx, partial)
	return err
}

func validatePlans(plans PricingPlans) error {
	if len(plans.Plans) == 0 {
		return apperrors.Field(apperrors.KindInvalidInput, "plans", "error.plans_required", "at least one plan is required")
	}
	seen := map[string]bool{}
	for _, plan := range plans.Plans {
		id := strings.TrimSpace(plan.ID)
		if id == "" {
			return apperrors.Field(apperrors.KindInvalidInput, "plans", "error.plan_id_required", "every plan needs an id")
		}
		if seen[id] {
			return apperrors.Field(apperrors.KindInvalidInput, "plans", "error.plan_id_duplicate", fmt.Sprintf("duplicate plan id %q", id))
		}
		seen[id] = true
		if plan.MonthlyPriceCents < 0 {
			return apperrors.Field(apperrors.KindInvalidInput, "plans", "error.plan_price_negative", fmt.Sprintf("plan %q has a negative price", id))
		}
	}
	return nil
}

func validateSiteSettings(settings SiteSettings) error {
	if strings.TrimSpace(settings.SiteName) == "" {
		return apperrors.Field(apperrors.KindInvalidInput, "siteName", "error.required", "site name is required")
	}
	return nil
}

func validateContact(settings ContactSettings) error {
	if email := strings.TrimSpace(settings.Email); email != "" && !strings.Contains(email, "@") {
		return apperrors.Field(apperrors.KindInvalidInput, "email", "error.email_invalid", "contact email is invalid")
	}
	return nil
}

func validateInvestment(page InvestmentPage) error {
	if page.MinimumInvestmentCents < 0 {
		return apperrors.Field(apperrors.KindInvalidInput, "minimumInvestmentCents", "error.negative", "minimum investment cannot be negative")
	}
	return nil
}

// MinimumInvestmentCents returns the investment floor shown on the
// investment page.
func (p *Pages) MinimumInvestmentCents(ctx context.Context) (int64, error) {
	page, err := p.Investment.Get(ctx)
	if err != nil {
		return 0, err
	}
	return page.MinimumInvestmentCents, nil
}
