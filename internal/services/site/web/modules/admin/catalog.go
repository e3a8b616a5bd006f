package admin

import (
	"context"
	"strconv"
	"strings"

	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

func slugField(loc templates.Localizer, slug string, creating bool) []templates.Field {
	if !creating {
		return nil
	}
	return []templates.Field{{Name: "slug", Label: templates.T(loc, "field.slug"), Kind: templates.FieldText, Value: slug, Hint: templates.T(loc, "field.slug_hint")}}
}

func yesNo(loc templates.Localizer, v bool) string {
	if v {
		return templates.T(loc, "admin.yes")
	}
	return templates.T(loc, "admin.no")
}

func appResource() resource[catalog.App] {
	return resource[catalog.App]{
		titleKey:    "admin.nav.apps",
		newKey:      "admin.apps.new",
		flashPrefix: "flash.app",
		listPath:    routepath.AdminApps,
		newPath:     routepath.AdminAppNew,
		itemPath:    routepath.AdminAppFor,
		list: func(ctx context.Context, c *catalog.Catalog) ([]catalog.App, error) {
			return c.ListApps(ctx)
		},
		get: func(ctx context.Context, c *catalog.Catalog, slug string) (catalog.App, error) {
			return c.GetApp(ctx, slug)
		},
		create: func(ctx context.Context, c *catalog.Catalog, app catalog.App) (catalog.App, error) {
			return c.CreateApp(ctx, app)
		},
		update: func(ctx context.Context, c *catalog.Catalog, slug string, app catalog.App) (catalog.App, error) {
			return c.UpdateApp(ctx, slug, app)
		},
		remove: func(ctx context.Context, c *catalog.Catalog, slugs ...string) (int, error) {
			return c.DeleteApps(ctx, slugs...)
		},
		slug:    func(app catalog.App) string { return app.Slug },
		columns: []string{"field.name", "field.category", "field.featured"},
		cells: func(loc templates.Localizer, app catalog.App) []string {
			return []string{app.Name, app.Category, yesNo(loc, app.Featured)}
		},
		fields: func(loc templates.Localizer, app catalog.App, creating bool) []templates.Field {
			return append(slugField(loc, app.Slug, creating),
				templates.Field{Name: "name", Label: templates.T(loc, "field.name"), Kind: templates.FieldText, Value: app.Name, Required: true},
				templates.Field{Name: "tagline", Label: templates.T(loc, "field.tagline"), Kind: templates.FieldText, Value: app.Tagline},
				templates.Field{Name: "description", Label: templates.T(loc, "field.description"), Kind: templates.FieldTextarea, Value: app.Description, Rows: 5},
				templates.Field{Name: "category", Label: templates.T(loc, "field.category"), Kind: templates.FieldText, Value: app.Category},
				templates.Field{Name: "url", Label: templates.T(loc, "field.url"), Kind: templates.FieldURL, Value: app.URL},
				templates.Field{Name: "icon", Label: templates.T(loc, "field.icon"), Kind: templates.FieldText, Value: app.Icon},
				templates.Field{Name: "featured", Label: templates.T(loc, "field.featured"), Kind: templates.FieldCheckbox, Checked: app.Featured},
			)
		},
		parse: func(values form.Values) (catalog.App, error) {
			return catalog.App{
				Slug:        values.String("slug"),
				Name:        values.String("name"),
				Tagline:     values.String("tagline"),
				Description: values.String("description"),
				Category:    values.String("category"),
				URL:         values.String("url"),
				Icon:        values.String("icon"),
				Featured:    values.Bool("featured"),
			}, nil
		},
	}
}

func serviceResource() resource[catalog.Service] {
	return resource[catalog.Service]{
		titleKey:    "admin.nav.services",
		newKey:      "admin.services.new",
		flashPrefix: "flash.service",
		listPath:    routepath.AdminServices,
		newPath:     routepath.AdminServiceNew,
		itemPath:    routepath.AdminServiceFor,
		list: func(ctx context.Context, c *catalog.Catalog) ([]catalog.Service, error) {
			return c.ListServices(ctx)
		},
		get: func(ctx context.Context, c *catalog.Catalog, slug string) (catalog.Service, error) {
			return c.GetService(ctx, slug)
		},
		create: func(ctx context.Context, c *catalog.Catalog, service catalog.Service) (catalog.Service, error) {
			return c.CreateService(ctx, service)
		},
		update: func(ctx context.Context, c *catalog.Catalog, slug string, service catalog.Service) (catalog.Service, error) {
			return c.UpdateService(ctx, slug, service)
		},
		remove: func(ctx context.Context, c *catalog.Catalog, slugs ...string) (int, error) {
			return c.DeleteServices(ctx, slugs...)
		},
		slug:    func(service catalog.Service) string { return service.Slug },
		columns: []string{"field.title", "field.price_from"},
		cells: func(loc templates.Localizer, service catalog.Service) []string {
			return []string{service.Title, templates.Money(loc, service.PriceFromCents)}
		},
		fields: func(loc templates.Localizer, service catalog.Service, creating bool) []templates.Field {
			price := ""
			if service.PriceFromCents > 0 {
				price = decimal(service.PriceFromCents)
			}
			return append(slugField(loc, service.Slug, creating),
				templates.Field{Name: "title", Label: templates.T(loc, "field.title"), Kind: templates.FieldText, Value: service.Title, Required: true},
				templates.Field{Name: "summary", Label: templates.T(loc, "field.summary"), Kind: templates.FieldTextarea, Value: service.Summary, Rows: 2},
				templates.Field{Name: "description", Label: templates.T(loc, "field.description"), Kind: templates.FieldTextarea, Value: service.Description, Rows: 5},
				templates.Field{Name: "features", Label: templates.T(loc, "field.features"), Kind: templates.FieldTextarea, Value: strings.Join(service.Features, "\n"), Rows: 5, Hint: templates.T(loc, "field.one_per_line")},
				templates.Field{Name: "icon", Label: templates.T(loc, "field.icon"), Kind: templates.FieldText, Value: service.Icon},
				templates.Field{Name: "priceFrom", Label: templates.T(loc, "field.price_from"), Kind: templates.FieldText, Value: price},
			)
		},
		parse: func(values form.Values) (catalog.Service, error) {
			service := catalog.Service{
				Slug:        values.String("slug"),
				Title:       values.String("title"),
				Summary:     values.String("summary"),
				Description: values.String("description"),
				Features:    values.Lines("features"),
				Icon:        values.String("icon"),
			}
			cents, err := values.Cents("priceFrom")
			service.PriceFromCents = cents
			return service, err
		},
	}
}

func caseStudyResource() resource[catalog.CaseStudy] {
	return resource[catalog.CaseStudy]{
		titleKey:    "admin.nav.case_studies",
		newKey:      "admin.case_studies.new",
		flashPrefix: "flash.case_study",
		listPath:    routepath.AdminCases,
		newPath:     routepath.AdminCaseNew,
		itemPath:    routepath.AdminCaseFor,
		list: func(ctx context.Context, c *catalog.Catalog) ([]catalog.CaseStudy, error) {
			return c.ListCaseStudies(ctx)
		},
		get: func(ctx context.Context, c *catalog.Catalog, slug string) (catalog.CaseStudy, error) {
			return c.GetCaseStudy(ctx, slug)
		},
		create: func(ctx context.Context, c *catalog.Catalog, cs catalog.CaseStudy) (catalog.CaseStudy, error) {
			return c.CreateCaseStudy(ctx, cs)
		},
		update: func(ctx context.Context, c *catalog.Catalog, slug string, cs catalog.CaseStudy) (catalog.CaseStudy, error) {
			return c.UpdateCaseStudy(ctx, slug, cs)
		},
		remove: func(ctx context.Context, c *catalog.Catalog, slugs ...string) (int, error) {
			return c.DeleteCaseStudies(ctx, slugs...)
		},
		slug:    func(cs catalog.CaseStudy) string { return cs.Slug },
		columns: []string{"field.title", "field.client", "field.industry"},
		cells: func(_ templates.Localizer, cs catalog.CaseStudy) []string {
			return []string{cs.Title, cs.Client, cs.Industry}
		},
		fields: func(loc templates.Localizer, cs catalog.CaseStudy, creating bool) []templates.Field {
			return append(slugField(loc, cs.Slug, creating),
				templates.Field{Name: "title", Label: templates.T(loc, "field.title"), Kind: templates.FieldText, Value: cs.Title, Required: true},
				templates.Field{Name: "client", Label: templates.T(loc, "field.client"), Kind: templates.FieldText, Value: cs.Client},
				templates.Field{Name: "industry", Label: templates.T(loc, "field.industry"), Kind: templates.FieldText, Value: cs.Industry},
				templates.Field{Name: "summary", Label: templates.T(loc, "field.summary"), Kind: templates.FieldTextarea, Value: cs.Summary, Rows: 2},
				templates.Field{Name: "challenge", Label: templates.T(loc, "case_studies.challenge"), Kind: templates.FieldTextarea, Value: cs.Challenge, Rows: 4},
				templates.Field{Name: "solution", Label: templates.T(loc, "case_studies.solution"), Kind: templates.FieldTextarea, Value: cs.Solution, Rows: 4},
				templates.Field{Name: "results", Label: templates.T(loc, "case_studies.results"), Kind: templates.FieldTextarea, Value: strings.Join(cs.Results, "\n"), Rows: 4, Hint: templates.T(loc, "field.one_per_line")},
				templates.Field{Name: "image", Label: templates.T(loc, "field.image"), Kind: templates.FieldText, Value: cs.Image},
			)
		},
		parse: func(values form.Values) (catalog.CaseStudy, error) {
			return catalog.CaseStudy{
				Slug:      values.String("slug"),
				Title:     values.String("title"),
				Client:    values.String("client"),
				Industry:  values.String("industry"),
				Summary:   values.String("summary"),
				Challenge: values.String("challenge"),
				Solution:  values.String("solution"),
				Results:   values.Lines("results"),
				Image:     values.String("image"),
			}, nil
		},
	}
}

// decimal formats cents as a plain amount for editing.
func decimal(cents int64) string {
	return strconv.FormatInt(cents/100, 10) + "." + leftPad(strconv.FormatInt(cents%100, 10))
}

func leftPad(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
