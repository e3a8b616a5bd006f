package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
)

// App is one product in the public apps directory.
type App struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Tagline     string    `json:"tagline"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	URL         string    `json:"url"`
	Icon        string    `json:"icon"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func normalizeApp(app App) App {
	app.Name = strings.TrimSpace(app.Name)
	app.Tagline = strings.TrimSpace(app.Tagline)
	app.Description = strings.TrimSpace(app.Description)
	app.Category = strings.TrimSpace(app.Category)
	app.URL = strings.TrimSpace(app.URL)
	app.Icon = strings.TrimSpace(app.Icon)
	return app
}

func validateApp(app App) error {
	return validate.First(
		validate.Slug("slug", app.Slug),
		validate.Required("name", app.Name),
		validate.MaxLen("name", app.Name, 120),
		validate.MaxLen("tagline", app.Tagline, 200),
		validate.URL("url", app.URL),
	)
}

// CreateApp adds an app. A blank slug is derived from the name.
func (c *Catalog) CreateApp(ctx context.Context, app App) (App, error) {
	app = normalizeApp(app)
	slug, err := resolveSlug(app.Slug, app.Name)
	if err != nil {
		return App{}, err
	}
	app.Slug = slug
	now := c.now()
	app.CreatedAt, app.UpdatedAt = now, now
	if err := c.Apps.Insert(ctx, app); err != nil {
		return App{}, slugConflict(err)
	}
	return app, nil
}

// UpdateApp replaces the editable fields of an app.
func (c *Catalog) UpdateApp(ctx context.Context, slug string, input App) (App, error) {
	input = normalizeApp(input)
	return c.Apps.Update(ctx, slug, func(app *App) error {
		createdAt := app.CreatedAt
		*app = input
		app.Slug = slug
		app.CreatedAt = createdAt
		app.UpdatedAt = c.now()
		return nil
	})
}

// ListApps returns apps, featured first.
func (c *Catalog) ListApps(ctx context.Context) ([]App, error) {
	apps, err := c.Apps.List(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]App, 0, len(apps))
	rest := make([]App, 0, len(apps))
	for _, app := range apps {
		if app.Featured {
			featured = append(featured, app)
		} else {
			rest = append(rest, app)
		}
	}
	return append(featured, rest...), nil
}

// GetApp returns one app.
func (c *Catalog) GetApp(ctx context.Context, slug string) (App, error) {
	return c.Apps.Get(ctx, slug)
}

// AppSlugExists reports whether slug is taken.
func (c *Catalog) AppSlugExists(ctx context.Context, slug string) (bool, error) {
	return c.Apps.Exists(ctx, slug)
}

// DeleteApps removes apps and returns how many existed.
func (c *Catalog) DeleteApps(ctx context.Context, slugs ...string) (int, error) {
	return c.Apps.Delete(ctx, slugs...)
}
