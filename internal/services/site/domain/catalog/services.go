package catalog

import (
	"context"
	"strings"

	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
)

// Service is one offering on the services page.
type Service struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Description    string   `json:"description"`
	Features       []string `json:"features"`
	Icon           string   `json:"icon"`
	PriceFromCents int64    `json:"priceFromCents"`
}

func normalizeService(service Service) Service {
	service.Title = strings.TrimSpace(service.Title)
	service.Summary = strings.TrimSpace(service.Summary)
	service.Description = strings.TrimSpace(service.Description)
	service.Icon = strings.TrimSpace(service.Icon)
	service.Features = trimList(service.Features)
	return service
}

func validateService(service Service) error {
	if err := validate.First(
		validate.Slug("slug", service.Slug),
		validate.Required("title", service.Title),
		validate.MaxLen("title", service.Title, 120),
		validate.MaxLen("summary", service.Summary, 300),
	); err != nil {
		return err
	}
	if service.PriceFromCents < 0 {
		return validate.Invalid("priceFromCents", "error.negative", "price cannot be negative")
	}
	return nil
}

// CreateService adds a service. A blank slug is derived from the title.
func (c *Catalog) CreateService(ctx context.Context, service Service) (Service, error) {
	service = normalizeService(service)
	slug, err := resolveSlug(service.Slug, service.Title)
	if err != nil {
		return Service{}, err
	}
	service.Slug = slug
	if err := c.Services.Insert(ctx, service); err != nil {
		return Service{}, slugConflict(err)
	}
	return service, nil
}

// UpdateService replaces the editable fields of a service.
func (c *Catalog) UpdateService(ctx context.Context, slug string, input Service) (Service, error) {
	input = normalizeService(input)
	return c.Services.Update(ctx, slug, func(service *Service) error {
		*service = input
		service.Slug = slug
		return nil
	})
}

// ListServices returns services in insertion order.
func (c *Catalog) ListServices(ctx context.Context) ([]Service, error) {
	return c.Services.List(ctx)
}

// GetService returns one service.
func (c *Catalog) GetService(ctx context.Context, slug string) (Service, error) {
	return c.Services.Get(ctx, slug)
}

// ServiceSlugExists reports whether slug is taken.
func (c *Catalog) ServiceSlugExists(ctx context.Context, slug string) (bool, error) {
	return c.Services.Exists(ctx, slug)
}

// DeleteServices removes services and returns how many existed.
func (c *Catalog) DeleteServices(ctx context.Context, slugs ...string) (int, error) {
	return c.Services.Delete(ctx, slugs...)
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
