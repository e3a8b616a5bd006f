package catalog

import (
	"context"
	"strings"

	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
)

// CaseStudy is one client project write-up.
type CaseStudy struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Client    string   `json:"client"`
	Industry  string   `json:"industry"`
	Summary   string   `json:"summary"`
	Challenge string   `json:"challenge"`
	Solution  string   `json:"solution"`
	Results   []string `json:"results"`
	Image     string   `json:"image"`
}

func normalizeCaseStudy(cs CaseStudy) CaseStudy {
	cs.Title = strings.TrimSpace(cs.Title)
	cs.Client = strings.TrimSpace(cs.Client)
	cs.Industry = strings.TrimSpace(cs.Industry)
	cs.Summary = strings.TrimSpace(cs.Summary)
	cs.Challenge = strings.TrimSpace(cs.Challenge)
	cs.Solution = strings.TrimSpace(cs.Solution)
	cs.Image = strings.TrimSpace(cs.Image)
	cs.Results = trimList(cs.Results)
	return cs
}

func validateCaseStudy(cs CaseStudy) error {
	return validate.First(
		validate.Slug("slug", cs.Slug),
		validate.Required("title", cs.Title),
		validate.Required("client", cs.Client),
		validate.MaxLen("title", cs.Title, 120),
		validate.URL("image", cs.Image),
	)
}

// CreateCaseStudy adds a case study. A blank slug is derived from the title.
func (c *Catalog) CreateCaseStudy(ctx context.Context, cs CaseStudy) (CaseStudy, error) {
	cs = normalizeCaseStudy(cs)
	slug, err := resolveSlug(cs.Slug, cs.Title)
	if err != nil {
		return CaseStudy{}, err
	}
	cs.Slug = slug
	if err := c.CaseStudies.Insert(ctx, cs); err != nil {
		return CaseStudy{}, slugConflict(err)
	}
	return cs, nil
}

// UpdateCaseStudy replaces the editable fields of a case study.
func (c *Catalog) UpdateCaseStudy(ctx context.Context, slug string, input CaseStudy) (CaseStudy, error) {
	input = normalizeCaseStudy(input)
	return c.CaseStudies.Update(ctx, slug, func(cs *CaseStudy) error {
		*cs = input
		cs.Slug = slug
		return nil
	})
}

// ListCaseStudies returns case studies in insertion order.
func (c *Catalog) ListCaseStudies(ctx context.Context) ([]CaseStudy, error) {
	return c.CaseStudies.List(ctx)
}

// GetCaseStudy returns one case study.
func (c *Catalog) GetCaseStudy(ctx context.Context, slug string) (CaseStudy, error) {
	return c.CaseStudies.Get(ctx, slug)
}

// CaseStudySlugExists reports whether slug is taken.
func (c *Catalog) CaseStudySlugExists(ctx context.Context, slug string) (bool, error) {
	return c.CaseStudies.Exists(ctx, slug)
}

// DeleteCaseStudies removes case studies and returns how many existed.
func (c *Catalog) DeleteCaseStudies(ctx context.Context, slugs ...string) (int, error) {
	return c.CaseStudies.Delete(ctx, slugs...)
}
