// Package pagerender centralizes module page rendering.
package pagerender

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/webi18n"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

// Page describes a full-page response.
type Page struct {
	Title  string
	Status int
	Body   templ.Component
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}

// Localizer returns the request localizer. It sets the language cookie when
// the request switches language.
func Localizer(w http.ResponseWriter, r *http.Request) (webi18n.Localizer, string) {
	tag := webi18n.Resolve(w, r)
	return webi18n.Printer(tag), tag.String()
}

// WritePage renders page inside the site layout. The body is rendered into
// a buffer first so a render failure can still produce an error status.
func WritePage(w http.ResponseWriter, r *http.Request, deps module.Dependencies, page Page) error {
	if w == nil {
		return nil
	}
	status := page.Status
	if status <= 0 {
		status = http.StatusOK
	}
	body := page.Body
	if body == nil {
		body = emptyComponent{}
	}

	loc, lang := Localizer(w, r)
	data := templates.LayoutData{
		Title:  page.Title,
		Lang:   lang,
		Path:   r.URL.Path,
		Viewer: deps.Viewer(r),
		Loc:    loc,
	}
	data.Site, data.Contact = chrome(r.Context(), deps)
	if notice, ok := flash.ReadAndClear(w, r, deps.SchemePolicy); ok {
		data.Toast = &templates.Toast{Kind: string(notice.Kind), Message: webi18n.T(loc, notice.Key)}
	}

	var buf bytes.Buffer
	if err := templates.Layout(data).Render(templ.WithChildren(r.Context(), body), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// chrome loads the site settings and contact details shown on every page,
// falling back to defaults so an error page never fails on them.
func chrome(ctx context.Context, deps module.Dependencies) (pages.SiteSettings, pages.ContactSettings) {
	site := pages.DefaultSiteSettings()
	contact := pages.DefaultContactSettings()
	if deps.Pages == nil {
		return site, contact
	}
	if value, err := deps.Pages.SiteSettings.Get(ctx); err == nil {
		site = value
	} else if deps.Logger != nil {
		deps.Logger.Warn("load site settings for layout", zap.Error(err))
	}
	if value, err := deps.Pages.ContactSettings.Get(ctx); err == nil {
		contact = value
	}
	return site, contact
}
