package admin

import (
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/weberror"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

const timeLayout = "2006-01-02 15:04"

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps)
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.NotFound(w, r, h.deps)
}

func (h handlers) page(w http.ResponseWriter, r *http.Request, status int, view templates.AdminView) {
	loc, _ := pagerender.Localizer(w, r)
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: view.Title, Status: status, Body: templates.Admin(view, loc)}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) done(w http.ResponseWriter, r *http.Request, flashKey string, next string) {
	flash.Write(w, r, flash.Success(flashKey), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, next)
}

type counter struct {
	key   string
	href  string
	count func(context.Context) (int, error)
}

func (h handlers) counters() []counter {
	d := h.deps
	return []counter{
		{key: "admin.stats.users", href: routepath.AdminUsers, count: d.Accounts.CountUsers},
		{key: "admin.stats.apps", href: routepath.AdminApps, count: d.Catalog.Apps.Count},
		{key: "admin.stats.services", href: routepath.AdminServices, count: d.Catalog.Services.Count},
		{key: "admin.stats.case_studies", href: routepath.AdminCases, count: d.Catalog.CaseStudies.Count},
		{key: "admin.stats.pending_reviews", href: routepath.AdminReviews, count: h.pendingReviews},
		{key: "admin.stats.files", href: routepath.AdminFiles, count: d.Files.Count},
		{key: "admin.stats.unread_chat", href: routepath.AdminChat, count: d.Chat.TotalUnreadForSupport},
		{key: "admin.stats.open_inquiries", href: routepath.AdminInquiries, count: d.Inquiries.CountOpen},
	}
}

func (h handlers) pendingReviews(ctx context.Context) (int, error) {
	reviews, err := h.deps.Catalog.ListReviews(ctx, false)
	if err != nil {
		return 0, err
	}
	pending := 0
	for _, review := range reviews {
		if !review.Approved {
			pending++
		}
	}
	return pending, nil
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	loc, _ := pagerender.Localizer(w, r)
	var stats []templates.Stat
	for _, c := range h.counters() {
		n, err := c.count(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		stats = append(stats, templates.Stat{Label: templates.T(loc, c.key), Value: n, Href: c.href})
	}
	h.page(w, r, http.StatusOK, templates.AdminView{
		Title:    templates.T(loc, "admin.nav.dashboard"),
		Path:     routepath.AdminDashboard,
		Sections: []templ.Component{templates.Stats(stats)},
	})
}
