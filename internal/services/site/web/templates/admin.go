package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

var adminNav = []navLink{
	{href: routepath.AdminDashboard, key: "admin.nav.dashboard"},
	{href: routepath.AdminContent, key: "admin.nav.content"},
	{href: routepath.AdminApps, key: "admin.nav.apps"},
	{href: routepath.AdminServices, key: "admin.nav.services"},
	{href: routepath.AdminCases, key: "admin.nav.case_studies"},
	{href: routepath.AdminReviews, key: "admin.nav.reviews"},
	{href: routepath.AdminUsers, key: "admin.nav.users"},
	{href: routepath.AdminFiles, key: "admin.nav.files"},
	{href: routepath.AdminChat, key: "admin.nav.chat"},
	{href: routepath.AdminMessages, key: "admin.nav.messages"},
	{href: routepath.AdminInquiries, key: "admin.nav.inquiries"},
}

// AdminView frames an admin screen: a heading, optional top links and a
// stack of sections.
type AdminView struct {
	Title    string
	Path     string
	Links    []Action
	Sections []templ.Component
}

// Admin renders the console shell.
func Admin(view AdminView, loc Localizer) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.open("div", "class", "admin")
		h.open("nav", "class", "admin-nav")
		for _, link := range adminNav {
			navItem(h, loc, link, view.Path)
		}
		h.close("nav")
		h.open("div", "class", "admin-body")
		h.elem("h1", view.Title)
		if len(view.Links) > 0 {
			h.open("p", "class", "admin-links")
			for _, link := range view.Links {
				if link.Post {
					writeActionButton(h, link.Href, link.Label, link.Danger)
					continue
				}
				h.elem("a", link.Label, "href", link.Href, "class", "button")
			}
			h.close("p")
		}
		for _, section := range view.Sections {
			h.open("section")
			h.render(ctx, section)
			h.close("section")
		}
		h.close("div")
		h.close("div")
	})
}

// Stat is one dashboard counter.
type Stat struct {
	Label string
	Value int
	Href  string
}

// Stats renders dashboard counters.
func Stats(stats []Stat) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("div", "class", "stats-grid")
		for _, stat := range stats {
			h.open("a", "href", stat.Href, "class", "stat")
			h.elem("strong", strconv.Itoa(stat.Value))
			h.elem("span", stat.Label)
			h.close("a")
		}
		h.close("div")
	})
}

// Heading renders a section heading with an optional intro.
func Heading(title string, intro string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h2", title)
		if intro != "" {
			h.elem("p", intro, "class", "muted")
		}
	})
}

// FilterForm renders a GET filter box.
func FilterForm(action string, name string, value string, placeholder string, submit string, message string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("form", "method", "get", "action", action, "class", "filter")
		h.open("input", "type", "search", "name", name, "value", value, "placeholder", placeholder)
		h.elem("button", submit, "type", "submit")
		if message != "" {
			h.elem("p", message, "class", "field-error", "role", "alert")
		}
		h.close("form")
	})
}

// Detail renders label/value pairs.
func Detail(pairs ...string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("dl", "class", "detail-list")
		for i := 0; i+1 < len(pairs); i += 2 {
			h.elem("dt", pairs[i])
			h.open("dd")
			h.paragraphs(pairs[i+1])
			h.close("dd")
		}
		h.close("dl")
	})
}
