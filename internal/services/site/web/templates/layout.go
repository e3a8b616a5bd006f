package templates

import (
	"context"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// Toast is a rendered flash notice.
type Toast struct {
	Kind    string
	Message string
}

// LayoutData is the page chrome around a page body.
type LayoutData struct {
	Title   string
	Lang    string
	Path    string
	Site    pages.SiteSettings
	Contact pages.ContactSettings
	Viewer  module.Viewer
	Toast   *Toast
	Loc     Localizer
}

type navLink struct {
	href  string
	key   string
	badge int
}

var publicNav = []navLink{
	{href: routepath.Root, key: "nav.home"},
	{href: routepath.About, key: "nav.about"},
	{href: routepath.Services, key: "nav.services"},
	{href: routepath.CaseStudies, key: "nav.case_studies"},
	{href: routepath.Apps, key: "nav.apps"},
	{href: routepath.Reviews, key: "nav.reviews"},
	{href: routepath.Pricing, key: "nav.pricing"},
	{href: routepath.Contact, key: "nav.contact"},
}

// Layout renders the document shell with the children in context as body.
func Layout(data LayoutData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		loc := data.Loc
		siteName := data.Site.SiteName
		title := siteName
		if data.Title != "" {
			title = data.Title + " | " + siteName
		}

		h.raw("<!DOCTYPE html>")
		h.open("html", "lang", data.Lang)
		h.open("head")
		h.raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.elem("title", title)
		h.open("link", "rel", "stylesheet", "href", "/static/site.css")
		h.close("head")
		h.open("body")

		h.open("header", "class", "site-header")
		h.open("a", "href", routepath.Root, "class", "brand")
		if data.Site.LogoURL != "" {
			h.open("img", "src", data.Site.LogoURL, "alt", siteName)
		}
		h.text(siteName)
		h.close("a")
		if data.Site.Tagline != "" {
			h.elem("span", data.Site.Tagline, "class", "tagline")
		}
		h.open("nav", "class", "site-nav")
		for _, link := range publicNav {
			navItem(h, loc, link, data.Path)
		}
		h.close("nav")
		viewerNav(h, data)
		h.close("header")

		if data.Site.MaintenanceMode {
			h.elem("div", T(loc, "site.maintenance"), "class", "banner banner-warning", "role", "status")
		}
		if data.Toast != nil && data.Toast.Message != "" {
			h.elem("div", data.Toast.Message, "class", "toast toast-"+data.Toast.Kind, "role", "status")
		}

		h.open("main", "id", "main")
		h.render(ctx, templ.GetChildren(ctx))
		h.close("main")

		footer(h, data)
		h.close("body")
		h.close("html")
	})
}

func navItem(h *htmlWriter, loc Localizer, link navLink, current string) {
	attrs := []string{"href", link.href}
	if link.href == current {
		attrs = append(attrs, "aria-current", "page")
	}
	h.open("a", attrs...)
	h.text(T(loc, link.key))
	if link.badge > 0 {
		h.elem("span", strconv.Itoa(link.badge), "class", "badge")
	}
	h.close("a")
}

func viewerNav(h *htmlWriter, data LayoutData) {
	loc := data.Loc
	h.open("nav", "class", "account-nav")
	if !data.Viewer.SignedIn() {
		navItem(h, loc, navLink{href: routepath.Login, key: "nav.login"}, data.Path)
		navItem(h, loc, navLink{href: routepath.Signup, key: "nav.signup"}, data.Path)
		h.close("nav")
		return
	}
	if data.Viewer.AvatarURL != "" {
		h.open("img", "src", data.Viewer.AvatarURL, "alt", "", "class", "avatar")
	}
	h.elem("span", data.Viewer.Name, "class", "viewer-name")
	navItem(h, loc, navLink{href: routepath.AppProfile, key: "nav.profile"}, data.Path)
	navItem(h, loc, navLink{href: routepath.AppMessages, key: "nav.messages", badge: data.Viewer.UnreadMessages}, data.Path)
	navItem(h, loc, navLink{href: routepath.AppChat, key: "nav.chat", badge: data.Viewer.UnreadChat}, data.Path)
	if data.Viewer.IsAdmin {
		navItem(h, loc, navLink{href: routepath.AdminDashboard, key: "nav.admin"}, data.Path)
	}
	h.open("form", "method", "post", "action", routepath.Logout, "class", "inline")
	h.elem("button", T(loc, "nav.logout"), "type", "submit")
	h.close("form")
	h.close("nav")
}

func footer(h *htmlWriter, data LayoutData) {
	loc := data.Loc
	h.open("footer", "class", "site-footer")
	if data.Site.FooterText != "" {
		h.elem("p", data.Site.FooterText)
	}
	contact := data.Contact
	if contact.Email != "" {
		h.open("p")
		h.elem("a", contact.Email, "href", "mailto:"+contact.Email)
		if contact.Phone != "" {
			h.text(" · " + contact.Phone)
		}
		h.close("p")
	}
	if len(contact.Socials) > 0 {
		h.open("ul", "class", "socials")
		for _, social := range contact.Socials {
			h.open("li")
			h.elem("a", social.Name, "href", social.URL, "rel", "noopener")
			h.close("li")
		}
		h.close("ul")
	}
	h.open("nav", "class", "legal")
	h.elem("a", T(loc, "nav.privacy"), "href", routepath.PrivacyPolicy)
	h.elem("a", T(loc, "nav.terms"), "href", routepath.Terms)
	h.elem("a", T(loc, "nav.application"), "href", routepath.Application)
	h.elem("a", T(loc, "nav.investment"), "href", routepath.Investment)
	h.close("nav")
	h.open("nav", "class", "languages")
	h.elem("a", "English", "href", "?lang=en-US", "hreflang", "en-US")
	h.elem("a", "Português", "href", "?lang=pt-BR", "hreflang", "pt-BR")
	h.close("nav")
	h.close("footer")
}

// ErrorPageTitle returns the title for an error status.
func ErrorPageTitle(status int, loc Localizer) string {
	if status == http.StatusNotFound {
		return T(loc, "error.page.not_found_title")
	}
	return T(loc, "error.page.server_title")
}

// ErrorState renders the body of the shared error page.
func ErrorState(status int, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("section", "class", "error-state")
		h.elem("h1", ErrorPageTitle(status, loc))
		if status == http.StatusNotFound {
			h.elem("p", T(loc, "error.page.not_found_body"))
		} else {
			h.elem("p", T(loc, "error.page.server_body"))
		}
		h.elem("a", T(loc, "error.page.back_home"), "href", routepath.Root, "class", "button")
		h.close("section")
	})
}
