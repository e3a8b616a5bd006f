package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// HomeView is the landing page data.
type HomeView struct {
	Page     pages.HomePage
	Services []catalog.Service
	Apps     []catalog.App
	Reviews  []catalog.Review
}

// Home renders the landing page.
func Home(view HomeView, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		page := view.Page
		h.open("section", "class", "hero")
		h.elem("h1", page.HeroTitle)
		h.elem("p", page.HeroSubtitle, "class", "lead")
		if page.CTAText != "" {
			h.elem("a", page.CTAText, "href", routepath.SafeNext(page.CTALink, routepath.Contact), "class", "button button-primary")
		}
		h.close("section")

		if len(page.Highlights) > 0 {
			h.open("section", "class", "highlights")
			for _, highlight := range page.Highlights {
				h.open("article")
				h.elem("h3", highlight.Title)
				h.elem("p", highlight.Description)
				h.close("article")
			}
			h.close("section")
		}
		if len(page.Stats) > 0 {
			h.open("dl", "class", "stats")
			for _, stat := range page.Stats {
				h.elem("dt", stat.Value)
				h.elem("dd", stat.Label)
			}
			h.close("dl")
		}

		if len(view.Services) > 0 {
			h.open("section")
			h.elem("h2", T(loc, "home.services"))
			writeServiceCards(h, loc, view.Services)
			h.close("section")
		}
		if len(view.Apps) > 0 {
			h.open("section")
			h.elem("h2", T(loc, "home.featured_apps"))
			writeAppCards(h, view.Apps)
			h.close("section")
		}
		if len(view.Reviews) > 0 {
			h.open("section")
			h.elem("h2", T(loc, "home.reviews"))
			writeReviews(h, view.Reviews)
			h.close("section")
		}
	})
}

// About renders the agency story page.
func About(page pages.AboutPage, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", page.Title)
		h.paragraphs(page.Intro)
		if page.Mission != "" {
			h.elem("h2", T(loc, "about.mission"))
			h.paragraphs(page.Mission)
		}
		if page.Vision != "" {
			h.elem("h2", T(loc, "about.vision"))
			h.paragraphs(page.Vision)
		}
		if len(page.Values) > 0 {
			h.elem("h2", T(loc, "about.values"))
			h.list(page.Values)
		}
		if len(page.Team) > 0 {
			h.elem("h2", T(loc, "about.team"))
			h.open("div", "class", "cards")
			for _, member := range page.Team {
				h.open("article", "class", "card")
				if member.Photo != "" {
					h.open("img", "src", member.Photo, "alt", member.Name)
				}
				h.elem("h3", member.Name)
				h.elem("p", member.Role, "class", "muted")
				h.elem("p", member.Bio)
				h.close("article")
			}
			h.close("div")
		}
	})
}

// ServiceList renders the services page.
func ServiceList(page pages.ServicesPage, services []catalog.Service, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", page.Title)
		h.elem("p", page.Subtitle, "class", "lead")
		if len(services) == 0 {
			h.elem("p", T(loc, "services.empty"), "class", "empty")
		}
		writeServiceCards(h, loc, services)
		if page.CTAText != "" {
			h.elem("a", page.CTAText, "href", routepath.SafeNext(page.CTALink, routepath.Contact), "class", "button button-primary")
		}
	})
}

func writeServiceCards(h *htmlWriter, loc Localizer, services []catalog.Service) {
	h.open("div", "class", "cards")
	for _, service := range services {
		h.open("article", "class", "card")
		h.open("h3")
		h.elem("a", service.Title, "href", routepath.Service(service.Slug))
		h.close("h3")
		h.elem("p", service.Summary)
		if service.PriceFromCents > 0 {
			h.elem("p", T(loc, "services.price_from", Money(loc, service.PriceFromCents)), "class", "price")
		}
		h.close("article")
	}
	h.close("div")
}

// ServiceDetail renders one service.
func ServiceDetail(service catalog.Service, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("article", "class", "detail")
		h.elem("h1", service.Title)
		h.elem("p", service.Summary, "class", "lead")
		h.paragraphs(service.Description)
		if len(service.Features) > 0 {
			h.elem("h2", T(loc, "services.features"))
			h.list(service.Features)
		}
		if service.PriceFromCents > 0 {
			h.elem("p", T(loc, "services.price_from", Money(loc, service.PriceFromCents)), "class", "price")
		}
		h.elem("a", T(loc, "services.get_started"), "href", routepath.Contact, "class", "button button-primary")
		h.close("article")
	})
}

// CaseStudyList renders the case study index.
func CaseStudyList(page pages.CaseStudiesPage, studies []catalog.CaseStudy, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", page.Title)
		h.elem("p", page.Subtitle, "class", "lead")
		if len(studies) == 0 {
			h.elem("p", T(loc, "case_studies.empty"), "class", "empty")
			return
		}
		h.open("div", "class", "cards")
		for _, study := range studies {
			h.open("article", "class", "card")
			if study.Image != "" {
				h.open("img", "src", study.Image, "alt", study.Title)
			}
			h.open("h3")
			h.elem("a", study.Title, "href", routepath.CaseStudy(study.Slug))
			h.close("h3")
			h.elem("p", study.Client+" · "+study.Industry, "class", "muted")
			h.elem("p", study.Summary)
			h.close("article")
		}
		h.close("div")
	})
}

// CaseStudyDetail renders one case study.
func CaseStudyDetail(study catalog.CaseStudy, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("article", "class", "detail")
		h.elem("h1", study.Title)
		h.elem("p", study.Client+" · "+study.Industry, "class", "muted")
		if study.Image != "" {
			h.open("img", "src", study.Image, "alt", study.Title)
		}
		h.paragraphs(study.Summary)
		h.elem("h2", T(loc, "case_studies.challenge"))
		h.paragraphs(study.Challenge)
		h.elem("h2", T(loc, "case_studies.solution"))
		h.paragraphs(study.Solution)
		if len(study.Results) > 0 {
			h.elem("h2", T(loc, "case_studies.results"))
			h.list(study.Results)
		}
		h.close("article")
	})
}

// AppList renders the apps directory.
func AppList(page pages.AppsPage, apps []catalog.App) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", page.Title)
		h.elem("p", page.Subtitle, "class", "lead")
		if len(apps) == 0 {
			h.elem("p", page.EmptyText, "class", "empty")
			return
		}
		writeAppCards(h, apps)
	})
}

func writeAppCards(h *htmlWriter, apps []catalog.App) {
	h.open("div", "class", "cards")
	for _, app := range apps {
		h.open("article", "class", "card")
		if app.Icon != "" {
			h.open("img", "src", app.Icon, "alt", "", "class", "icon")
		}
		h.open("h3")
		h.elem("a", app.Name, "href", routepath.App(app.Slug))
		h.close("h3")
		if app.Category != "" {
			h.elem("span", app.Category, "class", "tag")
		}
		h.elem("p", app.Tagline)
		h.close("article")
	}
	h.close("div")
}

// AppDetail renders one app.
func AppDetail(app catalog.App, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("article", "class", "detail")
		h.elem("h1", app.Name)
		h.elem("p", app.Tagline, "class", "lead")
		if app.Category != "" {
			h.elem("span", app.Category, "class", "tag")
		}
		h.paragraphs(app.Description)
		if app.URL != "" {
			h.elem("a", T(loc, "apps.visit"), "href", app.URL, "class", "button button-primary", "rel", "noopener")
		}
		h.close("article")
	})
}

// ReviewsView is the reviews page data.
type ReviewsView struct {
	Reviews []catalog.Review
	Average float64
	Form    Form
}

// Reviews renders approved reviews and the submission form.
func Reviews(view ReviewsView, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", T(loc, "reviews.title"))
		if len(view.Reviews) > 0 {
			h.elem("p", T(loc, "reviews.average", view.Average, len(view.Reviews)), "class", "lead")
			writeReviews(h, view.Reviews)
		} else {
			h.elem("p", T(loc, "reviews.empty"), "class", "empty")
		}
		h.elem("h2", T(loc, "reviews.write"))
		writeForm(h, view.Form)
	})
}

func writeReviews(h *htmlWriter, reviews []catalog.Review) {
	h.open("div", "class", "reviews")
	for _, review := range reviews {
		h.open("blockquote", "class", "review")
		h.elem("span", stars(review.Rating), "class", "rating", "aria-label", strconv.Itoa(review.Rating)+"/5")
		h.paragraphs(review.Body)
		author := review.Author
		if review.Company != "" {
			author += ", " + review.Company
		}
		h.elem("cite", author)
		h.close("blockquote")
	}
	h.close("div")
}

// PricingView is the pricing page data.
type PricingView struct {
	Plans  pages.PricingPlans
	Viewer module.Viewer
}

// Pricing renders the plan table. Signed-in users get upgrade buttons for
// higher tiers.
func Pricing(view PricingView, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		plans := view.Plans
		h.elem("h1", plans.Title)
		h.elem("p", plans.Subtitle, "class", "lead")
		current, hasCurrent := plans.Find(view.Viewer.Plan)
		h.open("div", "class", "plans")
		for _, plan := range plans.Plans {
			class := "plan"
			if plan.Highlighted {
				class += " plan-highlighted"
			}
			h.open("article", "class", class)
			h.elem("h2", plan.Name)
			h.elem("p", T(loc, "pricing.per_month", Money(loc, plan.MonthlyPriceCents)), "class", "price")
			h.elem("p", plan.Description)
			h.list(plan.Features)
			switch {
			case !view.Viewer.SignedIn():
				h.elem("a", T(loc, "pricing.sign_up"), "href", routepath.Signup, "class", "button")
			case hasCurrent && plan.ID == current.ID:
				h.elem("span", T(loc, "pricing.current"), "class", "tag")
			case !hasCurrent || plan.Rank > current.Rank:
				h.open("form", "method", "post", "action", routepath.AppUpgrade, "class", "inline")
				h.open("input", "type", "hidden", "name", "plan", "value", plan.ID)
				h.elem("button", T(loc, "pricing.upgrade"), "type", "submit", "class", "button button-primary")
				h.close("form")
			}
			h.close("article")
		}
		h.close("div")
	})
}

// ContactView is the contact page data.
type ContactView struct {
	Settings pages.ContactSettings
	Form     Form
}

// Contact renders the contact details and the contact form.
func Contact(view ContactView, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		settings := view.Settings
		h.elem("h1", T(loc, "contact.title"))
		h.open("dl", "class", "contact-details")
		details := []struct{ key, value string }{
			{"contact.email", settings.Email},
			{"contact.phone", settings.Phone},
			{"contact.address", settings.Address},
			{"contact.hours", settings.Hours},
		}
		for _, detail := range details {
			if detail.value == "" {
				continue
			}
			h.elem("dt", T(loc, detail.key))
			h.elem("dd", detail.value)
		}
		h.close("dl")
		writeForm(h, view.Form)
	})
}

// FormPageView is a titled page around a submission form.
type FormPageView struct {
	Title string
	Intro string
	// Notes are listed before the form, e.g. open positions.
	NotesTitle string
	Notes      []string
	Form       Form
}

// FormPage renders the application and investment pages.
func FormPage(view FormPageView) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", view.Title)
		h.paragraphs(view.Intro)
		if len(view.Notes) > 0 {
			if view.NotesTitle != "" {
				h.elem("h2", view.NotesTitle)
			}
			h.list(view.Notes)
		}
		writeForm(h, view.Form)
	})
}

// Legal renders one policy text.
func Legal(title string, body string, lastUpdated string, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("article", "class", "legal")
		h.elem("h1", title)
		if lastUpdated != "" {
			h.elem("p", T(loc, "legal.last_updated", lastUpdated), "class", "muted")
		}
		h.paragraphs(body)
		h.close("article")
	})
}

// AuthView is a login or signup page.
type AuthView struct {
	Title    string
	Form     Form
	AltText  string
	AltLabel string
	AltHref  string
}

// Auth renders a login or signup page.
func Auth(view AuthView) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.open("section", "class", "auth")
		h.elem("h1", view.Title)
		writeForm(h, view.Form)
		h.open("p")
		h.text(view.AltText + " ")
		h.elem("a", view.AltLabel, "href", view.AltHref)
		h.close("p")
		h.close("section")
	})
}
