package public

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/weberror"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

const (
	homeServiceCount = 3
	homeReviewCount  = 3
	// sentParam marks the redirect after a successful form submission.
	sentParam = "sent"
)

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

func (h handlers) render(w http.ResponseWriter, r *http.Request, title string, status int, body templ.Component) {
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Status: status, Body: body}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps)
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.NotFound(w, r, h.deps)
}

func (h handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.deps.Pages.Home.Get(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	services, err := h.deps.Catalog.ListServices(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	apps, err := h.deps.Catalog.ListApps(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reviews, err := h.deps.Catalog.ListReviews(ctx, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	featured := make([]catalog.App, 0, len(apps))
	for _, app := range apps {
		if app.Featured {
			featured = append(featured, app)
		}
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, "", http.StatusOK, templates.Home(templates.HomeView{
		Page:     page,
		Services: firstN(services, homeServiceCount),
		Apps:     featured,
		Reviews:  firstN(reviews, homeReviewCount),
	}, loc))
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (h handlers) handleAbout(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Pages.About.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, page.Title, http.StatusOK, templates.About(page, loc))
}

func (h handlers) handleServices(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Pages.Services.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	services, err := h.deps.Catalog.ListServices(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, page.Title, http.StatusOK, templates.ServiceList(page, services, loc))
}

func (h handlers) handleService(w http.ResponseWriter, r *http.Request) {
	service, err := h.deps.Catalog.GetService(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, service.Title, http.StatusOK, templates.ServiceDetail(service, loc))
}

func (h handlers) handleCaseStudies(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Pages.CaseStudies.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	studies, err := h.deps.Catalog.ListCaseStudies(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, page.Title, http.StatusOK, templates.CaseStudyList(page, studies, loc))
}

func (h handlers) handleCaseStudy(w http.ResponseWriter, r *http.Request) {
	study, err := h.deps.Catalog.GetCaseStudy(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, study.Title, http.StatusOK, templates.CaseStudyDetail(study, loc))
}

func (h handlers) handleApps(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Pages.Apps.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	apps, err := h.deps.Catalog.ListApps(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render(w, r, page.Title, http.StatusOK, templates.AppList(page, apps))
}

func (h handlers) handleApp(w http.ResponseWriter, r *http.Request) {
	app, err := h.deps.Catalog.GetApp(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, app.Name, http.StatusOK, templates.AppDetail(app, loc))
}

func (h handlers) handleReviews(w http.ResponseWriter, r *http.Request) {
	h.renderReviews(w, r, http.StatusOK, catalog.ReviewInput{Rating: 5}, nil)
}

func (h handlers) renderReviews(w http.ResponseWriter, r *http.Request, status int, input catalog.ReviewInput, errs form.Errors) {
	reviews, err := h.deps.Catalog.ListReviews(r.Context(), true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, templates.T(loc, "reviews.title"), status, templates.Reviews(templates.ReviewsView{
		Reviews: reviews,
		Average: catalog.AverageRating(reviews),
		Form:    reviewForm(loc, input, errs),
	}, loc))
}

func (h handlers) handleReviewSubmit(w http.ResponseWriter, r *http.Request) {
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := catalog.ReviewInput{
		Author:  values.String("author"),
		Company: values.String("company"),
		Body:    values.String("body"),
	}
	loc, _ := pagerender.Localizer(w, r)
	rating, err := values.Int("rating")
	if err == nil {
		input.Rating = rating
		_, err = h.deps.Catalog.SubmitReview(r.Context(), input)
	}
	if err != nil {
		if errs, ok := form.FieldErrors(err, loc); ok {
			h.renderReviews(w, r, http.StatusUnprocessableEntity, input, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	flash.Write(w, r, flash.Success("flash.review_submitted"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.Reviews)
}

func (h handlers) handlePricing(w http.ResponseWriter, r *http.Request) {
	plans, err := h.deps.Pages.PricingPlans.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, plans.Title, http.StatusOK, templates.Pricing(templates.PricingView{
		Plans:  plans,
		Viewer: h.deps.Viewer(r),
	}, loc))
}

func (h handlers) handleContact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, inquiries.Input{}, nil)
}

func (h handlers) renderContact(w http.ResponseWriter, r *http.Request, status int, input inquiries.Input, errs form.Errors) {
	settings, err := h.deps.Pages.ContactSettings.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	h.render(w, r, templates.T(loc, "contact.title"), status, templates.Contact(templates.ContactView{
		Settings: settings,
		Form:     contactForm(loc, input, errs),
	}, loc))
}

func (h handlers) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	h.submitInquiry(w, r, inquiries.KindContact, routepath.Contact, "flash.contact_sent", h.renderContact)
}

func (h handlers) handleApplication(w http.ResponseWriter, r *http.Request) {
	h.renderApplication(w, r, http.StatusOK, inquiries.Input{}, nil)
}

func (h handlers) renderApplication(w http.ResponseWriter, r *http.Request, status int, input inquiries.Input, errs form.Errors) {
	page, err := h.deps.Pages.Application.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	view := templates.FormPageView{
		Title:      page.Title,
		Intro:      page.Intro,
		NotesTitle: templates.T(loc, "application.open_positions"),
		Notes:      page.OpenPositions,
		Form:       applicationForm(loc, page.OpenPositions, input, errs),
	}
	if r.URL.Query().Get(sentParam) != "" {
		view.Intro = page.SuccessMessage
	}
	h.render(w, r, page.Title, status, templates.FormPage(view))
}

func (h handlers) handleApplicationSubmit(w http.ResponseWriter, r *http.Request) {
	h.submitInquiry(w, r, inquiries.KindApplication, routepath.Application+"?"+sentParam+"=1", "flash.application_sent", h.renderApplication)
}

func (h handlers) handleInvestment(w http.ResponseWriter, r *http.Request) {
	h.renderInvestment(w, r, http.StatusOK, inquiries.Input{}, nil)
}

func (h handlers) renderInvestment(w http.ResponseWriter, r *http.Request, status int, input inquiries.Input, errs form.Errors) {
	page, err := h.deps.Pages.Investment.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	view := templates.FormPageView{
		Title: page.Title,
		Intro: page.Intro,
		Notes: []string{templates.T(loc, "investment.minimum", templates.Money(loc, page.MinimumInvestmentCents))},
		Form:  investmentForm(loc, input, errs),
	}
	if r.URL.Query().Get(sentParam) != "" {
		view.Intro = page.SuccessMessage
	}
	h.render(w, r, page.Title, status, templates.FormPage(view))
}

func (h handlers) handleInvestmentSubmit(w http.ResponseWriter, r *http.Request) {
	h.submitInquiry(w, r, inquiries.KindInvestment, routepath.Investment+"?"+sentParam+"=1", "flash.investment_sent", h.renderInvestment)
}

type inquiryRenderer func(http.ResponseWriter, *http.Request, int, inquiries.Input, form.Errors)

func (h handlers) submitInquiry(w http.ResponseWriter, r *http.Request, kind inquiries.Kind, next string, flashKey string, rerender inquiryRenderer) {
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := inquiries.Input{
		Kind:     kind,
		Name:     values.String("name"),
		Email:    values.String("email"),
		Phone:    values.String("phone"),
		Subject:  values.String("subject"),
		Position: values.String("position"),
		Amount:   values.String("amount"),
		Message:  values.String("message"),
	}
	if _, err := h.deps.Inquiries.Submit(r.Context(), input); err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			rerender(w, r, http.StatusUnprocessableEntity, input, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	flash.Write(w, r, flash.Success(flashKey), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, next)
}

func (h handlers) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Pages.Legal.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	title := templates.T(loc, "legal.privacy")
	body := page.PrivacyPolicy
	if page.CookiePolicy != "" {
		body += "\n\n" + page.CookiePolicy
	}
	h.render(w, r, title, http.StatusOK, templates.Legal(title, body, page.LastUpdated, loc))
}

func (h handlers) handleTerms(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Pages.Legal.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	title := templates.T(loc, "legal.terms")
	h.render(w, r, title, http.StatusOK, templates.Legal(title, page.Terms, page.LastUpdated, loc))
}

func (h handlers) handleFile(w http.ResponseWriter, r *http.Request) {
	file, body, err := h.deps.Files.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+sanitizeFilename(file.Name)+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, file.Name, file.CreatedAt, bytes.NewReader(body))
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r < 0x20 || r == '"' || r == '\\' || r == 0x7f {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
