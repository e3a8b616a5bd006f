package public

import (
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleHome)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)
	mux.HandleFunc(http.MethodGet+" "+routepath.About, h.handleAbout)
	mux.HandleFunc(http.MethodGet+" "+routepath.Services, h.handleServices)
	mux.HandleFunc(http.MethodGet+" "+routepath.ServicePattern, h.handleService)
	mux.HandleFunc(http.MethodGet+" "+routepath.CaseStudies, h.handleCaseStudies)
	mux.HandleFunc(http.MethodGet+" "+routepath.CaseStudyPattern, h.handleCaseStudy)
	mux.HandleFunc(http.MethodGet+" "+routepath.Apps, h.handleApps)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppPattern, h.handleApp)
	mux.HandleFunc(http.MethodGet+" "+routepath.Reviews, h.handleReviews)
	mux.HandleFunc(http.MethodPost+" "+routepath.Reviews, h.handleReviewSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.Pricing, h.handlePricing)
	mux.HandleFunc(http.MethodGet+" "+routepath.Contact, h.handleContact)
	mux.HandleFunc(http.MethodPost+" "+routepath.Contact, h.handleContactSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.Application, h.handleApplication)
	mux.HandleFunc(http.MethodPost+" "+routepath.Application, h.handleApplicationSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.Investment, h.handleInvestment)
	mux.HandleFunc(http.MethodPost+" "+routepath.Investment, h.handleInvestmentSubmit)
	mux.HandleFunc(http.MethodGet+" "+routepath.PrivacyPolicy, h.handlePrivacy)
	mux.HandleFunc(http.MethodGet+" "+routepath.Terms, h.handleTerms)
	mux.HandleFunc(http.MethodGet+" "+routepath.FilePattern, h.handleFile)
	mux.HandleFunc("/{rest...}", h.handleNotFound)
}
