package admin

import (
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminDashboard+"{$}", h.handleDashboard)

	mux.HandleFunc(http.MethodGet+" "+routepath.AdminContent, h.handleContentIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminContentPage, h.handleContentEdit)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminContentPage, h.handleContentSave)

	registerResource(mux, h, appResource(), routepath.AdminApps, routepath.AdminAppNew, routepath.AdminApp, routepath.AdminAppDelete)
	registerResource(mux, h, serviceResource(), routepath.AdminServices, routepath.AdminServiceNew, routepath.AdminService, routepath.AdminServiceDel)
	registerResource(mux, h, caseStudyResource(), routepath.AdminCases, routepath.AdminCaseNew, routepath.AdminCase, routepath.AdminCaseDelete)

	mux.HandleFunc(http.MethodGet+" "+routepath.AdminReviews, h.handleReviews)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminReviewAction, h.handleReviewAction)

	mux.HandleFunc(http.MethodGet+" "+routepath.AdminUsers, h.handleUsers)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminUserNew, h.handleUserNew)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminUsers, h.handleUserCreate)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminUser, h.handleUserEdit)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminUser, h.handleUserUpdate)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminUserDelete, h.handleUserDelete)

	mux.HandleFunc(http.MethodGet+" "+routepath.AdminFiles, h.handleFiles)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminFiles, h.handleFileUpload)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminFileDelete, h.handleFileDelete)

	mux.HandleFunc(http.MethodGet+" "+routepath.AdminMessages, h.handleMessages)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminMessages, h.handleBroadcast)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminMessageDel, h.handleMessageDelete)

	mux.HandleFunc(http.MethodGet+" "+routepath.AdminInquiries, h.handleInquiries)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminInquiryAct, h.handleInquiryAction)

	mux.HandleFunc(routepath.AdminPrefix+"{rest...}", h.handleNotFound)
}
