// Package routepath stores canonical HTTP paths for the site.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root              = "/"
	Health            = "/up"
	About             = "/about"
	Services          = "/services"
	ServicePattern    = "/services/{slug}"
	CaseStudies       = "/case-study"
	CaseStudyPattern  = "/case-study/{slug}"
	Apps              = "/apps"
	AppPattern        = "/apps/{slug}"
	Reviews           = "/reviews"
	Pricing           = "/pricing"
	Contact           = "/contact"
	Application       = "/application"
	Investment        = "/investment"
	PrivacyPolicy     = "/privacy-policy"
	Terms             = "/terms"
	FilesPrefix       = "/files/"
	FilePattern       = "/files/{id}"
	Login             = "/login"
	Signup            = "/signup"
	Logout            = "/logout"
	AppPrefix         = "/app/"
	AppProfile        = "/app/profile"
	AppPassword       = "/app/password"
	AppUpgrade        = "/app/upgrade"
	AppMessages       = "/app/messages"
	AppMessageRead    = "/app/messages/{id}/read"
	AppChat           = "/app/chat"
	AppChatSocket     = "/app/chat/ws"
	AdminPrefix       = "/admin/"
	AdminDashboard    = "/admin/"
	AdminContent      = "/admin/content"
	AdminContentPage  = "/admin/content/{page}"
	AdminApps         = "/admin/apps"
	AdminAppNew       = "/admin/apps/new"
	AdminApp          = "/admin/apps/{slug}"
	AdminAppDelete    = "/admin/apps/{slug}/delete"
	AdminServices     = "/admin/services"
	AdminServiceNew   = "/admin/services/new"
	AdminService      = "/admin/services/{slug}"
	AdminServiceDel   = "/admin/services/{slug}/delete"
	AdminCases        = "/admin/case-studies"
	AdminCaseNew      = "/admin/case-studies/new"
	AdminCase         = "/admin/case-studies/{slug}"
	AdminCaseDelete   = "/admin/case-studies/{slug}/delete"
	AdminReviews      = "/admin/reviews"
	AdminReviewAction = "/admin/reviews/{id}/{action}"
	AdminUsers        = "/admin/users"
	AdminUserNew      = "/admin/users/new"
	AdminUser         = "/admin/users/{email}"
	AdminUserDelete   = "/admin/users/{email}/delete"
	AdminFiles        = "/admin/files"
	AdminFileDelete   = "/admin/files/{id}/delete"
	AdminChat         = "/admin/chat"
	AdminChatThread   = "/admin/chat/{id}"
	AdminChatDelete   = "/admin/chat/{id}/delete"
	AdminChatSocket   = "/admin/chat/{id}/ws"
	AdminMessages     = "/admin/messages"
	AdminMessageDel   = "/admin/messages/{id}/delete"
	AdminInquiries    = "/admin/inquiries"
	AdminInquiryAct   = "/admin/inquiries/{id}/{action}"
)

// Service returns the public path of one service.
func Service(slug string) string { return Services + "/" + escapeSegment(slug) }

// CaseStudy returns the public path of one case study.
func CaseStudy(slug string) string { return CaseStudies + "/" + escapeSegment(slug) }

// App returns the public path of one app.
func App(slug string) string { return Apps + "/" + escapeSegment(slug) }

// File returns the download path of an upload.
func File(id string) string { return FilesPrefix + escapeSegment(id) }

// MessageRead returns the mark-as-read action of an inbox message.
func MessageRead(id string) string { return AppMessages + "/" + escapeSegment(id) + "/read" }

// AdminContentFor returns the editor path of a page document.
func AdminContentFor(slug string) string { return AdminContent + "/" + escapeSegment(slug) }

// AdminAppFor returns the admin edit path of an app.
func AdminAppFor(slug string) string { return AdminApps + "/" + escapeSegment(slug) }

// AdminServiceFor returns the admin edit path of a service.
func AdminServiceFor(slug string) string { return AdminServices + "/" + escapeSegment(slug) }

// AdminCaseFor returns the admin edit path of a case study.
func AdminCaseFor(slug string) string { return AdminCases + "/" + escapeSegment(slug) }

// AdminReviewActionFor returns an approve/unapprove/delete action path.
func AdminReviewActionFor(id string, action string) string {
	return AdminReviews + "/" + escapeSegment(id) + "/" + escapeSegment(action)
}

// AdminUserFor returns the admin edit path of a user.
func AdminUserFor(email string) string { return AdminUsers + "/" + escapeSegment(email) }

// AdminFileDeleteFor returns the delete action of an upload.
func AdminFileDeleteFor(id string) string { return AdminFiles + "/" + escapeSegment(id) + "/delete" }

// AdminChatFor returns the support console path of a conversation.
func AdminChatFor(id string) string { return AdminChat + "/" + escapeSegment(id) }

// AdminChatSocketFor returns the live-update socket of one conversation.
func AdminChatSocketFor(id string) string { return AdminChatFor(id) + "/ws" }

// AdminMessageDeleteFor returns the delete action of a broadcast message.
func AdminMessageDeleteFor(id string) string {
	return AdminMessages + "/" + escapeSegment(id) + "/delete"
}

// AdminInquiryActionFor returns a handle/reopen/delete action path.
func AdminInquiryActionFor(id string, action string) string {
	return AdminInquiries + "/" + escapeSegment(id) + "/" + escapeSegment(action)
}

// WithSuffix appends a path suffix to an entity path.
func WithSuffix(base string, suffix string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(suffix, "/")
}

// SafeNext returns next when it is a local absolute path, else fallback.
func SafeNext(next string, fallback string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	return next
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
