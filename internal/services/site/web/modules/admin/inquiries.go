package admin

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

var inquiryKinds = []inquiries.Kind{inquiries.KindContact, inquiries.KindApplication, inquiries.KindInvestment}

func (h handlers) handleInquiries(w http.ResponseWriter, r *http.Request) {
	kind := inquiries.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		h.handleNotFound(w, r)
		return
	}
	list, err := h.deps.Inquiries.List(r.Context(), kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	table := templates.Table{
		Columns: []string{
			templates.T(loc, "admin.inquiries.kind"),
			templates.T(loc, "field.name"),
			templates.T(loc, "field.email"),
			templates.T(loc, "admin.inquiries.about"),
			templates.T(loc, "field.message"),
			templates.T(loc, "field.created"),
			templates.T(loc, "admin.inquiries.handled"),
		},
		Empty: templates.T(loc, "admin.empty"),
	}
	for _, inquiry := range list {
		toggle := templates.Action{Label: templates.T(loc, "admin.inquiries.handle"), Href: routepath.AdminInquiryActionFor(inquiry.ID, "handle"), Post: true}
		if inquiry.Handled {
			toggle = templates.Action{Label: templates.T(loc, "admin.inquiries.reopen"), Href: routepath.AdminInquiryActionFor(inquiry.ID, "reopen"), Post: true}
		}
		table.Rows = append(table.Rows, templates.Row{
			Cells: []templates.Cell{
				{Text: templates.T(loc, "admin.inquiries.kind."+string(inquiry.Kind))},
				{Text: inquiry.Name},
				{Text: inquiry.Email, Href: "mailto:" + inquiry.Email},
				{Text: inquiryAbout(loc, inquiry)},
				{Text: inquiry.Message},
				{Text: inquiry.CreatedAt.Format(timeLayout)},
				{Text: yesNo(loc, inquiry.Handled)},
			},
			Actions: []templates.Action{
				toggle,
				{Label: templates.T(loc, "action.delete"), Href: routepath.AdminInquiryActionFor(inquiry.ID, "delete"), Post: true, Danger: true},
			},
		})
	}
	links := []templates.Action{{Label: templates.T(loc, "admin.inquiries.all"), Href: routepath.AdminInquiries}}
	for _, k := range inquiryKinds {
		links = append(links, templates.Action{Label: templates.T(loc, "admin.inquiries.kind."+string(k)), Href: routepath.AdminInquiries + "?kind=" + string(k)})
	}
	h.page(w, r, http.StatusOK, templates.AdminView{
		Title:    templates.T(loc, "admin.nav.inquiries"),
		Path:     routepath.AdminInquiries,
		Links:    links,
		Sections: []templ.Component{templates.TableView(table)},
	})
}

// inquiryAbout summarizes the kind-specific field of an inquiry.
func inquiryAbout(loc templates.Localizer, inquiry inquiries.Inquiry) string {
	switch inquiry.Kind {
	case inquiries.KindApplication:
		return inquiry.Position
	case inquiries.KindInvestment:
		return templates.Money(loc, inquiry.AmountCents)
	}
	if inquiry.Phone != "" && inquiry.Subject == "" {
		return inquiry.Phone
	}
	return inquiry.Subject
}

func (h handlers) handleInquiryAction(w http.ResponseWriter, r *http.Request) {
	inquiryID := r.PathValue("id")
	var err error
	var key string
	switch r.PathValue("action") {
	case "handle":
		_, err = h.deps.Inquiries.SetHandled(r.Context(), inquiryID, true)
		key = "flash.inquiry_handled"
	case "reopen":
		_, err = h.deps.Inquiries.SetHandled(r.Context(), inquiryID, false)
		key = "flash.inquiry_reopened"
	case "delete":
		_, err = h.deps.Inquiries.Delete(r.Context(), inquiryID)
		key = "flash.inquiry_deleted"
	default:
		h.handleNotFound(w, r)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, key, routepath.AdminInquiries)
}
