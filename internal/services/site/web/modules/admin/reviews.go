package admin

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

func (h handlers) handleReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.deps.Catalog.ListReviews(r.Context(), false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	table := templates.Table{
		Columns: []string{
			templates.T(loc, "field.name"),
			templates.T(loc, "field.company"),
			templates.T(loc, "field.rating"),
			templates.T(loc, "field.review"),
			templates.T(loc, "admin.reviews.approved"),
			templates.T(loc, "field.created"),
		},
		Empty: templates.T(loc, "reviews.empty"),
	}
	for _, review := range reviews {
		toggle := templates.Action{Label: templates.T(loc, "admin.reviews.approve"), Href: routepath.AdminReviewActionFor(review.ID, "approve"), Post: true}
		if review.Approved {
			toggle = templates.Action{Label: templates.T(loc, "admin.reviews.unapprove"), Href: routepath.AdminReviewActionFor(review.ID, "unapprove"), Post: true}
		}
		table.Rows = append(table.Rows, templates.Row{
			Cells: []templates.Cell{
				{Text: review.Author},
				{Text: review.Company},
				{Text: strconv.Itoa(review.Rating)},
				{Text: review.Body},
				{Text: yesNo(loc, review.Approved)},
				{Text: review.CreatedAt.Format(timeLayout)},
			},
			Actions: []templates.Action{
				toggle,
				{Label: templates.T(loc, "action.delete"), Href: routepath.AdminReviewActionFor(review.ID, "delete"), Post: true, Danger: true},
			},
		})
	}
	h.page(w, r, http.StatusOK, templates.AdminView{
		Title:    templates.T(loc, "admin.nav.reviews"),
		Path:     routepath.AdminReviews,
		Sections: []templ.Component{templates.TableView(table)},
	})
}

func (h handlers) handleReviewAction(w http.ResponseWriter, r *http.Request) {
	reviewID := r.PathValue("id")
	var err error
	var key string
	switch r.PathValue("action") {
	case "approve":
		_, err = h.deps.Catalog.SetReviewApproved(r.Context(), reviewID, true)
		key = "flash.review_approved"
	case "unapprove":
		_, err = h.deps.Catalog.SetReviewApproved(r.Context(), reviewID, false)
		key = "flash.review_unapproved"
	case "delete":
		_, err = h.deps.Catalog.DeleteReviews(r.Context(), reviewID)
		key = "flash.review_deleted"
	default:
		h.handleNotFound(w, r)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, key, routepath.AdminReviews)
}
