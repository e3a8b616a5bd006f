package account

import (
	"net/http"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/weberror"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

var errNoSession = apperrors.EK(apperrors.KindUnauthorized, "error.session_invalid", "no signed-in user")

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

func (h handlers) redirectProfile(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.AppProfile, http.StatusFound)
}

// currentUser returns the signed-in user. The route group guarantees one
// exists, so a miss is written as an error.
func (h handlers) currentUser(w http.ResponseWriter, r *http.Request) (accounts.User, bool) {
	user, ok := h.deps.User(r)
	if !ok {
		h.writeError(w, r, errNoSession)
	}
	return user, ok
}

func (h handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	input := accounts.ProfileInput{Name: user.Name, Username: user.Username, Avatar: user.Avatar}
	h.renderProfile(w, r, http.StatusOK, user, input, nil, nil)
}

func (h handlers) renderProfile(w http.ResponseWriter, r *http.Request, status int, user accounts.User, input accounts.ProfileInput, profileErrs form.Errors, passwordErrs form.Errors) {
	plans, err := h.deps.Pages.PricingPlans.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	current, _ := plans.Find(user.Plan)
	loc, _ := pagerender.Localizer(w, r)
	view := templates.ProfileView{
		User:         user,
		Plan:         current,
		Upgrades:     upgradesFrom(plans, current),
		ProfileForm:  profileForm(loc, user, input, profileErrs),
		PasswordForm: passwordForm(loc, passwordErrs),
	}
	title := templates.T(loc, "account.title")
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Status: status, Body: templates.Profile(view, loc)}); err != nil {
		h.writeError(w, r, err)
	}
}

// upgradesFrom lists the plans ranked above current.
func upgradesFrom(plans pages.PricingPlans, current pages.Plan) []pages.Plan {
	var out []pages.Plan
	for _, plan := range plans.Plans {
		if current.ID == "" || plan.Rank > current.Rank {
			if plan.ID != current.ID {
				out = append(out, plan)
			}
		}
	}
	return out
}

func profileForm(loc templates.Localizer, user accounts.User, input accounts.ProfileInput, errs form.Errors) templates.Form {
	username := templates.Field{Name: "username", Label: templates.T(loc, "field.username"), Value: input.Username, Required: true}
	if user.Username == accounts.AdminUsername {
		username.Hint = templates.T(loc, "account.admin_username_locked")
	}
	return templates.Form{
		Action: routepath.AppProfile,
		Submit: templates.T(loc, "action.save"),
		Errors: errs,
		Fields: []templates.Field{
			{Name: "name", Label: templates.T(loc, "field.name"), Value: input.Name, Required: true},
			username,
			{Name: "avatar", Label: templates.T(loc, "field.avatar"), Kind: templates.FieldURL, Value: input.Avatar},
		},
	}
}

func passwordForm(loc templates.Localizer, errs form.Errors) templates.Form {
	return templates.Form{
		Action: routepath.AppPassword,
		Submit: templates.T(loc, "account.change_password"),
		Errors: errs,
		Fields: []templates.Field{
			{Name: "currentPassword", Label: templates.T(loc, "field.current_password"), Kind: templates.FieldPassword, Required: true},
			{Name: "newPassword", Label: templates.T(loc, "field.new_password"), Kind: templates.FieldPassword, Required: true},
		},
	}
}

func (h handlers) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := accounts.ProfileInput{
		Name:     values.String("name"),
		Username: values.String("username"),
		Avatar:   values.String("avatar"),
	}
	if _, err := h.deps.Accounts.UpdateProfile(r.Context(), user.Email, input); err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			h.renderProfile(w, r, http.StatusUnprocessableEntity, user, input, errs, nil)
			return
		}
		h.writeError(w, r, err)
		return
	}
	flash.Write(w, r, flash.Success("flash.profile_saved"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.AppProfile)
}

func (h handlers) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.deps.Accounts.ChangePassword(r.Context(), user.Email, values.Raw("currentPassword"), values.Raw("newPassword")); err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			input := accounts.ProfileInput{Name: user.Name, Username: user.Username, Avatar: user.Avatar}
			h.renderProfile(w, r, http.StatusUnprocessableEntity, user, input, nil, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	flash.Write(w, r, flash.Success("flash.password_changed"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.AppProfile)
}

func (h handlers) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.deps.Accounts.UpgradePlan(r.Context(), user.Email, values.String("plan")); err != nil {
		if apperrors.KindOf(err) != apperrors.KindInvalidInput {
			h.writeError(w, r, err)
			return
		}
		flash.Write(w, r, flash.Error(apperrors.LocalizationKey(err)), h.deps.SchemePolicy)
		httpx.SeeOther(w, r, routepath.AppProfile)
		return
	}
	flash.Write(w, r, flash.Success("flash.plan_upgraded"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.AppProfile)
}

func (h handlers) handleMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	messages, err := h.deps.Inbox.MessagesForUser(r.Context(), user.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	title := templates.T(loc, "messages.title")
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Body: templates.Messages(messages, loc)}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleMessageRead(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.deps.Inbox.MarkAsRead(r.Context(), user.Email, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.SeeOther(w, r, routepath.AppMessages)
}
