package auth

import (
	"errors"
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/sessioncookie"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/weberror"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps)
}

// landing is where a signed-in user goes when no next path is given.
func landing(user accounts.User) string {
	if user.IsAdmin() {
		return routepath.AdminDashboard
	}
	return routepath.AppProfile
}

func (h handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if user, ok := h.deps.User(r); ok {
		http.Redirect(w, r, landing(user), http.StatusFound)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "", r.URL.Query().Get("next"), nil)
}

func (h handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, identifier string, next string, errs form.Errors) {
	loc, _ := pagerender.Localizer(w, r)
	title := templates.T(loc, "auth.login.title")
	view := templates.AuthView{
		Title: title,
		Form: templates.Form{
			Action: routepath.Login,
			Submit: templates.T(loc, "auth.login.submit"),
			Errors: errs,
			Fields: []templates.Field{
				{Name: "identifier", Label: templates.T(loc, "field.identifier"), Value: identifier, Required: true},
				{Name: "password", Label: templates.T(loc, "field.password"), Kind: templates.FieldPassword, Required: true},
				{Name: "next", Kind: templates.FieldHidden, Value: routepath.SafeNext(next, "")},
			},
		},
		AltText:  templates.T(loc, "auth.login.no_account"),
		AltLabel: templates.T(loc, "nav.signup"),
		AltHref:  routepath.Signup,
	}
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Status: status, Body: templates.Auth(view)}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	identifier := values.String("identifier")
	next := values.String("next")
	user, err := h.deps.Accounts.Login(r.Context(), identifier, values.Raw("password"))
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			loc, _ := pagerender.Localizer(w, r)
			h.renderLogin(w, r, http.StatusUnauthorized, identifier, next, form.Errors{"": form.Message(err, loc)})
			return
		}
		h.writeError(w, r, err)
		return
	}
	if !h.startSession(w, r, user) {
		return
	}
	flash.Write(w, r, flash.Success("flash.logged_in"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.SafeNext(next, landing(user)))
}

func (h handlers) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if user, ok := h.deps.User(r); ok {
		http.Redirect(w, r, landing(user), http.StatusFound)
		return
	}
	h.renderSignup(w, r, http.StatusOK, accounts.SignupInput{}, nil)
}

func (h handlers) renderSignup(w http.ResponseWriter, r *http.Request, status int, input accounts.SignupInput, errs form.Errors) {
	loc, _ := pagerender.Localizer(w, r)
	title := templates.T(loc, "auth.signup.title")
	view := templates.AuthView{
		Title: title,
		Form: templates.Form{
			Action: routepath.Signup,
			Submit: templates.T(loc, "auth.signup.submit"),
			Errors: errs,
			Fields: []templates.Field{
				{Name: "name", Label: templates.T(loc, "field.name"), Value: input.Name, Required: true},
				{Name: "username", Label: templates.T(loc, "field.username"), Value: input.Username, Required: true, Hint: templates.T(loc, "field.username_hint")},
				{Name: "email", Label: templates.T(loc, "field.email"), Kind: templates.FieldEmail, Value: input.Email, Required: true},
				{Name: "password", Label: templates.T(loc, "field.password"), Kind: templates.FieldPassword, Required: true, Hint: templates.T(loc, "field.password_hint", accounts.MinPasswordLength)},
			},
		},
		AltText:  templates.T(loc, "auth.signup.have_account"),
		AltLabel: templates.T(loc, "nav.login"),
		AltHref:  routepath.Login,
	}
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Status: status, Body: templates.Auth(view)}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := accounts.SignupInput{
		Name:     values.String("name"),
		Username: values.String("username"),
		Email:    values.String("email"),
		Password: values.Raw("password"),
	}
	user, err := h.deps.Accounts.Signup(r.Context(), input)
	if err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			input.Password = ""
			h.renderSignup(w, r, http.StatusUnprocessableEntity, input, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	if !h.startSession(w, r, user) {
		return
	}
	flash.Write(w, r, flash.Success("flash.signed_up"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.AppProfile)
}

func (h handlers) startSession(w http.ResponseWriter, r *http.Request, user accounts.User) bool {
	token, expires, err := h.deps.Sessions.Issue(user.Email)
	if err != nil {
		h.writeError(w, r, err)
		return false
	}
	sessioncookie.Write(w, r, token, expires, h.deps.SchemePolicy)
	return true
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessioncookie.Clear(w, r, h.deps.SchemePolicy)
	flash.Write(w, r, flash.Info("flash.logged_out"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.Login)
}
