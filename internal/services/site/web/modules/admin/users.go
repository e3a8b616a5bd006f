package admin

import (
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

func (h handlers) handleUsers(w http.ResponseWriter, r *http.Request) {
	loc, _ := pagerender.Localizer(w, r)
	query := r.URL.Query().Get("filter")
	filterMessage := ""
	users, err := h.deps.Accounts.ListUsers(r.Context(), query)
	if err != nil {
		errs, ok := form.FieldErrors(err, loc)
		if !ok {
			h.writeError(w, r, err)
			return
		}
		filterMessage = errs["filter"]
	}
	table := templates.Table{
		Columns: []string{
			templates.T(loc, "field.email"),
			templates.T(loc, "field.username"),
			templates.T(loc, "field.name"),
			templates.T(loc, "field.role"),
			templates.T(loc, "field.plan"),
			templates.T(loc, "field.created"),
		},
		Empty: templates.T(loc, "admin.empty"),
	}
	for _, user := range users {
		href := routepath.AdminUserFor(user.Email)
		table.Rows = append(table.Rows, templates.Row{
			Cells: []templates.Cell{
				{Text: user.Email, Href: href},
				{Text: user.Username},
				{Text: user.Name},
				{Text: templates.T(loc, "admin.role."+string(user.Role))},
				{Text: user.Plan},
				{Text: user.CreatedAt.Format(timeLayout)},
			},
			Actions: []templates.Action{
				{Label: templates.T(loc, "action.edit"), Href: href},
				{Label: templates.T(loc, "action.delete"), Href: href + "/delete", Post: true, Danger: true},
			},
		})
	}
	status := http.StatusOK
	if filterMessage != "" {
		status = http.StatusUnprocessableEntity
	}
	h.page(w, r, status, templates.AdminView{
		Title: templates.T(loc, "admin.nav.users"),
		Path:  routepath.AdminUsers,
		Links: []templates.Action{{Label: templates.T(loc, "admin.users.new"), Href: routepath.AdminUserNew}},
		Sections: []templ.Component{
			templates.FilterForm(routepath.AdminUsers, "filter", query, `role = "admin" OR plan = "pro"`, templates.T(loc, "admin.users.filter"), filterMessage),
			templates.TableView(table),
		},
	})
}

func (h handlers) planOptions(ctx context.Context) ([]templates.Option, error) {
	plans, err := h.deps.Pages.PricingPlans.Get(ctx)
	if err != nil {
		return nil, err
	}
	options := []templates.Option{{Value: "", Label: "-"}}
	for _, plan := range plans.Plans {
		options = append(options, templates.Option{Value: plan.ID, Label: plan.Name})
	}
	return options, nil
}

func roleOptions(loc templates.Localizer) []templates.Option {
	return []templates.Option{
		{Value: string(accounts.RoleUser), Label: templates.T(loc, "admin.role.user")},
		{Value: string(accounts.RoleAdmin), Label: templates.T(loc, "admin.role.admin")},
	}
}

func (h handlers) handleUserNew(w http.ResponseWriter, r *http.Request) {
	h.renderUserNew(w, r, http.StatusOK, accounts.CreateUserInput{Role: accounts.RoleUser}, nil)
}

func (h handlers) renderUserNew(w http.ResponseWriter, r *http.Request, status int, input accounts.CreateUserInput, errs form.Errors) {
	plans, err := h.planOptions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	f := templates.Form{
		Action: routepath.AdminUsers,
		Submit: templates.T(loc, "action.create"),
		Errors: errs,
		Fields: []templates.Field{
			{Name: "name", Label: templates.T(loc, "field.name"), Kind: templates.FieldText, Value: input.Name, Required: true},
			{Name: "username", Label: templates.T(loc, "field.username"), Kind: templates.FieldText, Value: input.Username, Required: true, Hint: templates.T(loc, "field.username_hint")},
			{Name: "email", Label: templates.T(loc, "field.email"), Kind: templates.FieldEmail, Value: input.Email, Required: true},
			{Name: "password", Label: templates.T(loc, "field.password"), Kind: templates.FieldPassword, Required: true, Hint: templates.T(loc, "field.password_hint", accounts.MinPasswordLength)},
			{Name: "role", Label: templates.T(loc, "field.role"), Kind: templates.FieldSelect, Value: string(input.Role), Options: roleOptions(loc)},
			{Name: "plan", Label: templates.T(loc, "field.plan"), Kind: templates.FieldSelect, Value: input.Plan, Options: plans},
		},
	}
	h.page(w, r, status, templates.AdminView{
		Title:    templates.T(loc, "admin.users.new"),
		Path:     routepath.AdminUsers,
		Links:    []templates.Action{{Label: templates.T(loc, "action.back"), Href: routepath.AdminUsers}},
		Sections: []templ.Component{templates.FormView(f)},
	})
}

func (h handlers) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := accounts.CreateUserInput{
		Name:     values.String("name"),
		Username: values.String("username"),
		Email:    values.String("email"),
		Password: values.Raw("password"),
		Role:     accounts.Role(values.String("role")),
		Plan:     values.String("plan"),
	}
	user, err := h.deps.Accounts.CreateUser(r.Context(), input)
	if err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			input.Password = ""
			h.renderUserNew(w, r, http.StatusUnprocessableEntity, input, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.user_created", routepath.AdminUserFor(user.Email))
}

func (h handlers) handleUserEdit(w http.ResponseWriter, r *http.Request) {
	user, err := h.deps.Accounts.User(r.Context(), r.PathValue("email"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := accounts.UpdateUserInput{Name: user.Name, Role: user.Role, Plan: user.Plan, Avatar: user.Avatar}
	h.renderUserEdit(w, r, http.StatusOK, user, input, nil)
}

func (h handlers) renderUserEdit(w http.ResponseWriter, r *http.Request, status int, user accounts.User, input accounts.UpdateUserInput, errs form.Errors) {
	plans, err := h.planOptions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	href := routepath.AdminUserFor(user.Email)
	f := templates.Form{
		Action: href,
		Submit: templates.T(loc, "action.save"),
		Errors: errs,
		Fields: []templates.Field{
			{Name: "name", Label: templates.T(loc, "field.name"), Kind: templates.FieldText, Value: input.Name, Required: true},
			{Name: "role", Label: templates.T(loc, "field.role"), Kind: templates.FieldSelect, Value: string(input.Role), Options: roleOptions(loc)},
			{Name: "plan", Label: templates.T(loc, "field.plan"), Kind: templates.FieldSelect, Value: input.Plan, Options: plans},
			{Name: "avatar", Label: templates.T(loc, "field.avatar"), Kind: templates.FieldURL, Value: input.Avatar},
		},
	}
	h.page(w, r, status, templates.AdminView{
		Title: user.Email,
		Path:  routepath.AdminUsers,
		Links: []templates.Action{
			{Label: templates.T(loc, "action.back"), Href: routepath.AdminUsers},
			{Label: templates.T(loc, "action.delete"), Href: href + "/delete", Post: true, Danger: true},
		},
		Sections: []templ.Component{
			templates.Detail(
				templates.T(loc, "field.username"), user.Username,
				templates.T(loc, "field.created"), user.CreatedAt.Format(timeLayout),
				templates.T(loc, "field.updated"), user.UpdatedAt.Format(timeLayout),
			),
			templates.FormView(f),
		},
	})
}

func (h handlers) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := accounts.UpdateUserInput{
		Name:   values.String("name"),
		Role:   accounts.Role(values.String("role")),
		Plan:   values.String("plan"),
		Avatar: values.String("avatar"),
	}
	if _, err := h.deps.Accounts.UpdateUser(r.Context(), email, input); err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			user, getErr := h.deps.Accounts.User(r.Context(), email)
			if getErr != nil {
				h.writeError(w, r, getErr)
				return
			}
			h.renderUserEdit(w, r, http.StatusUnprocessableEntity, user, input, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.user_updated", routepath.AdminUserFor(email))
}

func (h handlers) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.Accounts.DeleteUsers(r.Context(), r.PathValue("email")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.user_deleted", routepath.AdminUsers)
}
