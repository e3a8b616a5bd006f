package admin

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/inbox"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

func (h handlers) handleMessages(w http.ResponseWriter, r *http.Request) {
	h.renderMessages(w, r, http.StatusOK, inbox.BroadcastInput{}, nil)
}

func (h handlers) renderMessages(w http.ResponseWriter, r *http.Request, status int, input inbox.BroadcastInput, errs form.Errors) {
	messages, err := h.deps.Inbox.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	table := templates.Table{
		Columns: []string{
			templates.T(loc, "admin.messages.recipient"),
			templates.T(loc, "field.subject"),
			templates.T(loc, "admin.messages.sender"),
			templates.T(loc, "field.created"),
			templates.T(loc, "admin.messages.read"),
		},
		Empty: templates.T(loc, "messages.empty"),
	}
	for _, message := range messages {
		table.Rows = append(table.Rows, templates.Row{
			Cells: []templates.Cell{
				{Text: message.Recipient},
				{Text: message.Subject},
				{Text: message.Sender},
				{Text: message.CreatedAt.Format(timeLayout)},
				{Text: yesNo(loc, message.Read)},
			},
			Actions: []templates.Action{
				{Label: templates.T(loc, "action.delete"), Href: routepath.AdminMessageDeleteFor(message.ID), Post: true, Danger: true},
			},
		})
	}
	broadcast := templates.Form{
		Action: routepath.AdminMessages,
		Submit: templates.T(loc, "admin.messages.send"),
		Errors: errs,
		Fields: []templates.Field{
			{Name: "subject", Label: templates.T(loc, "field.subject"), Kind: templates.FieldText, Value: input.Subject, Required: true},
			{Name: "body", Label: templates.T(loc, "field.message"), Kind: templates.FieldTextarea, Value: input.Body, Required: true, Rows: 6},
			{Name: "recipients", Label: templates.T(loc, "admin.messages.recipients"), Kind: templates.FieldTextarea, Value: strings.Join(input.Recipients, "\n"), Rows: 3, Hint: templates.T(loc, "field.one_per_line")},
			{Name: "all", Label: templates.T(loc, "admin.messages.all"), Kind: templates.FieldCheckbox, Checked: input.All},
		},
	}
	h.page(w, r, status, templates.AdminView{
		Title: templates.T(loc, "admin.nav.messages"),
		Path:  routepath.AdminMessages,
		Sections: []templ.Component{
			templates.Heading(templates.T(loc, "admin.messages.broadcast"), templates.T(loc, "admin.messages.retention")),
			templates.FormView(broadcast),
			templates.TableView(table),
		},
	})
}

func (h handlers) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	input := inbox.BroadcastInput{
		Subject:    values.String("subject"),
		Body:       values.Raw("body"),
		Recipients: splitRecipients(values.Raw("recipients")),
		All:        values.Bool("all"),
	}
	if user, ok := h.deps.User(r); ok {
		input.Sender = user.Name
	}
	if _, err := h.deps.Inbox.Broadcast(r.Context(), input); err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			h.renderMessages(w, r, http.StatusUnprocessableEntity, input, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.broadcast_sent", routepath.AdminMessages)
}

// splitRecipients accepts addresses separated by newlines or commas.
func splitRecipients(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (h handlers) handleMessageDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.Inbox.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.message_deleted", routepath.AdminMessages)
}
