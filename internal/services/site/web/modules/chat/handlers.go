package chat

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	chatdomain "github.com/louisbranch/agencysite/internal/services/site/domain/chat"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/weberror"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

const timeLayout = "2006-01-02 15:04"

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

func (h handlers) viewerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := h.deps.User(r)
	if !ok {
		h.writeError(w, r, apperrors.EK(apperrors.KindUnauthorized, "error.session_invalid", "no signed-in user"))
		return "", false
	}
	return user.Email, true
}

// loadOrEmpty returns the conversation, or an empty one when none exists.
func (h handlers) loadOrEmpty(r *http.Request, conversationID string) (chatdomain.Conversation, error) {
	conversation, err := h.deps.Chat.Conversation(r.Context(), conversationID)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return chatdomain.Conversation{ID: conversationID}, nil
	}
	return conversation, err
}

func bodyForm(loc templates.Localizer, action string, body string, errs form.Errors) templates.Form {
	return templates.Form{
		Action: action,
		Submit: templates.T(loc, "chat.send"),
		Errors: errs,
		Fields: []templates.Field{
			{Name: "body", Label: templates.T(loc, "chat.message"), Kind: templates.FieldTextarea, Value: body, Required: true, Rows: 3},
		},
	}
}

func (h handlers) handleUserChat(w http.ResponseWriter, r *http.Request) {
	email, ok := h.viewerEmail(w, r)
	if !ok {
		return
	}
	h.renderUserChat(w, r, http.StatusOK, email, "", nil)
}

func (h handlers) renderUserChat(w http.ResponseWriter, r *http.Request, status int, email string, body string, errs form.Errors) {
	conversation, err := h.loadOrEmpty(r, email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if conversation.Unread(chatdomain.SenderUser) > 0 {
		if conversation, err = h.deps.Chat.MarkAsRead(r.Context(), email, chatdomain.SenderUser); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	loc, _ := pagerender.Localizer(w, r)
	title := templates.T(loc, "chat.title")
	view := templates.ChatView{
		Title:        title,
		Conversation: conversation,
		Reader:       chatdomain.SenderUser,
		Form:         bodyForm(loc, routepath.AppChat, body, errs),
		SocketURL:    routepath.AppChatSocket,
	}
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Status: status, Body: templates.Chat(view, loc)}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleUserSend(w http.ResponseWriter, r *http.Request) {
	email, ok := h.viewerEmail(w, r)
	if !ok {
		return
	}
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body := values.String("body")
	if _, err := h.deps.Chat.SendMessage(r.Context(), email, chatdomain.SenderUser, body); err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			h.renderUserChat(w, r, http.StatusUnprocessableEntity, email, body, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	httpx.SeeOther(w, r, routepath.AppChat)
}

func (h handlers) handleConsole(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.deps.Chat.ListConversations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	table := templates.Table{
		Columns: []string{
			templates.T(loc, "field.name"),
			templates.T(loc, "field.email"),
			templates.T(loc, "chat.messages"),
			templates.T(loc, "chat.unread"),
			templates.T(loc, "field.updated"),
		},
		Empty: templates.T(loc, "chat.no_conversations"),
	}
	for _, summary := range summaries {
		table.Rows = append(table.Rows, templates.Row{
			Cells: []templates.Cell{
				{Text: summary.UserName, Href: routepath.AdminChatFor(summary.ID)},
				{Text: summary.ID},
				{Text: strconv.Itoa(len(summary.Messages))},
				{Text: strconv.Itoa(summary.UnreadForSupport)},
				{Text: summary.UpdatedAt.Format(timeLayout)},
			},
			Actions: []templates.Action{
				{Label: templates.T(loc, "action.open"), Href: routepath.AdminChatFor(summary.ID)},
				{Label: templates.T(loc, "action.delete"), Href: routepath.WithSuffix(routepath.AdminChatFor(summary.ID), "delete"), Post: true, Danger: true},
			},
		})
	}
	title := templates.T(loc, "admin.nav.chat")
	body := templates.Admin(templates.AdminView{
		Title:    title,
		Path:     routepath.AdminChat,
		Sections: []templ.Component{templates.TableView(table)},
	}, loc)
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Body: body}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleThread(w http.ResponseWriter, r *http.Request) {
	h.renderThread(w, r, http.StatusOK, r.PathValue("id"), "", nil)
}

func (h handlers) renderThread(w http.ResponseWriter, r *http.Request, status int, conversationID string, body string, errs form.Errors) {
	conversation, err := h.deps.Chat.Conversation(r.Context(), conversationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if conversation.Unread(chatdomain.SenderSupport) > 0 {
		if conversation, err = h.deps.Chat.MarkAsRead(r.Context(), conversation.ID, chatdomain.SenderSupport); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	loc, _ := pagerender.Localizer(w, r)
	title := templates.T(loc, "chat.with", conversation.UserName)
	thread := templates.Chat(templates.ChatView{
		Title:        conversation.ID,
		Conversation: conversation,
		Reader:       chatdomain.SenderSupport,
		Form:         bodyForm(loc, routepath.AdminChatFor(conversation.ID), body, errs),
		SocketURL:    routepath.AdminChatSocketFor(conversation.ID),
	}, loc)
	page := templates.Admin(templates.AdminView{
		Title: title,
		Path:  routepath.AdminChat,
		Links: []templates.Action{
			{Label: templates.T(loc, "action.back"), Href: routepath.AdminChat},
			{Label: templates.T(loc, "action.delete"), Href: routepath.WithSuffix(routepath.AdminChatFor(conversation.ID), "delete"), Post: true, Danger: true},
		},
		Sections: []templ.Component{thread},
	}, loc)
	if err := pagerender.WritePage(w, r, h.deps, pagerender.Page{Title: title, Status: status, Body: page}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleSupportReply(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body := values.String("body")
	if _, err := h.deps.Chat.SendMessage(r.Context(), conversationID, chatdomain.SenderSupport, body); err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			h.renderThread(w, r, http.StatusUnprocessableEntity, conversationID, body, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	httpx.SeeOther(w, r, routepath.AdminChatFor(conversationID))
}

func (h handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.Chat.DeleteConversations(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	flash.Write(w, r, flash.Success("flash.conversation_deleted"), h.deps.SchemePolicy)
	httpx.SeeOther(w, r, routepath.AdminChat)
}
