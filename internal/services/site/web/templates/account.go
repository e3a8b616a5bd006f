package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/domain/chat"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inbox"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// ProfileView is the account page data.
type ProfileView struct {
	User         accounts.User
	Plan         pages.Plan
	Upgrades     []pages.Plan
	ProfileForm  Form
	PasswordForm Form
}

// Profile renders the account page with profile, password and plan panels.
func Profile(view ProfileView, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", T(loc, "account.title"))
		h.open("p", "class", "muted")
		h.text(view.User.Email + " · @" + view.User.Username)
		h.close("p")

		h.open("section")
		h.elem("h2", T(loc, "account.profile"))
		writeForm(h, view.ProfileForm)
		h.close("section")

		h.open("section")
		h.elem("h2", T(loc, "account.password"))
		writeForm(h, view.PasswordForm)
		h.close("section")

		h.open("section")
		h.elem("h2", T(loc, "account.plan"))
		name := view.Plan.Name
		if name == "" {
			name = view.User.Plan
		}
		h.elem("p", T(loc, "account.current_plan", name))
		if len(view.Upgrades) == 0 {
			h.elem("p", T(loc, "account.top_plan"), "class", "muted")
		}
		for _, plan := range view.Upgrades {
			h.open("form", "method", "post", "action", routepath.AppUpgrade, "class", "inline")
			h.open("input", "type", "hidden", "name", "plan", "value", plan.ID)
			h.elem("button", T(loc, "account.upgrade_to", plan.Name, Money(loc, plan.MonthlyPriceCents)), "type", "submit", "class", "button")
			h.close("form")
		}
		h.close("section")
	})
}

// Messages renders a user's inbox.
func Messages(messages []inbox.Message, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", T(loc, "messages.title"))
		if len(messages) == 0 {
			h.elem("p", T(loc, "messages.empty"), "class", "empty")
			return
		}
		h.open("ul", "class", "inbox")
		for _, message := range messages {
			class := "message"
			if !message.Read {
				class += " message-unread"
			}
			h.open("li", "class", class)
			h.elem("h3", message.Subject)
			h.elem("p", T(loc, "messages.from", message.Sender, message.CreatedAt.Format("2006-01-02 15:04")), "class", "muted")
			h.paragraphs(message.Body)
			if !message.Read {
				writeActionButton(h, routepath.MessageRead(message.ID), T(loc, "messages.mark_read"), false)
			}
			h.close("li")
		}
		h.close("ul")
	})
}

// ChatView is a conversation with its reply form.
type ChatView struct {
	Title        string
	Conversation chat.Conversation
	// Reader decides which side's messages are "mine".
	Reader chat.Sender
	Form   Form
	// SocketURL enables live updates when set.
	SocketURL string
}

// Chat renders a conversation thread and reply form.
func Chat(view ChatView, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.elem("h1", view.Title)
		h.open("ol", "id", "chat-thread", "class", "chat-thread", "data-reader", string(view.Reader))
		if len(view.Conversation.Messages) == 0 {
			h.elem("li", T(loc, "chat.empty"), "class", "empty")
		}
		for _, message := range view.Conversation.Messages {
			class := "chat-message"
			if message.Sender == view.Reader {
				class += " chat-mine"
			}
			h.open("li", "class", class)
			h.elem("span", T(loc, "chat.sender."+string(message.Sender)), "class", "chat-sender")
			h.elem("p", message.Body)
			h.elem("time", message.CreatedAt.Format("2006-01-02 15:04"), "datetime", message.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
			h.close("li")
		}
		h.close("ol")
		writeForm(h, view.Form)
		if view.SocketURL != "" {
			h.open("script", "data-socket", view.SocketURL)
			h.raw(chatScript)
			h.close("script")
		}
	})
}

const chatScript = `(function () {
  var script = document.currentScript;
  var thread = document.getElementById("chat-thread");
  if (!thread || !window.WebSocket) { return; }
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var socket = new WebSocket(scheme + location.host + script.dataset.socket);
  var reader = thread.dataset.reader;
  socket.onmessage = function (event) {
    var frame = JSON.parse(event.data);
    if (frame.type !== "conversation" || !frame.conversation) { return; }
    thread.textContent = "";
    (frame.conversation.messages || []).forEach(function (message) {
      var item = document.createElement("li");
      item.className = "chat-message" + (message.sender === reader ? " chat-mine" : "");
      var body = document.createElement("p");
      body.textContent = message.body;
      item.appendChild(body);
      thread.appendChild(item);
    });
  };
})();`
