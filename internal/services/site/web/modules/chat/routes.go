package chat

import (
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

func registerUserRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.AppChat, h.handleUserChat)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppChat, h.handleUserSend)
	mux.Handle(http.MethodGet+" "+routepath.AppChatSocket, h.userSocket())
	mux.HandleFunc(routepath.AppChat+"/{rest...}", h.handleNotFound)
}

func registerAdminRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminChat, h.handleConsole)
	mux.HandleFunc(http.MethodGet+" "+routepath.AdminChatThread, h.handleThread)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminChatThread, h.handleSupportReply)
	mux.HandleFunc(http.MethodPost+" "+routepath.AdminChatDelete, h.handleDelete)
	mux.Handle(http.MethodGet+" "+routepath.AdminChatSocket, h.supportSocket())
	mux.HandleFunc(routepath.AdminChat+"/{rest...}", h.handleNotFound)
}
