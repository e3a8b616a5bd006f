// Package chat serves the support chat: the user widget, the admin console
// and the live-update websocket both sides listen on.
package chat

import (
	"errors"
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// Module provides the chat routes.
type Module struct{}

// New returns a chat module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "chat" }

// Mount wires the user and support chat handlers.
func (Module) Mount(deps module.Dependencies) ([]module.Mount, error) {
	if deps.Chat == nil {
		return nil, errors.New("chat module requires the chat service")
	}
	h := newHandlers(deps)
	userMux := http.NewServeMux()
	registerUserRoutes(userMux, h)
	adminMux := http.NewServeMux()
	registerAdminRoutes(adminMux, h)
	return []module.Mount{
		{Prefix: routepath.AppChat, Access: module.AccessUser, Handler: userMux},
		{Prefix: routepath.AppChat + "/", Access: module.AccessUser, Handler: userMux},
		{Prefix: routepath.AdminChat, Access: module.AccessAdmin, Handler: adminMux},
		{Prefix: routepath.AdminChat + "/", Access: module.AccessAdmin, Handler: adminMux},
	}, nil
}
