// Package account serves the signed-in user's profile, plan and inbox.
package account

import (
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// Module provides the account routes.
type Module struct{}

// New returns an account module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "account" }

// Mount wires the account route handlers.
func (Module) Mount(deps module.Dependencies) ([]module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(deps))
	return []module.Mount{{Prefix: routepath.AppPrefix, Access: module.AccessUser, Handler: mux}}, nil
}
