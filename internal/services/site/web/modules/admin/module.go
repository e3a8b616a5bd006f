// Package admin serves the administration console.
package admin

import (
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// Module provides the admin routes.
type Module struct{}

// New returns an admin module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "admin" }

// Mount wires the admin route handlers.
func (Module) Mount(deps module.Dependencies) ([]module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(deps))
	return []module.Mount{{Prefix: routepath.AdminPrefix, Access: module.AccessAdmin, Handler: mux}}, nil
}
