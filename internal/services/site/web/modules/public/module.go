// Package public serves the marketing pages and public forms.
package public

import (
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// Module provides the public routes.
type Module struct{}

// New returns a public module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "public" }

// Mount wires the public route handlers.
func (Module) Mount(deps module.Dependencies) ([]module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(deps))
	return []module.Mount{{Prefix: routepath.Root, Access: module.AccessPublic, Handler: mux}}, nil
}
