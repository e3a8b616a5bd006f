// Package auth serves login, signup and logout.
package auth

import (
	"errors"
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

// Module provides the authentication routes.
type Module struct{}

// New returns an auth module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "auth" }

// Mount wires the auth route handlers.
func (Module) Mount(deps module.Dependencies) ([]module.Mount, error) {
	if deps.Accounts == nil || deps.Sessions == nil {
		return nil, errors.New("auth module requires accounts and sessions")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(deps))
	mounts := make([]module.Mount, 0, 3)
	for _, prefix := range []string{routepath.Login, routepath.Signup, routepath.Logout} {
		mounts = append(mounts, module.Mount{Prefix: prefix, Access: module.AccessPublic, Handler: mux})
	}
	return mounts, nil
}
