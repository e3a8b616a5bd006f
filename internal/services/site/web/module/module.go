// Package module defines the contracts shared by the site's web modules.
package module

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/domain/chat"
	"github.com/louisbranch/agencysite/internal/services/site/domain/files"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inbox"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/requestmeta"
)

// Access is the route-group a mount belongs to.
type Access int

const (
	// AccessPublic mounts are reachable by anyone.
	AccessPublic Access = iota
	// AccessUser mounts require a signed-in user.
	AccessUser
	// AccessAdmin mounts require an administrator.
	AccessAdmin
)

// Viewer is the signed-in user as the page chrome sees it. The zero value
// is an anonymous visitor.
type Viewer struct {
	Email          string
	Name           string
	Username       string
	AvatarURL      string
	Plan           string
	IsAdmin        bool
	UnreadMessages int
	UnreadChat     int
}

// SignedIn reports whether the viewer is authenticated.
func (v Viewer) SignedIn() bool {
	return v.Email != ""
}

// Dependencies carries the providers and request resolvers modules use.
type Dependencies struct {
	Pages     *pages.Pages
	Catalog   *catalog.Catalog
	Accounts  *accounts.Service
	Sessions  *accounts.Sessions
	Chat      *chat.Service
	Inbox     *inbox.Service
	Files     *files.Service
	Inquiries *inquiries.Service

	Logger       *zap.Logger
	SchemePolicy requestmeta.SchemePolicy

	// ResolveViewer returns the current viewer, cached per request.
	ResolveViewer func(*http.Request) Viewer
	// ResolveUser returns the current user record, cached per request.
	ResolveUser func(*http.Request) (accounts.User, bool)
}

// Viewer resolves the request viewer, or an anonymous one.
func (d Dependencies) Viewer(r *http.Request) Viewer {
	if d.ResolveViewer == nil || r == nil {
		return Viewer{}
	}
	return d.ResolveViewer(r)
}

// User resolves the request user.
func (d Dependencies) User(r *http.Request) (accounts.User, bool) {
	if d.ResolveUser == nil || r == nil {
		return accounts.User{}, false
	}
	return d.ResolveUser(r)
}

// Mount is one handler registered under a path prefix.
type Mount struct {
	Prefix  string
	Access  Access
	Handler http.Handler
}

// Module is a feature area of the site.
type Module interface {
	ID() string
	Mount(Dependencies) ([]Mount, error)
}
