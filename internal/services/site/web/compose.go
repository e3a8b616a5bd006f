package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/requestmeta"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/sessioncookie"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/weberror"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

var errAdminOnly = apperrors.EK(apperrors.KindForbidden, "error.forbidden", "administrator access required")

// compose mounts every module on one mux and wraps each mount with the
// guard of its access group.
func compose(deps module.Dependencies, modules []module.Module) (http.Handler, error) {
	root := http.NewServeMux()
	seen := make(map[string]string)
	for _, feature := range modules {
		if feature == nil {
			return nil, fmt.Errorf("module is nil")
		}
		mounts, err := feature.Mount(deps)
		if err != nil {
			return nil, fmt.Errorf("mount module %q: %w", feature.ID(), err)
		}
		for _, mount := range mounts {
			if err := mountModule(root, feature.ID(), mount, deps, seen); err != nil {
				return nil, err
			}
		}
	}
	return requireCookieSessionSameOrigin(deps.SchemePolicy)(root), nil
}

func mountModule(root *http.ServeMux, id string, mount module.Mount, deps module.Dependencies, seen map[string]string) error {
	prefix := strings.TrimSpace(mount.Prefix)
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("mount module %q: prefix %q must start with /", id, mount.Prefix)
	}
	if mount.Handler == nil {
		return fmt.Errorf("mount module %q: handler is required", id)
	}
	if previous, ok := seen[prefix]; ok {
		return fmt.Errorf("module %q duplicates prefix %q owned by module %q", id, prefix, previous)
	}

	handler := mount.Handler
	switch mount.Access {
	case module.AccessPublic:
		if isUserPrefix(prefix) || isAdminPrefix(prefix) {
			return fmt.Errorf("module %q has protected prefix %q in public group", id, prefix)
		}
	case module.AccessUser:
		if !isUserPrefix(prefix) {
			return fmt.Errorf("module %q must mount user routes under %s, got %q", id, routepath.AppPrefix, prefix)
		}
		handler = requireUser(deps)(handler)
	case module.AccessAdmin:
		if !isAdminPrefix(prefix) {
			return fmt.Errorf("module %q must mount admin routes under %s, got %q", id, routepath.AdminPrefix, prefix)
		}
		handler = requireAdmin(deps)(handler)
	default:
		return fmt.Errorf("module %q: unknown access %d", id, mount.Access)
	}
	seen[prefix] = id
	root.Handle(prefix, handler)
	return nil
}

func isUserPrefix(prefix string) bool {
	return strings.HasPrefix(prefix, routepath.AppPrefix) || prefix == strings.TrimSuffix(routepath.AppPrefix, "/")
}

func isAdminPrefix(prefix string) bool {
	return strings.HasPrefix(prefix, routepath.AdminPrefix) || prefix == strings.TrimSuffix(routepath.AdminPrefix, "/")
}

// loginRedirect sends the visitor to the login page, returning here after.
func loginRedirect(w http.ResponseWriter, r *http.Request) {
	target := routepath.Login + "?next=" + url.QueryEscape(r.URL.RequestURI())
	if httpx.IsMutation(r) {
		httpx.SeeOther(w, r, target)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func requireUser(deps module.Dependencies) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !deps.Viewer(r).SignedIn() {
				loginRedirect(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requireAdmin(deps module.Dependencies) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := deps.Viewer(r)
			if !viewer.SignedIn() {
				loginRedirect(w, r)
				return
			}
			if !viewer.IsAdmin {
				weberror.WriteModuleError(w, r, errAdminOnly, deps)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireCookieSessionSameOrigin rejects cross-site mutations that would ride
// on the session cookie.
func requireCookieSessionSameOrigin(policy requestmeta.SchemePolicy) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !httpx.IsMutation(r) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := sessioncookie.Read(r); ok && !requestmeta.HasSameOriginProof(r, policy) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
