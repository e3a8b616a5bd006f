// Package flash carries one-time toast notices across redirects.
//
// The cookie value is "<kind>:<key>", e.g. "success:flash.profile_saved".
package flash

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/louisbranch/agencysite/internal/services/site/web/platform/requestmeta"
)

// CookieName is the toast cookie.
const CookieName = "site_flash"

// Kind classifies toast presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Notice is a toast referencing a localization key.
type Notice struct {
	Kind Kind
	Key  string
}

// Success builds a success notice.
func Success(key string) Notice { return Notice{Kind: KindSuccess, Key: key} }

// Info builds an informational notice.
func Info(key string) Notice { return Notice{Kind: KindInfo, Key: key} }

// Error builds an error notice.
func Error(key string) Notice { return Notice{Kind: KindError, Key: key} }

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_]+)+$`)

func (n Notice) valid() bool {
	switch n.Kind {
	case KindSuccess, KindInfo, KindError:
		return keyPattern.MatchString(n.Key)
	}
	return false
}

// Write stores notice for the next page render. Invalid notices are dropped.
func Write(w http.ResponseWriter, r *http.Request, notice Notice, policy requestmeta.SchemePolicy) {
	if !notice.valid() {
		return
	}
	http.SetCookie(w, requestmeta.Cookie(r, policy, CookieName, string(notice.Kind)+":"+notice.Key, 0))
}

// ReadAndClear returns the pending notice and expires its cookie.
func ReadAndClear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Notice{}, false
	}
	http.SetCookie(w, requestmeta.Cookie(r, policy, CookieName, "", -1))

	kind, key, _ := strings.Cut(strings.TrimSpace(cookie.Value), ":")
	notice := Notice{Kind: Kind(kind), Key: key}
	if !notice.valid() {
		return Notice{}, false
	}
	return notice, true
}
