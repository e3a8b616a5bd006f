// Package sessioncookie reads and writes the signed-in session token.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/agencysite/internal/services/site/web/platform/requestmeta"
)

// Name is the session cookie name.
const Name = "site_session"

// Read returns the session token when the request carries one.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(cookie.Value)
	return token, token != ""
}

// Write stores token until expires. A past expiry clears the cookie.
func Write(w http.ResponseWriter, r *http.Request, token string, expires time.Time, policy requestmeta.SchemePolicy) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		Clear(w, r, policy)
		return
	}
	c := requestmeta.Cookie(r, policy, Name, strings.TrimSpace(token), maxAge)
	c.Expires = expires
	http.SetCookie(w, c)
}

// Clear expires the session cookie.
func Clear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	http.SetCookie(w, requestmeta.Cookie(r, policy, Name, "", -1))
}
