// Package webi18n resolves the request language and its message printer.
package webi18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	platformi18n "github.com/louisbranch/agencysite/internal/platform/i18n"
)

// CookieName remembers an explicit language choice.
const CookieName = "site_lang"

// QueryParam switches the language for the current and later requests.
const QueryParam = "lang"

// Localizer renders localization keys.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Resolve picks the request language from the lang query parameter, then the
// language cookie, then Accept-Language. A valid query choice is persisted.
func Resolve(w http.ResponseWriter, r *http.Request) language.Tag {
	if r == nil {
		return platformi18n.DefaultTag()
	}
	if raw := r.URL.Query().Get(QueryParam); raw != "" {
		if tag, ok := platformi18n.ParseTag(raw); ok {
			if w != nil {
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    tag.String(),
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			return tag
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		if tag, ok := platformi18n.ParseTag(cookie.Value); ok {
			return tag
		}
	}
	if header := strings.TrimSpace(r.Header.Get("Accept-Language")); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil {
			return platformi18n.MatchTags(tags)
		}
	}
	return platformi18n.DefaultTag()
}

// Printer returns the printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return platformi18n.Printer(tag)
}

// T renders key with loc, or the key itself when loc is nil.
func T(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}
