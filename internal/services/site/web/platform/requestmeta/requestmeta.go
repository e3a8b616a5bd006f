// Package requestmeta resolves request scheme and same-origin proof.
package requestmeta

import (
	"net/http"
	"net/url"
	"strings"
)

// SchemePolicy controls how the request scheme is resolved.
//
// X-Forwarded-Proto is only honored when TrustForwardedProto is set, since
// clients can send it directly.
type SchemePolicy struct {
	TrustForwardedProto bool
}

// IsHTTPS reports whether r should be treated as HTTPS under policy.
func IsHTTPS(r *http.Request, policy SchemePolicy) bool {
	return scheme(r, policy) == "https"
}

// HasSameOriginProof reports whether the Origin header, or the Referer when
// Origin is absent, names the host serving r.
func HasSameOriginProof(r *http.Request, policy SchemePolicy) bool {
	if r == nil {
		return false
	}
	wantScheme := scheme(r, policy)
	wantHost, wantPort := hostParts(r.Host)
	if wantHost == "" {
		return false
	}
	if wantPort == "" {
		wantPort = defaultPort(wantScheme)
	}

	source := strings.TrimSpace(r.Header.Get("Origin"))
	if source == "" {
		source = strings.TrimSpace(r.Header.Get("Referer"))
	}
	if source == "" {
		return false
	}
	parsed, err := url.Parse(source)
	if err != nil {
		return false
	}
	gotScheme := strings.ToLower(parsed.Scheme)
	if gotScheme == "" || gotScheme != wantScheme {
		return false
	}
	if strings.ToLower(parsed.Hostname()) != wantHost {
		return false
	}
	gotPort := parsed.Port()
	if gotPort == "" {
		gotPort = defaultPort(gotScheme)
	}
	return gotPort != "" && gotPort == wantPort
}

func scheme(r *http.Request, policy SchemePolicy) string {
	if r == nil {
		return ""
	}
	if policy.TrustForwardedProto {
		if forwarded := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); forwarded == "http" || forwarded == "https" {
			return forwarded
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func defaultPort(scheme string) string {
	switch scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	default:
		return ""
	}
}

func hostParts(raw string) (string, string) {
	parsed, err := url.Parse("//" + strings.TrimSpace(raw))
	if err != nil {
		return "", ""
	}
	return strings.ToLower(parsed.Hostname()), parsed.Port()
}

// Cookie builds a site-wide HttpOnly Lax cookie, Secure on HTTPS requests.
// A negative maxAge expires it.
func Cookie(r *http.Request, policy SchemePolicy, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   IsHTTPS(r, policy),
		SameSite: http.SameSiteLaxMode,
	}
}
