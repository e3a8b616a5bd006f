// Package validate holds the input checks shared by the site domain packages.
// Every failure is a field-scoped invalid-input error so forms can render it
// next to the offending input.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
)

// MaxSlugLength bounds slugs.
const MaxSlugLength = 80

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]{1,80}$`)
	slugStrip       = regexp.MustCompile(`[^a-z0-9]+`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.\-]{3,32}$`)
)

// Invalid builds a field error with a localization key.
func Invalid(field string, key string, format string, args ...any) error {
	return apperrors.Field(apperrors.KindInvalidInput, field, key, fmt.Sprintf(format, args...))
}

// Required rejects blank values.
func Required(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field, "error.required", "%s is required", field)
	}
	return nil
}

// MaxLen rejects values longer than max characters.
func MaxLen(field string, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return Invalid(field, "error.too_long", "%s must be at most %d characters", field, max)
	}
	return nil
}

// Slug rejects values outside lowercase a-z, 0-9 and dashes.
func Slug(field string, value string) error {
	if !slugPattern.MatchString(value) {
		return Invalid(field, "error.slug_invalid", "%s must be 1-%d lowercase letters, digits or dashes", field, MaxSlugLength)
	}
	// "new" collides with the admin create routes.
	if value == ReservedSlug {
		return Invalid(field, "error.slug_invalid", "%s %q is reserved", field, value)
	}
	return nil
}

// ReservedSlug is never a valid slug.
const ReservedSlug = "new"

// Slugify derives a slug from a title.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

// Username rejects usernames outside the allowed pattern.
func Username(field string, value string) error {
	if !usernamePattern.MatchString(value) {
		return Invalid(field, "error.username_invalid", "username must be 3-32 lowercase letters, digits, dot, dash or underscore")
	}
	return nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Email rejects malformed addresses.
func Email(field string, value string) error {
	if value == "" {
		return Invalid(field, "error.required", "%s is required", field)
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return Invalid(field, "error.email_invalid", "%s is not a valid email address", field)
	}
	return nil
}

// URL rejects values that are not absolute http(s) URLs or site paths.
// Blank values pass.
func URL(field string, value string) error {
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//") {
		return nil
	}
	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Invalid(field, "error.url_invalid", "%s must be an http(s) URL", field)
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
