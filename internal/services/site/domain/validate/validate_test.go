package validate

import (
	"strings"
	"testing"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Mobile Banking App":    "mobile-banking-app",
		"  --Hello,  World!-- ": "hello-world",
		"Café 2.0":              "caf-2-0",
		"":                      "",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
	long := Slugify("a-" + strings.Repeat("b", 100))
	if len(long) > MaxSlugLength {
		t.Fatalf("slug length = %d", len(long))
	}
}

func TestFieldChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		field string
	}{
		{name: "required", err: Required("name", "  "), field: "name"},
		{name: "slug uppercase", err: Slug("slug", "Apps"), field: "slug"},
		{name: "slug empty", err: Slug("slug", ""), field: "slug"},
		{name: "slug reserved", err: Slug("slug", "new"), field: "slug"},
		{name: "username short", err: Username("username", "ab"), field: "username"},
		{name: "email", err: Email("email", "not-an-email"), field: "email"},
		{name: "email display name", err: Email("email", "Ann <ann@example.com>"), field: "email"},
		{name: "url scheme", err: URL("url", "ftp://example.com"), field: "url"},
		{name: "url protocol relative", err: URL("url", "//evil.test"), field: "url"},
		{name: "too long", err: MaxLen("body", "abcd", 3), field: "body"},
	}
	for _, tc := range tests {
		if !apperrors.IsKind(tc.err, apperrors.KindInvalidInput) || apperrors.FieldOf(tc.err) != tc.field {
			t.Fatalf("%s: err = %v, want invalid %s", tc.name, tc.err, tc.field)
		}
	}

	for _, err := range []error{
		Required("name", "Ann"),
		Slug("slug", "mobile-app-2"),
		Username("username", "ann.lee_1"),
		Email("email", "ann@example.com"),
		URL("url", "https://example.com/app"),
		URL("url", "/contact"),
		URL("url", ""),
		MaxLen("body", "abc", 3),
	} {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestFirst(t *testing.T) {
	t.Parallel()

	err := First(nil, Required("a", ""), Required("b", ""))
	if apperrors.FieldOf(err) != "a" {
		t.Fatalf("First = %v", err)
	}
	if First() != nil {
		t.Fatal("expected nil")
	}
}
