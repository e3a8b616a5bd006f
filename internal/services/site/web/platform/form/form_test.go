package form

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/webi18n"
)

func post(t *testing.T, values url.Values) Values {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	parsed, err := Parse(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return parsed
}

func TestValues(t *testing.T) {
	t.Parallel()

	v := post(t, url.Values{
		"name":     {"  Ann  "},
		"featured": {"on"},
		"rating":   {"4"},
		"bad":      {"four"},
		"price":    {"$1,250.10"},
		"features": {"fast\n\n  secure \r\ncheap"},
		"to":       {"a@example.com", " ", "b@example.com"},
	})

	if v.String("name") != "Ann" || !v.Bool("featured") || v.Bool("missing") {
		t.Fatal("string/bool mismatch")
	}
	if n, err := v.Int("rating"); err != nil || n != 4 {
		t.Fatalf("rating = %d, %v", n, err)
	}
	if _, err := v.Int("bad"); apperrors.FieldOf(err) != "bad" {
		t.Fatalf("bad int err = %v", err)
	}
	if cents, err := v.Cents("price"); err != nil || cents != 125010 {
		t.Fatalf("price = %d, %v", cents, err)
	}
	if diff := cmp.Diff([]string{"fast", "secure", "cheap"}, v.Lines("features")); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a@example.com", "b@example.com"}, v.All("to")); diff != "" {
		t.Fatalf("all mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldErrors(t *testing.T) {
	t.Parallel()

	loc := webi18n.Printer(webi18n.Resolve(nil, nil))
	errs, ok := FieldErrors(apperrors.Field(apperrors.KindConflict, "email", "error.conflict.email", "taken"), loc)
	if !ok || !errs.Has("email") || errs["email"] == "error.conflict.email" {
		t.Fatalf("errors = %v, %v", errs, ok)
	}
	if _, ok := FieldErrors(errors.New("boom"), loc); ok {
		t.Fatal("plain error should not map to a field")
	}
	if _, ok := FieldErrors(apperrors.Field(apperrors.KindNotFound, "x", "", "missing"), loc); ok {
		t.Fatal("not found should not map to a field")
	}
}
