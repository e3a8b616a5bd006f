package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapsKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "invalid", err: E(KindInvalidInput, "bad"), want: http.StatusUnprocessableEntity},
		{name: "unauthorized", err: E(KindUnauthorized, "who"), want: http.StatusUnauthorized},
		{name: "forbidden", err: E(KindForbidden, "no"), want: http.StatusForbidden},
		{name: "not found", err: E(KindNotFound, "gone"), want: http.StatusNotFound},
		{name: "conflict", err: E(KindConflict, "dup"), want: http.StatusConflict},
		{name: "unavailable", err: E(KindUnavailable, "down"), want: http.StatusServiceUnavailable},
		{name: "untyped", err: stderrors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped typed", err: fmt.Errorf("outer: %w", E(KindNotFound, "gone")), want: http.StatusNotFound},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFieldErrorCarriesFieldAndKey(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("signup: %w", Field(KindConflict, "email", "error.email_taken", "email already registered"))
	if got := FieldOf(err); got != "email" {
		t.Fatalf("FieldOf() = %q, want email", got)
	}
	if got := LocalizationKey(err); got != "error.email_taken" {
		t.Fatalf("LocalizationKey() = %q", got)
	}
	if !IsKind(err, KindConflict) {
		t.Fatal("expected conflict kind")
	}
}

func TestIsMatchesKindAndOptionalKey(t *testing.T) {
	t.Parallel()

	err := EK(KindUnauthorized, "error.invalid_credentials", "invalid credentials")
	if !stderrors.Is(err, &Error{Kind: KindUnauthorized}) {
		t.Fatal("expected kind-only match")
	}
	if !stderrors.Is(err, &Error{Kind: KindUnauthorized, Key: "error.invalid_credentials"}) {
		t.Fatal("expected kind+key match")
	}
	if stderrors.Is(err, &Error{Kind: KindUnauthorized, Key: "other"}) {
		t.Fatal("expected key mismatch")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	err := Wrap(KindUnavailable, "store write", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if KindOf(stderrors.New("plain")) != KindUnknown {
		t.Fatal("expected unknown kind for plain error")
	}
}
