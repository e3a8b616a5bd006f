package id

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[a-z2-7]{26}$`)

func TestNewIDIsLowercaseBase32UUIDv4(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for range 50 {
		got, err := NewID()
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if !idPattern.MatchString(got) {
			t.Fatalf("id %q does not match %s", got, idPattern)
		}
		if seen[got] {
			t.Fatalf("duplicate id %q", got)
		}
		seen[got] = true

		raw, err := encoding.DecodeString(strings.ToUpper(got))
		if err != nil {
			t.Fatalf("decode %q: %v", got, err)
		}
		parsed, err := uuid.FromBytes(raw)
		if err != nil {
			t.Fatalf("uuid from %q: %v", got, err)
		}
		if parsed.Version() != 4 || parsed.Variant() != uuid.RFC4122 {
			t.Fatalf("uuid %s version %d variant %s", parsed, parsed.Version(), parsed.Variant())
		}
	}
}

func TestNewTimeOrderedIDIncreases(t *testing.T) {
	t.Parallel()

	prev := ""
	for range 20 {
		got, err := NewTimeOrderedID()
		if err != nil {
			t.Fatalf("NewTimeOrderedID: %v", err)
		}
		parsed, err := uuid.Parse(got)
		if err != nil || parsed.Version() != 7 {
			t.Fatalf("id %q is not a v7 uuid (err %v)", got, err)
		}
		if got <= prev {
			t.Fatalf("id %q does not sort after %q", got, prev)
		}
		prev = got
	}
}
