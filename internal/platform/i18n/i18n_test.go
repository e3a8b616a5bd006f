package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value  string
		want   string
		wantOK bool
	}{
		{value: "pt-BR", want: "pt-BR", wantOK: true},
		{value: "pt", want: "pt-BR", wantOK: true},
		{value: "en", want: "en-US", wantOK: true},
		{value: "", want: "en-US", wantOK: false},
		{value: "not a tag!", want: "en-US", wantOK: false},
	}
	for _, tc := range tests {
		got, ok := ParseTag(tc.value)
		if ok != tc.wantOK || got.String() != tc.want {
			t.Fatalf("ParseTag(%q) = %s, %v; want %s, %v", tc.value, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestMatchTagsPrefersSupportedLanguage(t *testing.T) {
	t.Parallel()

	got := MatchTags([]language.Tag{language.MustParse("pt"), language.English})
	if got.String() != "pt-BR" {
		t.Fatalf("MatchTags = %s, want pt-BR", got)
	}
	if got := MatchTags(nil); got != DefaultTag() {
		t.Fatalf("MatchTags(nil) = %s", got)
	}
}

func TestPrinterTranslates(t *testing.T) {
	t.Parallel()

	printer := Printer(language.MustParse("pt-BR"))
	if got := printer.Sprintf("nav.login"); got == "nav.login" {
		t.Fatal("expected translated nav.login")
	}
}
