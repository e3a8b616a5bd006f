// Package templates renders the site's HTML components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/currency"

	"github.com/louisbranch/agencysite/internal/services/site/web/platform/webi18n"
)

// Localizer renders localization keys.
type Localizer = webi18n.Localizer

// htmlWriter writes escaped markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, part := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, part)
	}
}

func (h *htmlWriter) text(value string) {
	h.raw(templ.EscapeString(value))
}

// open writes a start tag. attrs are name/value pairs; href and src values
// are sanitized as URLs and an empty value renders a bare attribute.
func (h *htmlWriter) open(tag string, attrs ...string) {
	h.raw("<", tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		switch name {
		case "href", "src", "action":
			value = string(templ.URL(value))
		}
		if value == "" && isBoolAttr(name) {
			h.raw(" ", name)
			continue
		}
		h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
	}
	h.raw(">")
}

func (h *htmlWriter) close(tag string) {
	h.raw("</", tag, ">")
}

// elem writes a whole element with escaped text content.
func (h *htmlWriter) elem(tag string, content string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(content)
	h.close(tag)
}

// paragraphs writes one <p> per blank-line separated block.
func (h *htmlWriter) paragraphs(body string) {
	for _, block := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			h.elem("p", block)
		}
	}
}

func (h *htmlWriter) list(items []string, attrs ...string) {
	if len(items) == 0 {
		return
	}
	h.open("ul", attrs...)
	for _, item := range items {
		h.elem("li", item)
	}
	h.close("ul")
}

func (h *htmlWriter) render(ctx context.Context, component templ.Component) {
	if h.err != nil || component == nil {
		return
	}
	h.err = component.Render(ctx, h.w)
}

func isBoolAttr(name string) bool {
	switch name {
	case "required", "checked", "selected", "disabled", "multiple", "hidden":
		return true
	default:
		return false
	}
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// T renders key for templates and handlers building view data.
func T(loc Localizer, key string, args ...any) string {
	return webi18n.T(loc, key, args...)
}

// Money formats cents as US dollars in the viewer's language.
func Money(loc Localizer, cents int64) string {
	amount := currency.Symbol(currency.USD.Amount(float64(cents) / 100))
	if loc == nil {
		return fmt.Sprintf("$%.2f", float64(cents)/100)
	}
	return loc.Sprintf("%v", amount)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
