package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
)

func renderString(t *testing.T, ctx context.Context, component templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestLayoutWrapsChildrenAndEscapes(t *testing.T) {
	t.Parallel()

	body := component(func(_ context.Context, h *htmlWriter) {
		h.elem("p", "<script>alert(1)</script>")
	})
	ctx := templ.WithChildren(context.Background(), body)
	got := renderString(t, ctx, Layout(LayoutData{
		Title:  "About",
		Lang:   "en-US",
		Site:   pages.SiteSettings{SiteName: "Agency & Co"},
		Viewer: module.Viewer{Email: "ann@example.com", Name: "Ann", IsAdmin: true, UnreadMessages: 2},
		Toast:  &Toast{Kind: "success", Message: "Saved"},
	}))

	for _, want := range []string{
		"<title>About | Agency &amp; Co</title>",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		`class="toast toast-success"`,
		`href="/admin/"`,
		`<span class="badge">2</span>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("layout missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<script>alert") {
		t.Fatal("body text was not escaped")
	}
}

func TestFormViewRendersErrorsAndValues(t *testing.T) {
	t.Parallel()

	got := renderString(t, context.Background(), FormView(Form{
		Action: "/signup",
		Submit: "Create",
		Fields: []Field{
			{Name: "email", Label: "Email", Kind: FieldEmail, Value: `a"b@example.com`, Required: true},
			{Name: "bio", Label: "Bio", Kind: FieldTextarea, Value: "<b>hi</b>"},
			{Name: "role", Label: "Role", Kind: FieldSelect, Value: "admin", Options: []Option{{Value: "user", Label: "User"}, {Value: "admin", Label: "Admin"}}},
			{Name: "featured", Label: "Featured", Kind: FieldCheckbox, Checked: true},
		},
		Errors: map[string]string{"email": "Taken", "": "Fix the errors"},
	}))

	for _, want := range []string{
		`action="/signup"`,
		`value="a&#34;b@example.com"`,
		`&lt;b&gt;hi&lt;/b&gt;`,
		`<option value="admin" selected>Admin</option>`,
		`name="featured" value="on" checked`,
		`<p class="field-error" role="alert">Taken</p>`,
		`<p class="form-error" role="alert">Fix the errors</p>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("form missing %q in:\n%s", want, got)
		}
	}
}

func TestUnsafeURLsAreSanitized(t *testing.T) {
	t.Parallel()

	got := renderString(t, context.Background(), AppDetail(catalog.App{Name: "X", URL: "javascript:alert(1)"}, nil))
	if strings.Contains(got, "javascript:") {
		t.Fatalf("unsafe url rendered: %s", got)
	}
}

func TestTableViewEmptyState(t *testing.T) {
	t.Parallel()

	got := renderString(t, context.Background(), TableView(Table{Columns: []string{"Name"}, Empty: "Nothing yet"}))
	if !strings.Contains(got, "Nothing yet") || strings.Contains(got, "<table") {
		t.Fatalf("empty table = %s", got)
	}
}

func TestStarsClampRating(t *testing.T) {
	t.Parallel()

	if got := stars(7); got != "★★★★★" {
		t.Fatalf("stars(7) = %q", got)
	}
	if got := stars(2); got != "★★☆☆☆" {
		t.Fatalf("stars(2) = %q", got)
	}
}
