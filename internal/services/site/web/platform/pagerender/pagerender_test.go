package pagerender

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
)

func TestWritePageRendersLayoutAndFlash(t *testing.T) {
	t.Parallel()

	first := httptest.NewRecorder()
	flash.Write(first, httptest.NewRequest(http.MethodPost, "/", nil), flash.Success("flash.saved"), module.Dependencies{}.SchemePolicy)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	for _, cookie := range first.Result().Cookies() {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>page body</p>")
		return err
	})
	err := WritePage(rec, req, module.Dependencies{
		ResolveViewer: func(*http.Request) module.Viewer { return module.Viewer{Email: "ann@example.com", Name: "Ann"} },
	}, Page{Title: "About", Status: http.StatusAccepted, Body: body})
	if err != nil {
		t.Fatalf("write page: %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	got := rec.Body.String()
	for _, want := range []string{"<p>page body</p>", "toast-success", "Ann", `aria-current="page"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("page missing %q:\n%s", want, got)
		}
	}
	cleared := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == flash.CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("flash cookie was not cleared")
	}
}
