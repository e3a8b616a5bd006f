package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/websocket"

	"github.com/louisbranch/agencysite/internal/services/site/app"
	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/domain/files"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/storage/memory"
	"github.com/louisbranch/agencysite/internal/services/site/web"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/sessioncookie"
)

type testSite struct {
	site   *app.Site
	server *httptest.Server
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	site := app.NewSite(memory.New(nil), nil, app.SiteConfig{
		SeedDemo:      true,
		AdminEmail:    accounts.DefaultAdminEmail,
		AdminPassword: accounts.DefaultAdminPassword,
		BcryptCost:    bcrypt.MinCost,
	})
	if err := site.Load(context.Background()); err != nil {
		t.Fatalf("load site: %v", err)
	}
	sessions, err := accounts.NewSessions(accounts.SessionConfig{Secret: []byte("test-secret-0123456789")})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	handler, err := web.NewHandler(module.Dependencies{
		Pages:     site.Pages,
		Catalog:   site.Catalog,
		Accounts:  site.Accounts,
		Sessions:  sessions,
		Chat:      site.Chat,
		Inbox:     site.Inbox,
		Files:     site.Files,
		Inquiries: site.Inquiries,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &testSite{site: site, server: server}
}

// client returns a cookie-keeping client that does not follow redirects.
func (s *testSite) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *testSite) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(s.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (s *testSite) post(t *testing.T, c *http.Client, path string, origin string, values url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (s *testSite) login(t *testing.T, c *http.Client, identifier string, password string) *http.Response {
	t.Helper()
	resp, _ := s.post(t, c, "/login", s.server.URL, url.Values{"identifier": {identifier}, "password": {password}})
	return resp
}

func (s *testSite) signup(t *testing.T, c *http.Client, username string) {
	t.Helper()
	resp, body := s.post(t, c, "/signup", s.server.URL, url.Values{
		"name":     {"Test " + username},
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"correct-horse"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("signup status = %d, body = %s", resp.StatusCode, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestPublicPages(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.client(t)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{path: "/", status: http.StatusOK, want: "<!DOCTYPE html>"},
		{path: "/about", status: http.StatusOK, want: "<main"},
		{path: "/services", status: http.StatusOK, want: "<main"},
		{path: "/apps", status: http.StatusOK, want: "<main"},
		{path: "/pricing", status: http.StatusOK, want: "<main"},
		{path: "/up", status: http.StatusOK, want: `"status":"ok"`},
		{path: "/static/site.css", status: http.StatusOK, want: "--accent"},
		{path: "/services/missing", status: http.StatusNotFound, want: "<main"},
		{path: "/nowhere", status: http.StatusNotFound, want: "<main"},
	}
	for _, tt := range tests {
		resp, body := s.get(t, c, tt.path)
		if resp.StatusCode != tt.status {
			t.Fatalf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		if !strings.Contains(body, tt.want) {
			t.Fatalf("GET %s body missing %q", tt.path, tt.want)
		}
	}
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.client(t)

	if resp := s.login(t, c, "admin", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", resp.StatusCode)
	}
	if resp := s.login(t, c, "nobody", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", resp.StatusCode)
	}

	resp := s.login(t, c, "admin", accounts.DefaultAdminPassword)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/admin/" {
		t.Fatalf("login redirect = %q, want /admin/", got)
	}
	resp, body := s.get(t, c, "/admin/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "/admin/users") {
		t.Fatal("dashboard should link the users list")
	}

	resp, _ = s.post(t, c, "/logout", s.server.URL, nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("logout = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if resp, _ := s.get(t, c, "/admin/"); resp.StatusCode != http.StatusFound {
		t.Fatalf("after logout status = %d, want 302", resp.StatusCode)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	resp, body := s.post(t, s.client(t), "/signup", s.server.URL, url.Values{
		"name":     {"Copycat"},
		"username": {"copycat"},
		"email":    {accounts.DefaultAdminEmail},
		"password": {"correct-horse"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, `class="field-error"`) {
		t.Fatal("expected an inline field error")
	}
}

func TestRouteGuards(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)

	anonymous := s.client(t)
	resp, _ := s.get(t, anonymous, "/admin/users")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous admin status = %d, want 302", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/login?next=%2Fadmin%2Fusers" {
		t.Fatalf("redirect = %q", got)
	}
	if resp, _ := s.get(t, anonymous, "/app/profile"); resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous profile status = %d, want 302", resp.StatusCode)
	}

	user := s.client(t)
	s.signup(t, user, "dana")
	if resp, _ := s.get(t, user, "/app/profile"); resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", resp.StatusCode)
	}
	if resp, _ := s.get(t, user, "/admin/"); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin dashboard status = %d, want 403", resp.StatusCode)
	}
}

func TestCrossOriginMutationRejected(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.client(t)
	s.signup(t, c, "eve")

	resp, _ := s.post(t, c, "/app/profile", "https://evil.example", url.Values{"name": {"Mallory"}, "username": {"eve"}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("cross-origin status = %d, want 403", resp.StatusCode)
	}
	resp, _ = s.post(t, c, "/app/profile", "", url.Values{"name": {"Mallory"}, "username": {"eve"}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("missing origin status = %d, want 403", resp.StatusCode)
	}
	user, err := s.site.Accounts.User(context.Background(), "eve@example.com")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if user.Name != "Test eve" {
		t.Fatalf("name changed to %q", user.Name)
	}
}

func TestAdminEditsSiteSettings(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.client(t)
	s.login(t, c, "admin", accounts.DefaultAdminPassword)

	resp, body := s.get(t, c, "/admin/content/site")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `name="siteName"`) {
		t.Fatalf("editor status = %d", resp.StatusCode)
	}

	current, err := s.site.Pages.SiteSettings.Get(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	resp, body = s.post(t, c, "/admin/content/site", s.server.URL, url.Values{
		"siteName":   {"Renamed Agency"},
		"tagline":    {current.Tagline},
		"logoUrl":    {current.LogoURL},
		"footerText": {current.FooterText},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("save status = %d, body = %s", resp.StatusCode, body)
	}
	updated, err := s.site.Pages.SiteSettings.Get(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if updated.SiteName != "Renamed Agency" || updated.MaintenanceMode {
		t.Fatalf("settings = %+v", updated)
	}
	if _, body := s.get(t, c, "/"); !strings.Contains(body, "Renamed Agency") {
		t.Fatal("home page should show the new site name")
	}

	if resp, _ := s.get(t, c, "/admin/content/nope"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown page status = %d, want 404", resp.StatusCode)
	}
}

func TestContactInquiryIsStored(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.client(t)

	resp, _ := s.post(t, c, "/contact", "", url.Values{"name": {"Ana"}, "email": {"not-an-email"}, "message": {"Hi"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status = %d, want 422", resp.StatusCode)
	}
	resp, _ = s.post(t, c, "/contact", "", url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "subject": {"Project"}, "message": {"Hi"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	list, err := s.site.Inquiries.List(context.Background(), inquiries.KindContact)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Email != "ana@example.com" {
		t.Fatalf("inquiries = %+v", list)
	}
}

func TestFileDownload(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	file, err := s.site.Files.Upload(context.Background(), files.UploadInput{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("hello file"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp, body := s.get(t, s.client(t), "/files/"+file.ID)
	if resp.StatusCode != http.StatusOK || body != "hello file" {
		t.Fatalf("download = %d %q", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/plain" {
		t.Fatalf("content type = %q", got)
	}
	if resp, _ := s.get(t, s.client(t), "/files/missing"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing file status = %d, want 404", resp.StatusCode)
	}
}

type chatFrame struct {
	Type         string `json:"type"`
	Conversation *struct {
		ID       string `json:"id"`
		Messages []struct {
			Sender string `json:"sender"`
			Body   string `json:"body"`
		} `json:"messages"`
	} `json:"conversation"`
}

func TestChatSocketPushesConversation(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.client(t)
	s.signup(t, c, "finn")

	base, err := url.Parse(s.server.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	cfg, err := websocket.NewConfig("ws://"+base.Host+"/app/chat/ws", s.server.URL)
	if err != nil {
		t.Fatalf("ws config: %v", err)
	}
	for _, cookie := range c.Jar.Cookies(base) {
		if cookie.Name == sessioncookie.Name {
			cfg.Header.Set("Cookie", cookie.Name+"="+cookie.Value)
		}
	}
	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	decoder := json.NewDecoder(conn)

	var frame chatFrame
	if err := decoder.Decode(&frame); err != nil {
		t.Fatalf("initial frame: %v", err)
	}
	if frame.Type != "conversation" || frame.Conversation == nil || len(frame.Conversation.Messages) != 0 {
		t.Fatalf("initial frame = %+v", frame)
	}

	if err := json.NewEncoder(conn).Encode(map[string]string{"type": "chat.send", "body": "hello support"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	for {
		frame = chatFrame{}
		if err := decoder.Decode(&frame); err != nil {
			t.Fatalf("update frame: %v", err)
		}
		if frame.Conversation != nil && len(frame.Conversation.Messages) > 0 {
			break
		}
	}
	got := frame.Conversation.Messages[0]
	if got.Sender != "user" || got.Body != "hello support" {
		t.Fatalf("message = %+v", got)
	}
}

// dial opens a chat socket as c's session with a same-origin handshake.
func (s *testSite) dial(t *testing.T, c *http.Client, path string) (*websocket.Conn, *json.Decoder) {
	t.Helper()
	base, err := url.Parse(s.server.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	cfg, err := websocket.NewConfig("ws://"+base.Host+path, s.server.URL)
	if err != nil {
		t.Fatalf("ws config: %v", err)
	}
	for _, cookie := range c.Jar.Cookies(base) {
		if cookie.Name == sessioncookie.Name {
			cfg.Header.Set("Cookie", cookie.Name+"="+cookie.Value)
		}
	}
	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	return conn, json.NewDecoder(conn)
}

func TestSupportSocketMatchesConversationCaseInsensitively(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	user := s.client(t)
	s.signup(t, user, "quinn")
	resp, body := s.post(t, user, "/app/chat", s.server.URL, url.Values{"body": {"first"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("send status = %d, body = %s", resp.StatusCode, body)
	}

	admin := s.client(t)
	s.login(t, admin, "admin", accounts.DefaultAdminPassword)
	_, decoder := s.dial(t, admin, "/admin/chat/QUINN@Example.COM/ws")

	var frame chatFrame
	if err := decoder.Decode(&frame); err != nil {
		t.Fatalf("initial frame: %v", err)
	}
	if frame.Conversation == nil || frame.Conversation.ID != "quinn@example.com" || len(frame.Conversation.Messages) != 1 {
		t.Fatalf("initial frame = %+v", frame)
	}

	resp, body = s.post(t, user, "/app/chat", s.server.URL, url.Values{"body": {"second"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("send status = %d, body = %s", resp.StatusCode, body)
	}
	for {
		frame = chatFrame{}
		if err := decoder.Decode(&frame); err != nil {
			t.Fatalf("update frame: %v", err)
		}
		if frame.Conversation != nil && len(frame.Conversation.Messages) == 2 {
			break
		}
	}
	if got := frame.Conversation.Messages[1].Body; got != "second" {
		t.Fatalf("pushed message = %q, want second", got)
	}
}

func TestChatSocketRejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.client(t)
	s.signup(t, c, "gail")

	base, _ := url.Parse(s.server.URL)
	cfg, err := websocket.NewConfig("ws://"+base.Host+"/app/chat/ws", "https://evil.example")
	if err != nil {
		t.Fatalf("ws config: %v", err)
	}
	for _, cookie := range c.Jar.Cookies(base) {
		cfg.Header.Set("Cookie", cookie.Name+"="+cookie.Value)
	}
	if conn, err := websocket.DialConfig(cfg); err == nil {
		conn.Close()
		t.Fatal("expected handshake to fail")
	}
}
