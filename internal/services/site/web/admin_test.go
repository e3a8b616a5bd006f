package web_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/domain/files"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/flash"
)

// adminClient returns a client signed in as the default admin.
func (s *testSite) adminClient(t *testing.T) *http.Client {
	t.Helper()
	c := s.client(t)
	if resp := s.login(t, c, "admin", accounts.DefaultAdminPassword); resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("admin login status = %d", resp.StatusCode)
	}
	return c
}

// upload posts a multipart file straight to the handler so oversized bodies
// are answered without racing the client's write.
func (s *testSite) upload(t *testing.T, c *http.Client, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, s.server.URL+"/admin/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Origin", s.server.URL)
	base, err := url.Parse(s.server.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	for _, cookie := range c.Jar.Cookies(base) {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.server.Config.Handler.ServeHTTP(rec, req)
	return rec
}

func flashOf(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == flash.CookieName {
			return cookie.Value
		}
	}
	return ""
}

func wantRedirect(t *testing.T, resp *http.Response, body string, location string, notice string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303, body = %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("location = %q, want %q", got, location)
	}
	if notice == "" {
		return
	}
	if got := flashOf(resp); got != notice {
		t.Fatalf("flash = %q, want %q", got, notice)
	}
}

func wantFieldError(t *testing.T, resp *http.Response, body string, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("status = %d, want %d", resp.StatusCode, status)
	}
	if !strings.Contains(body, `class="field-error"`) {
		t.Fatal("expected an inline field error")
	}
}

func TestAdminCatalogCRUD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		list     string
		prefix   string
		existing string
		create   url.Values
		update   url.Values
		invalid  url.Values
	}{
		{
			name:     "apps",
			list:     "/admin/apps",
			prefix:   "flash.app",
			existing: "taskflow",
			create:   url.Values{"slug": {"notely"}, "name": {"Notely"}, "url": {"https://notely.example"}, "featured": {"on"}},
			update:   url.Values{"name": {"Notely Pro"}},
			invalid:  url.Values{"slug": {"broken"}, "name": {"Broken"}, "url": {"not a url"}},
		},
		{
			name:     "services",
			list:     "/admin/services",
			prefix:   "flash.service",
			existing: "web-development",
			create:   url.Values{"slug": {"audits"}, "title": {"Audits"}, "priceFrom": {"1200.50"}, "features": {"Report\nCall"}},
			update:   url.Values{"title": {"Security audits"}, "priceFrom": {"1500"}},
			invalid:  url.Values{"slug": {"cheap"}, "title": {"Cheap"}, "priceFrom": {"free"}},
		},
		{
			name:     "case studies",
			list:     "/admin/case-studies",
			prefix:   "flash.case_study",
			existing: "fintech-onboarding",
			create:   url.Values{"slug": {"retail-app"}, "title": {"Retail app"}, "client": {"Shopco"}, "results": {"2x sales"}},
			update:   url.Values{"title": {"Retail app relaunch"}},
			invalid:  url.Values{"slug": {"untitled"}, "title": {""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSite(t)
			c := s.adminClient(t)

			slug := tt.create.Get("slug")
			item := tt.list + "/" + slug

			duplicate := url.Values{}
			for k, v := range tt.create {
				duplicate[k] = v
			}
			duplicate.Set("slug", tt.existing)
			resp, body := s.post(t, c, tt.list, s.server.URL, duplicate)
			wantFieldError(t, resp, body, http.StatusUnprocessableEntity)
			if flashOf(resp) != "" {
				t.Fatal("a rejected form should not set a flash")
			}

			resp, body = s.post(t, c, tt.list, s.server.URL, tt.invalid)
			wantFieldError(t, resp, body, http.StatusUnprocessableEntity)

			resp, body = s.post(t, c, tt.list, s.server.URL, tt.create)
			wantRedirect(t, resp, body, item, "success:"+tt.prefix+".created")

			resp, body = s.get(t, c, item)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("edit status = %d, want 200", resp.StatusCode)
			}
			if _, body = s.get(t, c, tt.list); !strings.Contains(body, item) {
				t.Fatalf("list should link %s", item)
			}

			resp, body = s.post(t, c, item, s.server.URL, tt.update)
			wantRedirect(t, resp, body, item, "success:"+tt.prefix+".updated")

			resp, body = s.post(t, c, item+"/delete", s.server.URL, nil)
			wantRedirect(t, resp, body, tt.list, "success:"+tt.prefix+".deleted")
			if resp, _ := s.get(t, c, item); resp.StatusCode != http.StatusNotFound {
				t.Fatalf("deleted item status = %d, want 404", resp.StatusCode)
			}
		})
	}
}

func TestAdminAppUpdateKeepsSlug(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.adminClient(t)

	resp, body := s.post(t, c, "/admin/apps/taskflow", s.server.URL, url.Values{"slug": {"renamed"}, "name": {"TaskFlow 2"}, "featured": {"on"}})
	wantRedirect(t, resp, body, "/admin/apps/taskflow", "success:flash.app.updated")

	app, err := s.site.Catalog.GetApp(context.Background(), "taskflow")
	if err != nil {
		t.Fatalf("get app: %v", err)
	}
	if app.Name != "TaskFlow 2" || !app.Featured {
		t.Fatalf("app = %+v", app)
	}
	if resp, _ := s.get(t, c, "/admin/apps/renamed"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("renamed slug status = %d, want 404", resp.StatusCode)
	}
}

func TestAdminUsers(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.adminClient(t)
	ctx := context.Background()

	create := []struct {
		name   string
		values url.Values
		status int
	}{
		{
			name:   "missing name",
			values: url.Values{"username": {"ivy"}, "email": {"ivy@example.com"}, "password": {"correct-horse"}, "role": {"user"}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "short password",
			values: url.Values{"name": {"Ivy"}, "username": {"ivy"}, "email": {"ivy@example.com"}, "password": {"short"}, "role": {"user"}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "taken username",
			values: url.Values{"name": {"Ivy"}, "username": {"admin"}, "email": {"ivy@example.com"}, "password": {"correct-horse"}, "role": {"user"}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown plan",
			values: url.Values{"name": {"Ivy"}, "username": {"ivy"}, "email": {"ivy@example.com"}, "password": {"correct-horse"}, "role": {"user"}, "plan": {"platinum"}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "created",
			values: url.Values{"name": {"Ivy"}, "username": {"ivy"}, "email": {"Ivy@Example.com"}, "password": {"correct-horse"}, "role": {"user"}, "plan": {"pro"}},
			status: http.StatusSeeOther,
		},
	}
	for _, tt := range create {
		resp, body := s.post(t, c, "/admin/users", s.server.URL, tt.values)
		if tt.status == http.StatusSeeOther {
			wantRedirect(t, resp, body, "/admin/users/ivy@example.com", "success:flash.user_created")
			continue
		}
		wantFieldError(t, resp, body, tt.status)
		if strings.Contains(body, `value="`+tt.values.Get("password")+`"`) {
			t.Fatalf("%s: password echoed back into the form", tt.name)
		}
	}

	resp, body := s.get(t, c, "/admin/users/ivy@example.com")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "ivy") {
		t.Fatalf("edit status = %d", resp.StatusCode)
	}

	update := []struct {
		name   string
		values url.Values
		status int
	}{
		{name: "bad role", values: url.Values{"name": {"Ivy"}, "role": {"owner"}, "plan": {"pro"}}, status: http.StatusUnprocessableEntity},
		{name: "bad avatar", values: url.Values{"name": {"Ivy"}, "role": {"user"}, "avatar": {"not a url"}}, status: http.StatusUnprocessableEntity},
		{name: "promoted", values: url.Values{"name": {"Ivy Admin"}, "role": {"admin"}, "plan": {"enterprise"}}, status: http.StatusSeeOther},
	}
	for _, tt := range update {
		resp, body := s.post(t, c, "/admin/users/ivy@example.com", s.server.URL, tt.values)
		if tt.status == http.StatusSeeOther {
			wantRedirect(t, resp, body, "/admin/users/ivy@example.com", "success:flash.user_updated")
			continue
		}
		wantFieldError(t, resp, body, tt.status)
	}
	user, err := s.site.Accounts.User(ctx, "ivy@example.com")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if diff := cmp.Diff([]string{"Ivy Admin", "admin", "enterprise"}, []string{user.Name, string(user.Role), user.Plan}); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}

	filters := []struct {
		filter  string
		status  int
		include []string
		exclude []string
	}{
		{filter: "", status: http.StatusOK, include: []string{accounts.DefaultAdminEmail, "ivy@example.com"}},
		{filter: `plan = "enterprise"`, status: http.StatusOK, include: []string{"ivy@example.com"}, exclude: []string{accounts.DefaultAdminEmail}},
		{filter: `role = "user"`, status: http.StatusOK, exclude: []string{accounts.DefaultAdminEmail, "ivy@example.com"}},
		{filter: `role = `, status: http.StatusUnprocessableEntity},
		{filter: `salary > 3`, status: http.StatusUnprocessableEntity},
	}
	for _, tt := range filters {
		resp, body := s.get(t, c, "/admin/users?filter="+url.QueryEscape(tt.filter))
		if resp.StatusCode != tt.status {
			t.Fatalf("filter %q status = %d, want %d", tt.filter, resp.StatusCode, tt.status)
		}
		for _, email := range tt.include {
			if !strings.Contains(body, email) {
				t.Fatalf("filter %q should list %s", tt.filter, email)
			}
		}
		for _, email := range tt.exclude {
			if strings.Contains(body, "/admin/users/"+email) {
				t.Fatalf("filter %q should not list %s", tt.filter, email)
			}
		}
		if tt.status == http.StatusUnprocessableEntity && !strings.Contains(body, `class="field-error"`) {
			t.Fatalf("filter %q should explain the error", tt.filter)
		}
	}

	resp, body = s.post(t, c, "/admin/users/ivy@example.com/delete", s.server.URL, nil)
	wantRedirect(t, resp, body, "/admin/users", "success:flash.user_deleted")
	if resp, _ := s.get(t, c, "/admin/users/ivy@example.com"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted user status = %d, want 404", resp.StatusCode)
	}
	if resp := s.login(t, s.client(t), "ivy", "correct-horse"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("deleted user login status = %d, want 401", resp.StatusCode)
	}
}

func TestAdminReviewActions(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.adminClient(t)
	ctx := context.Background()

	review, err := s.site.Catalog.SubmitReview(ctx, catalog.ReviewInput{Author: "Omar", Rating: 4, Body: "Solid work."})
	if err != nil {
		t.Fatalf("submit review: %v", err)
	}
	approved := func() bool {
		t.Helper()
		list, err := s.site.Catalog.ListReviews(ctx, true)
		if err != nil {
			t.Fatalf("list reviews: %v", err)
		}
		for _, r := range list {
			if r.ID == review.ID {
				return true
			}
		}
		return false
	}

	if _, body := s.get(t, c, "/admin/reviews"); !strings.Contains(body, "/admin/reviews/"+review.ID+"/approve") {
		t.Fatal("pending review should offer approve")
	}

	tests := []struct {
		action   string
		status   int
		notice   string
		approved bool
	}{
		{action: "approve", status: http.StatusSeeOther, notice: "success:flash.review_approved", approved: true},
		{action: "unapprove", status: http.StatusSeeOther, notice: "success:flash.review_unapproved", approved: false},
		{action: "approve", status: http.StatusSeeOther, notice: "success:flash.review_approved", approved: true},
		{action: "publish", status: http.StatusNotFound, approved: true},
	}
	for _, tt := range tests {
		resp, body := s.post(t, c, "/admin/reviews/"+review.ID+"/"+tt.action, s.server.URL, nil)
		if tt.status == http.StatusSeeOther {
			wantRedirect(t, resp, body, "/admin/reviews", tt.notice)
		} else if resp.StatusCode != tt.status {
			t.Fatalf("%s status = %d, want %d", tt.action, resp.StatusCode, tt.status)
		}
		if got := approved(); got != tt.approved {
			t.Fatalf("after %s approved = %v, want %v", tt.action, got, tt.approved)
		}
	}

	if resp, _ := s.post(t, c, "/admin/reviews/missing/approve", s.server.URL, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing review status = %d, want 404", resp.StatusCode)
	}

	resp, body := s.post(t, c, "/admin/reviews/"+review.ID+"/delete", s.server.URL, nil)
	wantRedirect(t, resp, body, "/admin/reviews", "success:flash.review_deleted")
	if approved() {
		t.Fatal("deleted review still listed")
	}
}

func TestAdminFiles(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.adminClient(t)
	ctx := context.Background()

	rec := s.upload(t, c, "brief.txt", []byte("project brief"))
	wantRedirect(t, rec.Result(), rec.Body.String(), "/admin/files", "success:flash.file_uploaded")

	list, err := s.site.Files.List(ctx)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(list) != 1 || list[0].Name != "brief.txt" || list[0].Uploader != accounts.DefaultAdminEmail {
		t.Fatalf("files = %+v", list)
	}
	if _, body := s.get(t, c, "/admin/files"); !strings.Contains(body, "brief.txt") {
		t.Fatal("files page should list the upload")
	}

	rejects := []struct {
		name   string
		data   []byte
		status int
	}{
		{name: "empty.txt", data: nil, status: http.StatusUnprocessableEntity},
		{name: "big.bin", data: make([]byte, files.MaxSize+1), status: http.StatusUnprocessableEntity},
		{name: "huge.bin", data: make([]byte, files.MaxSize+2<<20), status: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range rejects {
		rec := s.upload(t, c, tt.name, tt.data)
		wantFieldError(t, rec.Result(), rec.Body.String(), tt.status)
	}
	if n, err := s.site.Files.Count(ctx); err != nil || n != 1 {
		t.Fatalf("count = %d, %v, want 1", n, err)
	}

	resp, body := s.post(t, c, "/admin/files/"+list[0].ID+"/delete", s.server.URL, nil)
	wantRedirect(t, resp, body, "/admin/files", "success:flash.file_deleted")
	if resp, _ := s.get(t, s.client(t), "/files/"+list[0].ID); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted file status = %d, want 404", resp.StatusCode)
	}
}

func TestAdminBroadcast(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	s.signup(t, s.client(t), "jo")
	s.signup(t, s.client(t), "kai")
	c := s.adminClient(t)
	ctx := context.Background()

	rejects := []url.Values{
		{"subject": {""}, "body": {"Hello"}, "all": {"on"}},
		{"subject": {"News"}, "body": {""}, "all": {"on"}},
		{"subject": {"News"}, "body": {"Hello"}},
		{"subject": {"News"}, "body": {"Hello"}, "recipients": {"jo@example.com\nghost@example.com"}},
	}
	for _, values := range rejects {
		resp, body := s.post(t, c, "/admin/messages", s.server.URL, values)
		wantFieldError(t, resp, body, http.StatusUnprocessableEntity)
	}
	if all, err := s.site.Inbox.ListAll(ctx); err != nil || len(all) != 0 {
		t.Fatalf("rejected broadcasts stored %d messages, %v", len(all), err)
	}

	resp, body := s.post(t, c, "/admin/messages", s.server.URL, url.Values{
		"subject":    {"Selected"},
		"body":       {"Just you two"},
		"recipients": {"JO@example.com, kai@example.com\njo@example.com"},
	})
	wantRedirect(t, resp, body, "/admin/messages", "success:flash.broadcast_sent")

	resp, body = s.post(t, c, "/admin/messages", s.server.URL, url.Values{"subject": {"Everyone"}, "body": {"Hello all"}, "all": {"on"}})
	wantRedirect(t, resp, body, "/admin/messages", "success:flash.broadcast_sent")

	users, err := s.site.Accounts.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	all, err := s.site.Inbox.ListAll(ctx)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	counts := map[string]int{}
	for _, m := range all {
		counts[m.Subject]++
	}
	if diff := cmp.Diff(map[string]int{"Selected": 2, "Everyone": users}, counts); diff != "" {
		t.Fatalf("messages per subject (-want +got):\n%s", diff)
	}

	target := all[0]
	resp, body = s.post(t, c, "/admin/messages/"+target.ID+"/delete", s.server.URL, nil)
	wantRedirect(t, resp, body, "/admin/messages", "success:flash.message_deleted")
	remaining, err := s.site.Inbox.ListAll(ctx)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(remaining) != len(all)-1 {
		t.Fatalf("remaining = %d, want %d", len(remaining), len(all)-1)
	}
}

func TestAdminInquiryActions(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	c := s.adminClient(t)
	ctx := context.Background()

	inquiry, err := s.site.Inquiries.Submit(ctx, inquiries.Input{Kind: inquiries.KindContact, Name: "Lena", Email: "lena@example.com", Subject: "Quote", Message: "Need an app"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	handled := func() bool {
		t.Helper()
		list, err := s.site.Inquiries.List(ctx, "")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, i := range list {
			if i.ID == inquiry.ID {
				return i.Handled
			}
		}
		t.Fatalf("inquiry %s missing", inquiry.ID)
		return false
	}

	pages := []struct {
		path   string
		status int
		lists  bool
	}{
		{path: "/admin/inquiries", status: http.StatusOK, lists: true},
		{path: "/admin/inquiries?kind=contact", status: http.StatusOK, lists: true},
		{path: "/admin/inquiries?kind=application", status: http.StatusOK, lists: false},
		{path: "/admin/inquiries?kind=spam", status: http.StatusNotFound},
	}
	for _, tt := range pages {
		resp, body := s.get(t, c, tt.path)
		if resp.StatusCode != tt.status {
			t.Fatalf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		if tt.status == http.StatusOK && strings.Contains(body, "lena@example.com") != tt.lists {
			t.Fatalf("GET %s lists inquiry = %v, want %v", tt.path, !tt.lists, tt.lists)
		}
	}

	actions := []struct {
		action  string
		notice  string
		handled bool
	}{
		{action: "handle", notice: "success:flash.inquiry_handled", handled: true},
		{action: "reopen", notice: "success:flash.inquiry_reopened", handled: false},
	}
	for _, tt := range actions {
		resp, body := s.post(t, c, "/admin/inquiries/"+inquiry.ID+"/"+tt.action, s.server.URL, nil)
		wantRedirect(t, resp, body, "/admin/inquiries", tt.notice)
		if got := handled(); got != tt.handled {
			t.Fatalf("after %s handled = %v", tt.action, got)
		}
	}
	if resp, _ := s.post(t, c, "/admin/inquiries/"+inquiry.ID+"/archive", s.server.URL, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown action status = %d, want 404", resp.StatusCode)
	}

	resp, body := s.post(t, c, "/admin/inquiries/"+inquiry.ID+"/delete", s.server.URL, nil)
	wantRedirect(t, resp, body, "/admin/inquiries", "success:flash.inquiry_deleted")
	if n, err := s.site.Inquiries.CountOpen(ctx); err != nil || n != 0 {
		t.Fatalf("open inquiries = %d, %v", n, err)
	}
}

func TestAdminChatConsole(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	user := s.client(t)
	s.signup(t, user, "hana")
	ctx := context.Background()

	resp, body := s.post(t, user, "/app/chat", s.server.URL, url.Values{"body": {"Is anyone there?"}})
	wantRedirect(t, resp, body, "/app/chat", "")

	c := s.adminClient(t)
	if unread, err := s.site.Chat.TotalUnreadForSupport(ctx); err != nil || unread != 1 {
		t.Fatalf("unread = %d, %v, want 1", unread, err)
	}
	resp, body = s.get(t, c, "/admin/chat")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "/admin/chat/hana@example.com") {
		t.Fatalf("console status = %d, missing conversation link", resp.StatusCode)
	}

	resp, body = s.get(t, c, "/admin/chat/hana@example.com")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Is anyone there?") {
		t.Fatalf("thread status = %d", resp.StatusCode)
	}
	if unread, err := s.site.Chat.TotalUnreadForSupport(ctx); err != nil || unread != 0 {
		t.Fatalf("opening the thread left %d unread, %v", unread, err)
	}

	resp, body = s.post(t, c, "/admin/chat/hana@example.com", s.server.URL, url.Values{"body": {"   "}})
	wantFieldError(t, resp, body, http.StatusUnprocessableEntity)

	resp, body = s.post(t, c, "/admin/chat/hana@example.com", s.server.URL, url.Values{"body": {"Hi Hana, how can we help?"}})
	wantRedirect(t, resp, body, "/admin/chat/hana@example.com", "")
	conversation, err := s.site.Chat.Conversation(ctx, "hana@example.com")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	var senders []string
	for _, m := range conversation.Messages {
		senders = append(senders, string(m.Sender))
	}
	if diff := cmp.Diff([]string{"user", "support"}, senders); diff != "" {
		t.Fatalf("senders (-want +got):\n%s", diff)
	}

	if resp, _ := s.get(t, c, "/admin/chat/nobody@example.com"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing thread status = %d, want 404", resp.StatusCode)
	}
	if resp, _ := s.get(t, user, "/admin/chat"); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin console status = %d, want 403", resp.StatusCode)
	}

	resp, body = s.post(t, c, "/admin/chat/hana@example.com/delete", s.server.URL, nil)
	wantRedirect(t, resp, body, "/admin/chat", "success:flash.conversation_deleted")
	if _, body := s.get(t, c, "/admin/chat"); strings.Contains(body, "/admin/chat/hana@example.com") {
		t.Fatal("deleted conversation still listed")
	}
}
