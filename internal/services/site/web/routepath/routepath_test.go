package routepath

import "testing"

func TestEntityPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got  string
		want string
	}{
		{got: Service("web-design"), want: "/services/web-design"},
		{got: CaseStudy(" acme "), want: "/case-study/acme"},
		{got: App("a/b"), want: "/apps/a%2Fb"},
		{got: AdminUserFor("jane@example.com"), want: "/admin/users/jane@example.com"},
		{got: AdminReviewActionFor("r1", "approve"), want: "/admin/reviews/r1/approve"},
		{got: MessageRead("m1"), want: "/app/messages/m1/read"},
		{got: WithSuffix(AdminAppFor("x"), "delete"), want: "/admin/apps/x/delete"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("path = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestSafeNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		next string
		want string
	}{
		{next: "/app/profile", want: "/app/profile"},
		{next: "", want: "/"},
		{next: "https://evil.test", want: "/"},
		{next: "//evil.test", want: "/"},
		{next: `/\evil.test`, want: "/"},
	}
	for _, tt := range tests {
		if got := SafeNext(tt.next, Root); got != tt.want {
			t.Errorf("SafeNext(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}
