package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/storage/memory"
)

type fakeDirectory map[string]string

func (d fakeDirectory) DisplayName(_ context.Context, email string) (string, error) {
	name, ok := d[email]
	if !ok {
		return "", apperrors.E(apperrors.KindNotFound, "user not found")
	}
	return name, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	next := 0
	svc := New(memory.New(nil), nil, Options{
		Clock: func() time.Time {
			now = now.Add(time.Minute)
			return now
		},
		NewID: func() (string, error) {
			next++
			return fmt.Sprintf("m%03d", next), nil
		},
		Directory: fakeDirectory{"ann@example.com": "Ann", "ben@example.com": "Ben"},
	})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc
}

func TestSendMessageOpensConversation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	conv, err := svc.SendMessage(ctx, "Ann@Example.com", SenderUser, " hello ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if conv.ID != "ann@example.com" || conv.UserName != "Ann" {
		t.Fatalf("conversation = %+v", conv)
	}
	want := []Message{{
		ID:            "m001",
		Sender:        SenderUser,
		Body:          "hello",
		CreatedAt:     conv.CreatedAt,
		ReadByUser:    true,
		ReadBySupport: false,
	}}
	if diff := cmp.Diff(want, conv.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	conv, err = svc.SendMessage(ctx, "ann@example.com", SenderSupport, "hi Ann")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if len(conv.Messages) != 2 || conv.Messages[1].ReadByUser || !conv.Messages[1].ReadBySupport {
		t.Fatalf("reply flags = %+v", conv.Messages)
	}
	if !conv.UpdatedAt.Equal(conv.Messages[1].CreatedAt) {
		t.Fatalf("updatedAt = %v, want last message time", conv.UpdatedAt)
	}
}

func TestSendMessageRejections(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		id     string
		sender Sender
		body   string
		kind   apperrors.Kind
	}{
		{name: "empty body", id: "ann@example.com", sender: SenderUser, body: "   ", kind: apperrors.KindInvalidInput},
		{name: "long body", id: "ann@example.com", sender: SenderUser, body: strings.Repeat("x", MaxBodyLength+1), kind: apperrors.KindInvalidInput},
		{name: "bad sender", id: "ann@example.com", sender: "bot", body: "hi", kind: apperrors.KindInvalidInput},
		{name: "support first", id: "ben@example.com", sender: SenderSupport, body: "hi", kind: apperrors.KindNotFound},
		{name: "unknown user", id: "ghost@example.com", sender: SenderUser, body: "hi", kind: apperrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, tt.id, tt.sender, tt.body)
			if !apperrors.IsKind(err, tt.kind) {
				t.Fatalf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}

	if _, err := svc.SendMessage(ctx, "ann@example.com", SenderUser, strings.Repeat("é", MaxBodyLength)); err != nil {
		t.Fatalf("max length body: %v", err)
	}
}

func TestMarkAsReadAndUnread(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	for _, body := range []string{"one", "two"} {
		if _, err := svc.SendMessage(ctx, "ann@example.com", SenderUser, body); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if _, err := svc.SendMessage(ctx, "ann@example.com", SenderSupport, "answer"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	assertUnread := func(reader Sender, want int) {
		t.Helper()
		got, err := svc.UnreadFor(ctx, "ann@example.com", reader)
		if err != nil {
			t.Fatalf("unread: %v", err)
		}
		if got != want {
			t.Fatalf("unread for %s = %d, want %d", reader, got, want)
		}
	}
	assertUnread(SenderSupport, 2)
	assertUnread(SenderUser, 1)

	if _, err := svc.MarkAsRead(ctx, "ann@example.com", SenderSupport); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	assertUnread(SenderSupport, 0)
	assertUnread(SenderUser, 1)

	if n, err := svc.UnreadFor(ctx, "nobody@example.com", SenderUser); err != nil || n != 0 {
		t.Fatalf("missing conversation unread = %d, %v", n, err)
	}
}

func TestListConversationsNewestFirst(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, "ann@example.com", SenderUser, "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.SendMessage(ctx, "ben@example.com", SenderUser, "second"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.SendMessage(ctx, "ann@example.com", SenderUser, "third"); err != nil {
		t.Fatalf("send: %v", err)
	}

	summaries, err := svc.ListConversations(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, s := range summaries {
		got = append(got, fmt.Sprintf("%s:%d", s.ID, s.UnreadForSupport))
	}
	want := []string{"ann@example.com:2", "ben@example.com:1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summaries mismatch (-want +got):\n%s", diff)
	}

	total, err := svc.TotalUnreadForSupport(ctx)
	if err != nil || total != 3 {
		t.Fatalf("total unread = %d, %v; want 3", total, err)
	}

	removed, err := svc.DeleteConversations(ctx, "ann@example.com", "ghost@example.com")
	if err != nil || removed != 1 {
		t.Fatalf("delete = %d, %v; want 1", removed, err)
	}
	if _, err := svc.Conversation(ctx, "ann@example.com"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("conversation after delete err = %v", err)
	}
}
