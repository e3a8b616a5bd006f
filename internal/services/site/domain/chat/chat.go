// Package chat implements the support conversations between a user and the
// agency.
package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/platform/id"
	"github.com/louisbranch/agencysite/internal/services/site/content"
	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// ConversationsCollection is the storage prefix of conversations.
const ConversationsCollection = "chatConversations"

// MaxBodyLength bounds a single message.
const MaxBodyLength = 2000

// Sender identifies which side of a conversation wrote a message.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderSupport Sender = "support"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderSupport
}

// Message is one chat line.
type Message struct {
	ID            string    `json:"id"`
	Sender        Sender    `json:"sender"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"createdAt"`
	ReadByUser    bool      `json:"readByUser"`
	ReadBySupport bool      `json:"readBySupport"`
}

// ReadBy reports whether reader has seen the message.
func (m Message) ReadBy(reader Sender) bool {
	if reader == SenderSupport {
		return m.ReadBySupport
	}
	return m.ReadByUser
}

// Conversation is the thread of one user, keyed by their email.
type Conversation struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Unread counts the messages reader has not seen.
func (c Conversation) Unread(reader Sender) int {
	n := 0
	for _, m := range c.Messages {
		if !m.ReadBy(reader) {
			n++
		}
	}
	return n
}

// Summary is a conversation listing row for the support console.
type Summary struct {
	Conversation
	UnreadForSupport int
}

// Directory resolves user display names.
type Directory interface {
	DisplayName(ctx context.Context, email string) (string, error)
}

// Options configures the chat service.
type Options struct {
	Clock func() time.Time
	NewID func() (string, error)
	// Directory, when set, names new conversations and rejects unknown users.
	Directory Directory
}

// Service implements the chat use-cases.
type Service struct {
	conversations *content.Collection[Conversation]
	opts          Options
}

// New builds the chat service on store.
func New(store storage.Store, logger *zap.Logger, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = id.NewTimeOrderedID
	}
	return &Service{
		conversations: content.NewCollection(store, content.Config[Conversation]{
			Name: ConversationsCollection,
			Key:  func(c Conversation) string { return c.ID },
		}, logger),
		opts: opts,
	}
}

// Load loads the stored conversations, dropping corrupt ones.
func (s *Service) Load(ctx context.Context) error {
	return s.conversations.Load(ctx)
}

// Watch streams conversation changes until ctx is done.
func (s *Service) Watch(ctx context.Context) (<-chan storage.Change, error) {
	return s.conversations.Watch(ctx)
}

// ConversationOf returns the conversation id of a change, or "" when the
// change is not a conversation record.
func (s *Service) ConversationOf(change storage.Change) string {
	return s.conversations.KeyOf(change)
}

// SendMessage appends a message to a conversation. A user's first message
// opens the conversation. Support can only reply to existing conversations.
func (s *Service) SendMessage(ctx context.Context, conversationID string, sender Sender, body string) (Conversation, error) {
	conversationID = validate.NormalizeEmail(conversationID)
	body = strings.TrimSpace(body)
	if !sender.Valid() {
		return Conversation{}, validate.Invalid("sender", "error.sender_invalid", "unknown sender %q", sender)
	}
	if err := validate.First(
		validate.Required("body", body),
		validate.MaxLen("body", body, MaxBodyLength),
	); err != nil {
		return Conversation{}, err
	}
	if conversationID == "" {
		return Conversation{}, validate.Invalid("conversation", "error.required", "conversation is required")
	}
	messageID, err := s.opts.NewID()
	if err != nil {
		return Conversation{}, err
	}
	now := s.now()
	message := Message{
		ID:            messageID,
		Sender:        sender,
		Body:          body,
		CreatedAt:     now,
		ReadByUser:    sender == SenderUser,
		ReadBySupport: sender == SenderSupport,
	}

	conversation, err := s.appendMessage(ctx, conversationID, message)
	if !apperrors.IsKind(err, apperrors.KindNotFound) || sender != SenderUser {
		return conversation, err
	}

	name, err := s.displayName(ctx, conversationID)
	if err != nil {
		return Conversation{}, err
	}
	conversation = Conversation{
		ID:        conversationID,
		UserName:  name,
		Messages:  []Message{message},
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.conversations.Insert(ctx, conversation)
	if apperrors.IsKind(err, apperrors.KindConflict) {
		// Opened concurrently; append instead.
		return s.appendMessage(ctx, conversationID, message)
	}
	if err != nil {
		return Conversation{}, err
	}
	return conversation, nil
}

func (s *Service) appendMessage(ctx context.Context, conversationID string, message Message) (Conversation, error) {
	return s.conversations.Update(ctx, conversationID, func(c *Conversation) error {
		c.Messages = append(c.Messages, message)
		c.UpdatedAt = message.CreatedAt
		return nil
	})
}

func (s *Service) displayName(ctx context.Context, email string) (string, error) {
	if s.opts.Directory == nil {
		return email, nil
	}
	name, err := s.opts.Directory.DisplayName(ctx, email)
	if err != nil {
		return "", fmt.Errorf("resolve chat user: %w", err)
	}
	return name, nil
}

// MarkAsRead flags every message of the conversation as read by reader.
func (s *Service) MarkAsRead(ctx context.Context, conversationID string, reader Sender) (Conversation, error) {
	if !reader.Valid() {
		return Conversation{}, validate.Invalid("reader", "error.sender_invalid", "unknown reader %q", reader)
	}
	conversationID = validate.NormalizeEmail(conversationID)
	current, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return Conversation{}, err
	}
	if current.Unread(reader) == 0 {
		return current, nil
	}
	return s.conversations.Update(ctx, conversationID, func(c *Conversation) error {
		for i := range c.Messages {
			if reader == SenderSupport {
				c.Messages[i].ReadBySupport = true
			} else {
				c.Messages[i].ReadByUser = true
			}
		}
		return nil
	})
}

// Conversation returns one conversation.
func (s *Service) Conversation(ctx context.Context, conversationID string) (Conversation, error) {
	return s.conversations.Get(ctx, validate.NormalizeEmail(conversationID))
}

// ListConversations returns every conversation, most recently updated first.
func (s *Service) ListConversations(ctx context.Context) ([]Summary, error) {
	conversations, err := s.conversations.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(conversations, func(a, b Conversation) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	summaries := make([]Summary, 0, len(conversations))
	for _, c := range conversations {
		summaries = append(summaries, Summary{Conversation: c, UnreadForSupport: c.Unread(SenderSupport)})
	}
	return summaries, nil
}

// UnreadFor counts the unread messages of reader in one conversation. A
// missing conversation has none.
func (s *Service) UnreadFor(ctx context.Context, conversationID string, reader Sender) (int, error) {
	conversation, err := s.Conversation(ctx, conversationID)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return conversation.Unread(reader), nil
}

// TotalUnreadForSupport sums the support-side unread messages.
func (s *Service) TotalUnreadForSupport(ctx context.Context) (int, error) {
	conversations, err := s.conversations.List(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range conversations {
		total += c.Unread(SenderSupport)
	}
	return total, nil
}

// DeleteConversations removes conversations and returns how many existed.
func (s *Service) DeleteConversations(ctx context.Context, ids ...string) (int, error) {
	keys := make([]string, 0, len(ids))
	for _, conversationID := range ids {
		keys = append(keys, validate.NormalizeEmail(conversationID))
	}
	return s.conversations.Delete(ctx, keys...)
}

func (s *Service) now() time.Time {
	return s.opts.Clock().UTC()
}
