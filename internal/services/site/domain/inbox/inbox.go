// Package inbox delivers admin broadcast messages to user inboxes and prunes
// them after a retention window.
package inbox

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

const (
	// MessagesCollection is the storage prefix of inbox messages.
	MessagesCollection = "messages"
	// DefaultRetentionMonths is how long messages are kept.
	DefaultRetentionMonths = 3
	// DefaultPruneInterval is how often the retention worker runs.
	DefaultPruneInterval = time.Hour

	maxSubjectLength = 200
	maxBodyLength    = 5000
)

// Message is one delivered broadcast copy.
type Message struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Directory resolves broadcast recipients.
type Directory interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	AllEmails(ctx context.Context) ([]string, error)
}

// Options configures the inbox.
type Options struct {
	RetentionMonths int
	Clock           func() time.Time
	NewID           func() (string, error)
}

// Service implements the inbox use-cases.
type Service struct {
	messages  *content.Collection[Message]
	directory Directory
	logger    *zap.Logger
	opts      Options
}

// New builds the inbox on store.
func New(store storage.Store, directory Directory, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RetentionMonths <= 0 {
		opts.RetentionMonths = DefaultRetentionMonths
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = id.NewTimeOrderedID
	}
	return &Service{
		messages: content.NewCollection(store, content.Config[Message]{
			Name: MessagesCollection,
			Key:  func(m Message) string { return m.ID },
		}, logger),
		directory: directory,
		logger:    logger,
		opts:      opts,
	}
}

// Load loads the messages and prunes expired ones.
func (s *Service) Load(ctx context.Context) error {
	if err := s.messages.Load(ctx); err != nil {
		return err
	}
	_, err := s.Prune(ctx, s.opts.Clock())
	return err
}

// BroadcastInput is one admin broadcast.
type BroadcastInput struct {
	Sender     string
	Subject    string
	Body       string
	Recipients []string
	// All expands the recipients to every user.
	All bool
}

// Broadcast delivers one message per recipient in a single batch and returns
// the count. On error nothing is delivered.
func (s *Service) Broadcast(ctx context.Context, input BroadcastInput) (int, error) {
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Body)
	if err := validate.First(
		validate.Required("subject", subject),
		validate.MaxLen("subject", subject, maxSubjectLength),
		validate.Required("body", body),
		validate.MaxLen("body", body, maxBodyLength),
	); err != nil {
		return 0, err
	}
	recipients, err := s.recipients(ctx, input)
	if err != nil {
		return 0, err
	}

	now := s.opts.Clock().UTC()
	messages := make([]Message, 0, len(recipients))
	for _, recipient := range recipients {
		messageID, err := s.opts.NewID()
		if err != nil {
			return 0, err
		}
		messages = append(messages, Message{
			ID:        messageID,
			Recipient: recipient,
			Sender:    strings.TrimSpace(input.Sender),
			Subject:   subject,
			Body:      body,
			CreatedAt: now,
		})
	}
	if err := s.messages.InsertAll(ctx, messages); err != nil {
		return 0, fmt.Errorf("deliver broadcast: %w", err)
	}
	s.logger.Info("broadcast delivered", zap.Int("recipients", len(messages)))
	return len(messages), nil
}

func (s *Service) recipients(ctx context.Context, input BroadcastInput) ([]string, error) {
	if input.All {
		emails, err := s.directory.AllEmails(ctx)
		if err != nil {
			return nil, fmt.Errorf("list recipients: %w", err)
		}
		if len(emails) == 0 {
			return nil, validate.Invalid("recipients", "error.recipients_required", "no users to message")
		}
		return emails, nil
	}

	var recipients []string
	for _, raw := range input.Recipients {
		email := validate.NormalizeEmail(raw)
		if email == "" || slices.Contains(recipients, email) {
			continue
		}
		exists, err := s.directory.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, validate.Invalid("recipients", "error.recipient_unknown", "unknown recipient %q", email)
		}
		recipients = append(recipients, email)
	}
	if len(recipients) == 0 {
		return nil, validate.Invalid("recipients", "error.recipients_required", "at least one recipient is required")
	}
	return recipients, nil
}

// MessagesForUser returns the recipient's messages, newest first.
func (s *Service) MessagesForUser(ctx context.Context, email string) ([]Message, error) {
	email = validate.NormalizeEmail(email)
	return s.list(ctx, func(m Message) bool { return m.Recipient == email })
}

// UnreadCount counts the recipient's unread messages.
func (s *Service) UnreadCount(ctx context.Context, email string) (int, error) {
	messages, err := s.MessagesForUser(ctx, email)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range messages {
		if !m.Read {
			n++
		}
	}
	return n, nil
}

// MarkAsRead marks one of the recipient's own messages as read. Messages of
// other users are reported as not found.
func (s *Service) MarkAsRead(ctx context.Context, email string, messageID string) error {
	email = validate.NormalizeEmail(email)
	_, err := s.messages.Update(ctx, messageID, func(m *Message) error {
		if m.Recipient != email {
			return apperrors.E(apperrors.KindNotFound, "message not found")
		}
		m.Read = true
		return nil
	})
	return err
}

// ListAll returns every message, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Message, error) {
	return s.list(ctx, nil)
}

// Delete removes messages and returns how many existed.
func (s *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return s.messages.Delete(ctx, ids...)
}

// Prune deletes messages older than the retention window ending at now. A
// message stamped exactly at the cutoff is kept.
func (s *Service) Prune(ctx context.Context, now time.Time) (int, error) {
	cutoff := SubMonths(now.UTC(), s.opts.RetentionMonths)
	messages, err := s.messages.List(ctx)
	if err != nil {
		return 0, err
	}
	var expired []string
	for _, m := range messages {
		if m.CreatedAt.Before(cutoff) {
			expired = append(expired, m.ID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	removed, err := s.messages.Delete(ctx, expired...)
	if err != nil {
		return 0, fmt.Errorf("prune messages: %w", err)
	}
	s.logger.Info("pruned expired messages", zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}

// RunRetention prunes every interval until ctx is done.
func (s *Service) RunRetention(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Prune(ctx, s.opts.Clock()); err != nil {
				s.logger.Warn("message retention failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) list(ctx context.Context, keep func(Message) bool) ([]Message, error) {
	messages, err := s.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	if keep != nil {
		messages = slices.DeleteFunc(messages, func(m Message) bool { return !keep(m) })
	}
	slices.SortStableFunc(messages, func(a, b Message) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return messages, nil
}

// SubMonths moves t back by months calendar months, clamping the day to the
// length of the target month: May 31 minus three months is Feb 28 (or 29).
func SubMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
