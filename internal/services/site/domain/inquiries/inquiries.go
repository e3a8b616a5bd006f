// Package inquiries persists the public contact, application and investment
// form submissions for the admin to follow up.
package inquiries

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/platform/id"
	"github.com/louisbranch/agencysite/internal/services/site/content"
	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

// InquiriesCollection is the storage prefix of inquiries.
const InquiriesCollection = "inquiries"

const (
	maxShortLength   = 200
	maxMessageLength = 5000
)

// Kind names the form an inquiry came from.
type Kind string

const (
	KindContact     Kind = "contact"
	KindApplication Kind = "application"
	KindInvestment  Kind = "investment"
)

// Valid reports whether k is a known form.
func (k Kind) Valid() bool {
	switch k {
	case KindContact, KindApplication, KindInvestment:
		return true
	}
	return false
}

// Inquiry is one submission.
type Inquiry struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	// Position is the applied role of an application.
	Position string `json:"position,omitempty"`
	// AmountCents is the pledged amount of an investment.
	AmountCents int64     `json:"amountCents,omitempty"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
	Handled     bool      `json:"handled"`
}

// Input is a form submission before validation.
type Input struct {
	Kind     Kind
	Name     string
	Email    string
	Phone    string
	Subject  string
	Position string
	// Amount is the raw decimal amount typed into the investment form.
	Amount  string
	Message string
}

// MinimumSource provides the current minimum investment.
type MinimumSource interface {
	MinimumInvestmentCents(ctx context.Context) (int64, error)
}

// Options configures the inquiry service.
type Options struct {
	Clock   func() time.Time
	NewID   func() (string, error)
	Minimum MinimumSource
}

// Service implements the inquiry use-cases.
type Service struct {
	inquiries *content.Collection[Inquiry]
	opts      Options
}

// New builds the inquiry service on store.
func New(store storage.Store, logger *zap.Logger, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = id.NewTimeOrderedID
	}
	return &Service{
		inquiries: content.NewCollection(store, content.Config[Inquiry]{
			Name: InquiriesCollection,
			Key:  func(i Inquiry) string { return i.ID },
		}, logger),
		opts: opts,
	}
}

// Load loads the stored inquiries.
func (s *Service) Load(ctx context.Context) error {
	return s.inquiries.Load(ctx)
}

// Submit validates and stores a submission.
func (s *Service) Submit(ctx context.Context, input Input) (Inquiry, error) {
	inquiry := Inquiry{
		Kind:     input.Kind,
		Name:     strings.TrimSpace(input.Name),
		Email:    validate.NormalizeEmail(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		Subject:  strings.TrimSpace(input.Subject),
		Position: strings.TrimSpace(input.Position),
		Message:  strings.TrimSpace(input.Message),
	}
	if !inquiry.Kind.Valid() {
		return Inquiry{}, validate.Invalid("kind", "error.inquiry_kind", "unknown inquiry kind %q", input.Kind)
	}
	if err := validate.First(
		validate.Required("name", inquiry.Name),
		validate.MaxLen("name", inquiry.Name, maxShortLength),
		validate.Email("email", inquiry.Email),
		validate.MaxLen("phone", inquiry.Phone, 40),
		validate.MaxLen("subject", inquiry.Subject, maxShortLength),
		validate.Required("message", inquiry.Message),
		validate.MaxLen("message", inquiry.Message, maxMessageLength),
	); err != nil {
		return Inquiry{}, err
	}

	switch inquiry.Kind {
	case KindContact:
		if err := validate.Required("subject", inquiry.Subject); err != nil {
			return Inquiry{}, err
		}
	case KindApplication:
		if err := validate.First(
			validate.Required("position", inquiry.Position),
			validate.MaxLen("position", inquiry.Position, maxShortLength),
		); err != nil {
			return Inquiry{}, err
		}
	case KindInvestment:
		amount, err := s.checkAmount(ctx, input.Amount)
		if err != nil {
			return Inquiry{}, err
		}
		inquiry.AmountCents = amount
	}

	inquiryID, err := s.opts.NewID()
	if err != nil {
		return Inquiry{}, err
	}
	inquiry.ID = inquiryID
	inquiry.CreatedAt = s.opts.Clock().UTC()
	if err := s.inquiries.Insert(ctx, inquiry); err != nil {
		return Inquiry{}, err
	}
	return inquiry, nil
}

func (s *Service) checkAmount(ctx context.Context, raw string) (int64, error) {
	cents, err := ParseAmount(raw)
	if err != nil {
		return 0, err
	}
	if s.opts.Minimum == nil {
		return cents, nil
	}
	minimum, err := s.opts.Minimum.MinimumInvestmentCents(ctx)
	if err != nil {
		return 0, err
	}
	if cents < minimum {
		return 0, validate.Invalid("amount", "error.amount_below_minimum", "amount is below the minimum investment")
	}
	return cents, nil
}

// ParseAmount parses a decimal currency amount such as "25000" or
// "1,250.50" into cents.
func ParseAmount(raw string) (int64, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	value = strings.TrimPrefix(value, "$")
	if value == "" {
		return 0, validate.Invalid("amount", "error.required", "amount is required")
	}
	whole, frac, hasFrac := strings.Cut(value, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, invalidAmount()
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 || units > 1<<40 {
		return 0, invalidAmount()
	}
	cents := units * 100
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		part, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || part < 0 {
			return 0, invalidAmount()
		}
		cents += part
	}
	if cents <= 0 {
		return 0, invalidAmount()
	}
	return cents, nil
}

func invalidAmount() error {
	return validate.Invalid("amount", "error.amount_invalid", "amount must be a positive number")
}

// List returns the inquiries of kind, or all when kind is empty, newest
// first.
func (s *Service) List(ctx context.Context, kind Kind) ([]Inquiry, error) {
	inquiries, err := s.inquiries.List(ctx)
	if err != nil {
		return nil, err
	}
	if kind != "" {
		inquiries = slices.DeleteFunc(inquiries, func(i Inquiry) bool { return i.Kind != kind })
	}
	slices.SortStableFunc(inquiries, func(a, b Inquiry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return inquiries, nil
}

// CountOpen counts the inquiries not yet handled.
func (s *Service) CountOpen(ctx context.Context) (int, error) {
	inquiries, err := s.inquiries.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, i := range inquiries {
		if !i.Handled {
			n++
		}
	}
	return n, nil
}

// SetHandled flags an inquiry as followed up, or reopens it.
func (s *Service) SetHandled(ctx context.Context, inquiryID string, handled bool) (Inquiry, error) {
	return s.inquiries.Update(ctx, inquiryID, func(i *Inquiry) error {
		i.Handled = handled
		return nil
	})
}

// Delete removes inquiries and returns how many existed.
func (s *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return s.inquiries.Delete(ctx, ids...)
}
