package accounts

import (
	"context"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/platform/filter"
)

var userFields = []filter.Field{
	{Name: "role", Type: filter.TypeString},
	{Name: "plan", Type: filter.TypeString},
	{Name: "email", Type: filter.TypeString},
	{Name: "username", Type: filter.TypeString},
	{Name: "name", Type: filter.TypeString},
}

// ListUsers returns the users matching an AIP-160 filter such as
// `role = "admin" OR plan = "pro"`, ordered by email.
func (s *Service) ListUsers(ctx context.Context, filterStr string) ([]User, error) {
	match, err := filter.Compile(filterStr, userFields...)
	if err != nil {
		return nil, apperrors.Field(apperrors.KindInvalidInput, "filter", "error.filter_invalid", err.Error())
	}
	records, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		if match(userRecord(record.User)) {
			users = append(users, record.User)
		}
	}
	slices.SortFunc(users, func(a, b User) int { return strings.Compare(a.Email, b.Email) })
	return users, nil
}

// AllEmails returns the email of every user.
func (s *Service) AllEmails(ctx context.Context) ([]string, error) {
	users, err := s.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

func userRecord(u User) filter.Record {
	return func(field string) (any, bool) {
		switch field {
		case "role":
			return string(u.Role), true
		case "plan":
			return u.Plan, true
		case "email":
			return u.Email, true
		case "username":
			return u.Username, true
		case "name":
			return u.Name, true
		default:
			return nil, false
		}
	}
}
