// Package accounts manages site users: signup, login, profiles, roles and
// subscription plans.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/content"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

const (
	// UsersCollection is the storage prefix of user records.
	UsersCollection = "users"
	// UsernameIndex is the unique index over usernames.
	UsernameIndex = "username"

	// AdminUsername is the reserved username of the built-in administrator.
	AdminUsername = "admin"
	// AdminName is the display name of the built-in administrator.
	AdminName = "Admin User"
	// DefaultAdminEmail is used when no admin email is configured.
	DefaultAdminEmail = "admin@agency.test"
	// DefaultAdminPassword is used when no admin password is configured.
	DefaultAdminPassword = "adminpassword"

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
	maxPasswordLength = 72
)

// Role grants access to areas of the site.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ErrInvalidCredentials is returned for every failed login, whatever the
// cause.
var ErrInvalidCredentials = apperrors.EK(apperrors.KindUnauthorized, "error.invalid_credentials", "invalid credentials")

// User is the public view of an account. It never carries the password.
type User struct {
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Plan      string    `json:"plan"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// account is the stored record.
type account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// PlanSource provides the current pricing plans.
type PlanSource interface {
	Get(ctx context.Context) (pages.PricingPlans, error)
}

// Options configures the accounts service.
type Options struct {
	AdminEmail    string
	AdminPassword string
	// BcryptCost overrides bcrypt.DefaultCost.
	BcryptCost int
	Clock      func() time.Time
}

// Service implements the account use-cases.
type Service struct {
	users  *content.Collection[account]
	plans  PlanSource
	logger *zap.Logger
	opts   Options

	dummyOnce sync.Once
	dummyHash []byte
}

// New builds the accounts service on store.
func New(store storage.Store, plans PlanSource, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	opts.AdminEmail = validate.NormalizeEmail(opts.AdminEmail)
	if opts.AdminEmail == "" {
		opts.AdminEmail = DefaultAdminEmail
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = DefaultAdminPassword
	}
	return &Service{
		users: content.NewCollection(store, content.Config[account]{
			Name: UsersCollection,
			Key:  func(a account) string { return a.Email },
			Unique: map[string]func(account) string{
				UsernameIndex: func(a account) string { return a.Username },
			},
			Validate: validateAccount,
		}, logger),
		plans:  plans,
		logger: logger,
		opts:   opts,
	}
}

// Load loads the users and reseeds the administrator when missing.
func (s *Service) Load(ctx context.Context) error {
	if err := s.users.Load(ctx); err != nil {
		return err
	}
	_, err := s.EnsureAdmin(ctx)
	return err
}

// Watch streams user record changes until ctx is done.
func (s *Service) Watch(ctx context.Context) (<-chan storage.Change, error) {
	return s.users.Watch(ctx)
}

// EnsureAdmin recreates the built-in administrator when no user holds the
// admin username. It reports whether the admin was (re)created.
func (s *Service) EnsureAdmin(ctx context.Context) (bool, error) {
	exists, err := s.users.ExistsBy(ctx, UsernameIndex, AdminUsername)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}
	hash, err := s.hash(s.opts.AdminPassword)
	if err != nil {
		return false, err
	}
	plan, err := s.defaultPlan(ctx)
	if err != nil {
		return false, err
	}
	now := s.now()
	admin := account{
		User: User{
			Email:     s.opts.AdminEmail,
			Username:  AdminUsername,
			Name:      AdminName,
			Role:      RoleAdmin,
			Plan:      plan,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}

	err = s.users.Insert(ctx, admin)
	if apperrors.FieldOf(err) == content.KeyField {
		// The admin email belongs to another account: promote it back.
		_, err = s.users.Update(ctx, admin.Email, func(a *account) error {
			a.Username = AdminUsername
			a.Name = AdminName
			a.Role = RoleAdmin
			a.PasswordHash = hash
			a.UpdatedAt = now
			return nil
		})
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("seeded administrator account", zap.String("email", admin.Email))
	return true, nil
}

// SignupInput is a public registration.
type SignupInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Signup registers a user on the lowest plan.
func (s *Service) Signup(ctx context.Context, input SignupInput) (User, error) {
	return s.CreateUser(ctx, CreateUserInput{
		Name:     input.Name,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     RoleUser,
	})
}

// CreateUserInput is an admin-created account.
type CreateUserInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     Role
	// Plan defaults to the lowest-rank plan.
	Plan string
}

// CreateUser creates an account with any role.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.Email = validate.NormalizeEmail(input.Email)
	input.Plan = strings.TrimSpace(input.Plan)
	if input.Role == "" {
		input.Role = RoleUser
	}
	if err := validate.First(
		validate.Required("name", input.Name),
		validate.Email("email", input.Email),
		validate.Username("username", input.Username),
		validatePassword("password", input.Password),
	); err != nil {
		return User{}, err
	}
	if input.Plan == "" {
		plan, err := s.defaultPlan(ctx)
		if err != nil {
			return User{}, err
		}
		input.Plan = plan
	} else if err := s.checkPlan(ctx, input.Plan); err != nil {
		return User{}, err
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return User{}, err
	}
	now := s.now()
	record := account{
		User: User{
			Email:     input.Email,
			Username:  input.Username,
			Name:      input.Name,
			Role:      input.Role,
			Plan:      input.Plan,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, record); err != nil {
		return User{}, conflictField(err)
	}
	return record.User, nil
}

// Login authenticates by email (case-insensitive) or username. Every
// failure, including malformed input, returns ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, identifier string, password string) (User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" || len(password) > maxPasswordLength {
		return User{}, ErrInvalidCredentials
	}

	record, err := s.lookup(ctx, identifier)
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindNotFound) {
			return User{}, err
		}
		s.burnCompare(password)
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return record.User, nil
}

func (s *Service) lookup(ctx context.Context, identifier string) (account, error) {
	if strings.Contains(identifier, "@") {
		return s.users.Get(ctx, validate.NormalizeEmail(identifier))
	}
	return s.users.GetBy(ctx, UsernameIndex, strings.ToLower(identifier))
}

// burnCompare spends a bcrypt comparison so unknown identifiers take as long
// as wrong passwords.
func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.opts.BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

// User returns one user by email.
func (s *Service) User(ctx context.Context, email string) (User, error) {
	record, err := s.users.Get(ctx, validate.NormalizeEmail(email))
	if err != nil {
		return User{}, err
	}
	return record.User, nil
}

// DisplayName returns the name of the user with email.
func (s *Service) DisplayName(ctx context.Context, email string) (string, error) {
	user, err := s.User(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// EmailExists reports whether an account is stored under exactly email.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.Exists(ctx, email)
}

// UsernameExists reports whether exactly username is taken.
func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.users.ExistsBy(ctx, UsernameIndex, username)
}

// CountUsers returns the number of accounts.
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

// ProfileInput is the self-service profile form.
type ProfileInput struct {
	Name     string
	Username string
	Avatar   string
}

// UpdateProfile changes the caller's own name, username and avatar.
func (s *Service) UpdateProfile(ctx context.Context, email string, input ProfileInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	username := strings.ToLower(strings.TrimSpace(input.Username))
	avatar := strings.TrimSpace(input.Avatar)
	if err := validate.First(
		validate.Required("name", name),
		validate.Username("username", username),
		validate.URL("avatar", avatar),
	); err != nil {
		return User{}, err
	}
	return s.update(ctx, email, func(a *account) error {
		if a.Username == AdminUsername && username != AdminUsername {
			return validate.Invalid("username", "error.admin_username_locked", "the administrator username cannot change")
		}
		a.Name = name
		a.Username = username
		a.Avatar = avatar
		return nil
	})
}

// UpdateUserInput is the admin user edit form.
type UpdateUserInput struct {
	Name   string
	Role   Role
	Plan   string
	Avatar string
}

// UpdateUser changes name, role, plan and avatar of any user.
func (s *Service) UpdateUser(ctx context.Context, email string, input UpdateUserInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	plan := strings.TrimSpace(input.Plan)
	avatar := strings.TrimSpace(input.Avatar)
	if err := validate.First(validate.Required("name", name), validate.URL("avatar", avatar)); err != nil {
		return User{}, err
	}
	if !input.Role.Valid() {
		return User{}, validate.Invalid("role", "error.role_invalid", "unknown role %q", input.Role)
	}
	if err := s.checkPlan(ctx, plan); err != nil {
		return User{}, err
	}
	return s.update(ctx, email, func(a *account) error {
		a.Name = name
		a.Role = input.Role
		a.Plan = plan
		a.Avatar = avatar
		return nil
	})
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, email string, current string, next string) error {
	if err := validatePassword("newPassword", next); err != nil {
		return err
	}
	record, err := s.users.Get(ctx, validate.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(current)) != nil {
		return validate.Invalid("currentPassword", "error.current_password", "current password is incorrect")
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	_, err = s.update(ctx, email, func(a *account) error {
		a.PasswordHash = hash
		return nil
	})
	return err
}

// UpgradePlan moves a user to a higher-ranked plan.
func (s *Service) UpgradePlan(ctx context.Context, email string, planID string) (User, error) {
	plans, err := s.plans.Get(ctx)
	if err != nil {
		return User{}, fmt.Errorf("load plans: %w", err)
	}
	target, ok := plans.Find(strings.TrimSpace(planID))
	if !ok {
		return User{}, validate.Invalid("plan", "error.plan_unknown", "unknown plan %q", planID)
	}
	return s.update(ctx, email, func(a *account) error {
		currentRank := -1 << 31
		if current, ok := plans.Find(a.Plan); ok {
			currentRank = current.Rank
		}
		if target.Rank <= currentRank {
			return validate.Invalid("plan", "error.plan_not_upgrade", "plan %q is not an upgrade", target.ID)
		}
		a.Plan = target.ID
		return nil
	})
}

// DeleteUsers removes accounts and returns how many existed.
func (s *Service) DeleteUsers(ctx context.Context, emails ...string) (int, error) {
	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		normalized = append(normalized, validate.NormalizeEmail(email))
	}
	return s.users.Delete(ctx, normalized...)
}

func (s *Service) update(ctx context.Context, email string, mutate func(*account) error) (User, error) {
	record, err := s.users.Update(ctx, validate.NormalizeEmail(email), func(a *account) error {
		if err := mutate(a); err != nil {
			return err
		}
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return User{}, conflictField(err)
	}
	return record.User, nil
}

func (s *Service) defaultPlan(ctx context.Context) (string, error) {
	if s.plans == nil {
		return "", nil
	}
	plans, err := s.plans.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load plans: %w", err)
	}
	lowest, ok := plans.Lowest()
	if !ok {
		return "", nil
	}
	return lowest.ID, nil
}

func (s *Service) checkPlan(ctx context.Context, planID string) error {
	if planID == "" || s.plans == nil {
		return nil
	}
	plans, err := s.plans.Get(ctx)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}
	if _, ok := plans.Find(planID); !ok {
		return validate.Invalid("plan", "error.plan_unknown", "unknown plan %q", planID)
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) now() time.Time {
	return s.opts.Clock().UTC()
}

func validatePassword(field string, password string) error {
	if len(password) < MinPasswordLength {
		return validate.Invalid(field, "error.password_short", "password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return validate.Invalid(field, "error.password_long", "password must be at most %d bytes", maxPasswordLength)
	}
	return nil
}

func validateAccount(a account) error {
	if !a.Role.Valid() {
		return validate.Invalid("role", "error.role_invalid", "unknown role %q", a.Role)
	}
	return nil
}

// conflictField maps collection conflicts onto the signup form fields.
func conflictField(err error) error {
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		return err
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Field {
	case content.KeyField:
		return apperrors.Field(apperrors.KindConflict, "email", "error.conflict.email", "email already registered")
	case UsernameIndex:
		return apperrors.Field(apperrors.KindConflict, "username", "error.conflict.username", "username already taken")
	default:
		return err
	}
}
