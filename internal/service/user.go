package service

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/config"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const MaxProfilePictureSize = 5 << 20

var profilePictureExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// PasswordPolicy mirrors the configurable identity password rules.
type PasswordPolicy struct {
	MinLength       int
	RequireDigit    bool
	RequireLower    bool
	RequireUpper    bool
	RequireNonAlnum bool
}

func PolicyFromConfig(cfg *config.Config) PasswordPolicy {
	return PasswordPolicy{
		MinLength:       cfg.PasswordMinLength,
		RequireDigit:    cfg.PasswordRequireDigit,
		RequireLower:    cfg.PasswordRequireLower,
		RequireUpper:    cfg.PasswordRequireUpper,
		RequireNonAlnum: cfg.PasswordRequireNonAlnum,
	}
}

// Check returns the identity codes the password violates.
func (p PasswordPolicy) Check(password string) []string {
	var codes []string
	if len([]rune(password)) < p.MinLength {
		codes = append(codes, CodePasswordTooShort)
	}
	var digit, lower, upper, other bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			other = true
		}
	}
	if p.RequireNonAlnum && !other {
		codes = append(codes, CodePasswordRequiresNonAlphanumeric)
	}
	if p.RequireDigit && !digit {
		codes = append(codes, CodePasswordRequiresDigit)
	}
	if p.RequireLower && !lower {
		codes = append(codes, CodePasswordRequiresLower)
	}
	if p.RequireUpper && !upper {
		codes = append(codes, CodePasswordRequiresUpper)
	}
	return codes
}

type RegisterForm struct {
	Email              string
	Password           string
	ConfirmPassword    string
	FirstName          string
	LastName           string
	PhoneNumber        string
	ProfilePicturePath string
}

// ValidateProfilePicture checks an upload's name and size before it is stored.
func ValidateProfilePicture(filename string, size int64) error {
	if size > MaxProfilePictureSize {
		return &ValidationError{Fields: map[string]string{"profile_picture": "The profile picture must be at most 5 MB."}}
	}
	if !profilePictureExts[strings.ToLower(filepath.Ext(filename))] {
		return &ValidationError{Fields: map[string]string{"profile_picture": "Only .jpg, .jpeg, .png and .gif pictures are allowed."}}
	}
	return nil
}

type UserService struct {
	Store  *store.Store
	Policy PasswordPolicy
}

// Register creates a user account. Form problems are returned as a
// *ValidationError, identity rule violations as an *IdentityError.
func (s *UserService) Register(ctx context.Context, f RegisterForm) (*models.User, error) {
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)

	v := &ValidationError{}
	if !lengthBetween(f.FirstName, 1, 50) {
		v.add("first_name", "First name must be between 1 and 50 characters.")
	}
	if !lengthBetween(f.LastName, 1, 50) {
		v.add("last_name", "Last name must be between 1 and 50 characters.")
	}
	if f.PhoneNumber != "" && !IsValidPhone(f.PhoneNumber) {
		v.add("phone_number", "Enter a valid Bulgarian phone number.")
	}
	if f.Password != f.ConfirmPassword {
		v.add("confirm_password", "The password and confirmation password do not match.")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	idErr := &IdentityError{}
	if !IsValidEmail(f.Email) {
		idErr.Codes = append(idErr.Codes, CodeInvalidEmail)
	}
	idErr.Codes = append(idErr.Codes, s.Policy.Check(f.Password)...)
	if len(idErr.Codes) == 0 {
		ok, err := s.CanCreateUser(ctx, f.Email)
		if err != nil {
			return nil, err
		}
		if !ok {
			idErr.Codes = append(idErr.Codes, CodeDuplicateEmail)
		}
	}
	if len(idErr.Codes) > 0 {
		return nil, idErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:              f.Email,
		FirstName:          f.FirstName,
		LastName:           f.LastName,
		PhoneNumber:        f.PhoneNumber,
		PasswordHash:       string(hash),
		ProfilePicturePath: f.ProfilePicturePath,
	}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CanCreateUser reports whether the email is still free.
func (s *UserService) CanCreateUser(ctx context.Context, email string) (bool, error) {
	u, err := s.Store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return false, err
	}
	return u == nil, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.Store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *UserService) All(ctx context.Context) ([]models.User, error) {
	return s.Store.ListUsers(ctx)
}

// Promote grants the admin role to an existing account.
func (s *UserService) Promote(ctx context.Context, email string) (*models.User, error) {
	u, err := s.Store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	if err := s.Store.SetUserAdmin(ctx, u.ID, true); err != nil {
		return nil, notFound(err)
	}
	u.IsAdmin = true
	return u, nil
}

// CreateAdmin registers an admin account without the password policy.
func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !IsValidEmail(email) || password == "" {
		return nil, ErrInvalidInput
	}
	ok, err := s.CanCreateUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &IdentityError{Codes: []string{CodeDuplicateEmail}}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        email,
		FirstName:    "Admin",
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
