package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCategory     = errors.New("invalid honey category")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 10")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAlreadyBeekeeper    = errors.New("user is already a beekeeper")
	ErrPhoneTaken          = errors.New("phone number is already registered to a beekeeper")
	ErrNotBeekeeper        = errors.New("user is not a beekeeper")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// ValidationError collects per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Identity error codes.
const (
	CodeDuplicateUserName               = "DuplicateUserName"
	CodeDuplicateEmail                  = "DuplicateEmail"
	CodeInvalidUserName                 = "InvalidUserName"
	CodeInvalidEmail                    = "InvalidEmail"
	CodeInvalidPassword                 = "InvalidPassword"
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodeUserAlreadyHasPassword          = "UserAlreadyHasPassword"
	CodeUserLockoutNotEnabled           = "UserLockoutNotEnabled"
	CodeUserAlreadyInRole               = "UserAlreadyInRole"
	CodeUserNotInRole                   = "UserNotInRole"
	CodeInvalidToken                    = "InvalidToken"
	CodeRecoveryCodeRedemptionFailed    = "RecoveryCodeRedemptionFailed"
	CodeConcurrencyFailure              = "ConcurrencyFailure"
	CodeDefaultIdentityError            = "DefaultIdentityError"
)

var friendlyMessages = map[string]string{
	CodeDuplicateUserName:               "A user with this name already exists.",
	CodeDuplicateEmail:                  "A user with this email address already exists.",
	CodeInvalidUserName:                 "Invalid user name.",
	CodeInvalidEmail:                    "Invalid email address.",
	CodeInvalidPassword:                 "Invalid password.",
	CodePasswordTooShort:                "The password is too short.",
	CodePasswordRequiresNonAlphanumeric: "The password must contain at least one character that is not a letter or digit.",
	CodePasswordRequiresDigit:           "The password must contain at least one digit.",
	CodePasswordRequiresLower:           "The password must contain at least one lowercase letter.",
	CodePasswordRequiresUpper:           "The password must contain at least one uppercase letter.",
	CodeUserAlreadyHasPassword:          "The user already has a password.",
	CodeUserLockoutNotEnabled:           "User lockout is not enabled.",
	CodeUserAlreadyInRole:               "The user is already in this role.",
	CodeUserNotInRole:                   "The user is not in this role.",
	CodeInvalidToken:                    "Invalid token.",
	CodeRecoveryCodeRedemptionFailed:    "Recovery code redemption failed.",
	CodeConcurrencyFailure:              "Concurrency failure. The operation was aborted.",
	CodeDefaultIdentityError:            "An error occurred while creating the user.",
}

// FriendlyMessage maps an identity error code to a user-facing sentence.
func FriendlyMessage(code string) string {
	if msg, ok := friendlyMessages[code]; ok {
		return msg
	}
	return "Error: " + code
}

// IdentityError is returned by registration with one or more identity codes.
type IdentityError struct {
	Codes []string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("identity: %s", strings.Join(e.Codes, ", "))
}

// Messages returns the friendly text for every code.
func (e *IdentityError) Messages() []string {
	msgs := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		msgs[i] = FriendlyMessage(c)
	}
	return msgs
}

func (e *IdentityError) Has(code string) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}
