package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var bulgarianPhone = regexp.MustCompile(`^(\+359|0)[0-9]{8,9}$`)

// IsValidEmail accepts a bare address only, no display name.
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func IsValidPhone(phone string) bool {
	return bulgarianPhone.MatchString(phone)
}

// NormalizeEmail trims and lower-cases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}
