package validation

import (
	"errors"
	"net/mail"
	"strings"
)

const (
	MinPasswordLength = 12
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
	maxEmailLength   = 254
)

var weakPasswordFragments = []string{
	"password", "123456", "qwerty", "letmein", "admin", "welcome", "stockpile",
}

// NormalizeEmail trims and lowercases raw and checks it is a bare RFC 5322
// address. Display-name forms such as "Ann <ann@example.com>" are rejected.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email address is required")
	}
	if len(email) > maxEmailLength {
		return "", errors.New("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.New("invalid email address format")
	}
	return email, nil
}

// ValidatePassword enforces length bounds and rejects well-known weak passwords.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return errors.New("password must be at least 12 characters")
	case len(password) > MaxPasswordBytes:
		return errors.New("password must not exceed 72 bytes")
	case strings.Count(password, password[:1]) == len(password):
		return errors.New("password must not repeat a single character")
	}

	lower := strings.ToLower(password)
	for _, fragment := range weakPasswordFragments {
		if strings.Contains(lower, fragment) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}
	return nil
}
