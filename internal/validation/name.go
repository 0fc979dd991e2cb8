package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const MaxNameLength = 120

// ValidateName validates attribute and asset names
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return errors.New("name is too long (max 120 characters)")
	}

	return nil
}
