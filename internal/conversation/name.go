package conversation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrNameTooShort       = errors.New("Please enter a valid name (at least 2 characters).")
	ErrNameInvalidChars   = errors.New("Please enter a valid name (letters only).")
	ErrNameLooksLikePhone = errors.New("Please enter your name, not a phone number.")
)

var (
	namePattern      = regexp.MustCompile(`^[a-zA-Z\s'-]{2,50}$`)
	phoneLikePattern = regexp.MustCompile(`^[\d+\s\-()]+$`)
)

// ValidateName trims and checks a visitor name. The returned error text is
// safe to show to the visitor.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) < 2 {
		return "", ErrNameTooShort
	}
	if phoneLikePattern.MatchString(strings.ReplaceAll(name, " ", "")) {
		return "", ErrNameLooksLikePhone
	}
	if !namePattern.MatchString(name) {
		return "", ErrNameInvalidChars
	}
	return name, nil
}
