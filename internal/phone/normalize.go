package phone

import (
	"regexp"
	"strings"
)

// ValidationError is a user-facing rejection reason. Compare with errors.Is
// against the exported sentinels.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingNumber        = &ValidationError{Reason: "missing_number", Message: "Please enter a valid phone number."}
	ErrMissingCountry       = &ValidationError{Reason: "missing_country", Message: "Please select a country code from the dropdown."}
	ErrInvalidCharacters    = &ValidationError{Reason: "invalid_characters", Message: "Phone numbers should contain digits and an optional +."}
	ErrDomesticLength       = &ValidationError{Reason: "domestic_length", Message: "Indian mobile numbers must be 10 digits long."}
	ErrDomesticLeadingDigit = &ValidationError{Reason: "domestic_leading_digit", Message: "Indian mobile numbers must start with 6, 7, 8, or 9."}
	ErrSubscriberLength     = &ValidationError{Reason: "subscriber_length", Message: "Please enter a valid mobile number for the selected country."}
)

const (
	minSubscriberDigits = 4
	maxSubscriberDigits = 14
	domesticDigits      = 10
)

var (
	nonDigits       = regexp.MustCompile(`\D`)
	phonePunctation = regexp.MustCompile(`[\s().-]`)
	explicitNumber  = regexp.MustCompile(`^\+\d+$`)
)

// Result is the outcome of a single normalization attempt.
type Result struct {
	OK               bool
	DialCode         string
	SubscriberDigits string
	Country          Country
	// CountryOverridden is set when a typed "+<code>" prefix picked a
	// different country than the one selected in the UI.
	CountryOverridden bool
	Err               error
}

// Display renders the number as "{dialCode} {subscriberDigits}".
func (r Result) Display() string {
	if !r.OK {
		return ""
	}
	return r.DialCode + " " + r.SubscriberDigits
}

// E164 returns the dial code and subscriber digits joined.
func (r Result) E164() string {
	if !r.OK {
		return ""
	}
	return r.DialCode + r.SubscriberDigits
}

// Normalize validates raw phone input against the selected country.
//
// Digits are always combined with the selected dial code, except when the
// raw input itself starts with "+" and longest-prefix matches a known dial
// code leaving at least four subscriber digits; then the typed country wins.
func Normalize(raw string, selected Country) Result {
	trimmed := strings.TrimSpace(raw)
	digits := nonDigits.ReplaceAllString(trimmed, "")
	if digits == "" {
		return fail(ErrMissingNumber, selected)
	}

	country := selected
	subscriber := digits
	overridden := false

	if strings.HasPrefix(trimmed, "+") {
		stripped := phonePunctation.ReplaceAllString(trimmed, "")
		if explicitNumber.MatchString(stripped) {
			if match, ok := MatchPrefix(stripped); ok {
				rest := stripped[len(match.DialCode):]
				if len(rest) >= minSubscriberDigits {
					// Dial codes shared by several countries keep the selection.
					if match.DialCode != selected.DialCode {
						country = match
						overridden = true
					}
					subscriber = rest
				}
			}
		}
	}

	if country.IsZero() {
		return fail(ErrMissingCountry, selected)
	}
	if err := ValidateSubscriber(country.DialCode, subscriber); err != nil {
		return fail(err, country)
	}

	return Result{
		OK:                true,
		DialCode:          country.DialCode,
		SubscriberDigits:  subscriber,
		Country:           country,
		CountryOverridden: overridden,
	}
}

// ValidateSubscriber applies the per-country length and prefix rules.
func ValidateSubscriber(dialCode, subscriber string) error {
	if subscriber == "" {
		return ErrMissingNumber
	}
	if nonDigits.MatchString(subscriber) {
		return ErrInvalidCharacters
	}
	if dialCode == DomesticDialCode {
		return ValidateDomestic(subscriber)
	}
	if len(subscriber) < minSubscriberDigits || len(subscriber) > maxSubscriberDigits {
		return ErrSubscriberLength
	}
	return nil
}

// ValidateDomestic checks a +91 subscriber number: ten digits, leading 6-9.
func ValidateDomestic(subscriber string) error {
	if nonDigits.MatchString(subscriber) {
		return ErrInvalidCharacters
	}
	if len(subscriber) != domesticDigits {
		return ErrDomesticLength
	}
	switch subscriber[0] {
	case '6', '7', '8', '9':
		return nil
	default:
		return ErrDomesticLeadingDigit
	}
}

func fail(err error, country Country) Result {
	return Result{Country: country, DialCode: country.DialCode, Err: err}
}
