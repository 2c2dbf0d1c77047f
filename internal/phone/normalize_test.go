package phone

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCountry(t *testing.T, dial string) Country {
	t.Helper()
	c, ok := LookupDialCode(dial)
	require.True(t, ok, "dial code %s missing from table", dial)
	return c
}

func TestNormalize_DomesticValid(t *testing.T) {
	india := Default()
	for lead := '6'; lead <= '9'; lead++ {
		digits := fmt.Sprintf("%c876543210", lead)[:10]
		res := Normalize(digits, india)
		require.True(t, res.OK, "expected %s to be valid: %v", digits, res.Err)
		assert.Equal(t, "+91", res.DialCode)
		assert.Equal(t, digits, res.SubscriberDigits)
		assert.Equal(t, "+91 "+digits, res.Display())
		assert.Equal(t, "+91"+digits, res.E164())
		assert.False(t, res.CountryOverridden)
	}
}

func TestNormalize_DomesticRejects(t *testing.T) {
	india := Default()
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"too short", "987654321", ErrDomesticLength},
		{"too long", "98765432101", ErrDomesticLength},
		{"leading zero", "0876543210", ErrDomesticLeadingDigit},
		{"leading five", "5876543210", ErrDomesticLeadingDigit},
		{"empty", "   ", ErrMissingNumber},
		{"letters only", "abc", ErrMissingNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.input, india)
			assert.False(t, res.OK)
			assert.True(t, errors.Is(res.Err, tt.want), "got %v", res.Err)
			assert.Empty(t, res.Display())
		})
	}
}

func TestNormalize_StripsFormatting(t *testing.T) {
	res := Normalize("(987) 654-3210", Default())
	require.True(t, res.OK)
	assert.Equal(t, "9876543210", res.SubscriberDigits)
}

func TestNormalize_InternationalLengths(t *testing.T) {
	uk := mustCountry(t, "+44")
	assert.True(t, Normalize("1234", uk).OK)
	assert.True(t, Normalize("12345678901234", uk).OK)

	res := Normalize("123", uk)
	assert.ErrorIs(t, res.Err, ErrSubscriberLength)
	res = Normalize("123456789012345", uk)
	assert.ErrorIs(t, res.Err, ErrSubscriberLength)

	// Domestic leading-digit rule does not apply elsewhere.
	assert.True(t, Normalize("0207946000", uk).OK)
}

func TestNormalize_ExplicitPrefixOverridesSelection(t *testing.T) {
	res := Normalize("+971 50 123 4567", Default())
	require.True(t, res.OK)
	assert.True(t, res.CountryOverridden)
	assert.Equal(t, "AE", res.Country.ISOCode)
	assert.Equal(t, "+971", res.DialCode)
	assert.Equal(t, "501234567", res.SubscriberDigits)
}

func TestNormalize_SharedDialCodeKeepsSelectedCountry(t *testing.T) {
	canada, ok := LookupISO("CA")
	require.True(t, ok)
	res := Normalize("+1 416 555 0199", canada)
	require.True(t, res.OK, res.Err)
	assert.False(t, res.CountryOverridden)
	assert.Equal(t, "CA", res.Country.ISOCode)
	assert.Equal(t, "4165550199", res.SubscriberDigits)

	res = Normalize("+1 416 555 0199", Default())
	require.True(t, res.OK, res.Err)
	assert.True(t, res.CountryOverridden)
	assert.Equal(t, "+1", res.DialCode)
}

func TestNormalize_ExplicitPrefixPicksLongestMatch(t *testing.T) {
	res := Normalize("+1876 555 1234", Default())
	require.True(t, res.OK)
	assert.Equal(t, "JM", res.Country.ISOCode)
	assert.Equal(t, "5551234", res.SubscriberDigits)
}

func TestNormalize_ExplicitDomesticStillValidated(t *testing.T) {
	uk := mustCountry(t, "+44")
	res := Normalize("+91 1234567890", uk)
	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Err, ErrDomesticLeadingDigit)
	assert.Equal(t, "+91", res.DialCode)
}

func TestNormalize_ShortExplicitSuffixKeepsSelection(t *testing.T) {
	// "+44 12" leaves fewer than four subscriber digits, so the typed prefix
	// is ignored and all digits are treated as the subscriber number.
	uk := mustCountry(t, "+44")
	res := Normalize("+44 12", Default())
	assert.False(t, res.OK)
	assert.Equal(t, "+91", res.DialCode)
	assert.NotEqual(t, uk, res.Country)
}

func TestNormalize_MissingCountry(t *testing.T) {
	res := Normalize("9876543210", Country{})
	assert.ErrorIs(t, res.Err, ErrMissingCountry)
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize("9876543210", Default())
	second := Normalize(first.SubscriberDigits, first.Country)
	assert.Equal(t, first, second)

	intl := Normalize("+4420 7946 0000", Default())
	require.True(t, intl.OK)
	again := Normalize(intl.SubscriberDigits, intl.Country)
	assert.Equal(t, intl.SubscriberDigits, again.SubscriberDigits)
	assert.Equal(t, intl.Country, again.Country)
}

func TestValidationErrorMessages(t *testing.T) {
	assert.Equal(t, "Indian mobile numbers must be 10 digits long.", ErrDomesticLength.Error())
	assert.Equal(t, "Indian mobile numbers must start with 6, 7, 8, or 9.", ErrDomesticLeadingDigit.Error())
}
