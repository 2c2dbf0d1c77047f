package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	name, err := ValidateName("  Raj  ")
	require.NoError(t, err)
	assert.Equal(t, "Raj", name)

	name, err = ValidateName("Mary-Jane O'Neil")
	require.NoError(t, err)
	assert.Equal(t, "Mary-Jane O'Neil", name)

	tests := []struct {
		input string
		want  error
	}{
		{"R", ErrNameTooShort},
		{"   ", ErrNameTooShort},
		{"98765 43210", ErrNameLooksLikePhone},
		{"+91 98765", ErrNameLooksLikePhone},
		{"Raj123", ErrNameInvalidChars},
		{"raj@example.com", ErrNameInvalidChars},
	}
	for _, tt := range tests {
		_, err := ValidateName(tt.input)
		assert.ErrorIs(t, err, tt.want, tt.input)
	}
}
