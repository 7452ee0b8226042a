package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	tests := []struct {
		in      string
		display string
		search  string
	}{
		{in: "Quiz", display: "Quiz", search: "quiz"},
		{in: "  Quiz Night\t", display: "Quiz Night", search: "quiz night"},
		{in: "ÉCOLE", display: "ÉCOLE", search: "école"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.display, displayName(tt.in))
			assert.Equal(t, tt.search, searchName(tt.in))
		})
	}
}

func TestValidateUsername(t *testing.T) {
	name, err := ValidateUsername("  Ann  ", 2)
	assert.NoError(t, err)
	assert.Equal(t, "Ann", name)

	_, err = ValidateUsername(" A ", 2)
	assert.ErrorIs(t, err, ErrUsernameTooShort)
}
