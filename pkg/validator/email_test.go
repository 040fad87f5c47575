package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  error
	}{
		{"new@user.com", nil},
		{"  first.last+tag@sub.example.org ", nil},
		{"", ErrEmptyEmail},
		{"   ", ErrEmptyEmail},
		{"notanemail", ErrInvalidEmail},
		{"user@localhost", ErrInvalidEmail},
		{"user@@example.com", ErrInvalidEmail},
		{"user@-example.com", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.ErrorIs(t, ValidateEmail(tt.email), tt.want)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "new@user.com", NormalizeEmail("  New@User.COM "))
}
