package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOTPFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := GenerateOTP()

		assert.Len(t, code, OTPLength)
		assert.True(t, ValidateOTPFormat(code))
	}
}

func TestValidateOTPFormat(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"12 456", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidateOTPFormat(tt.code), "code %q", tt.code)
	}
}
