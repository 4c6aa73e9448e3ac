package utils

import (
	"fmt"
	"math/rand"
)

// OTPLength is the number of digits in a signup code.
const OTPLength = 6

// GenerateOTP generates a random 6-digit decimal code.
func GenerateOTP() string {
	number := rand.Intn(900000) + 100000 // 100000-999999
	return fmt.Sprintf("%d", number)
}

// ValidateOTPFormat checks that a submitted code is exactly six digits.
func ValidateOTPFormat(code string) bool {
	if len(code) != OTPLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
