package security

import (
	"strings"
	"unicode"
)

const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// CheckPasswordStrength validates the signup password policy: at least 8
// characters with an upper-case letter, a lower-case letter, a digit and a
// special character. Returns every failed requirement as one message.
func CheckPasswordStrength(password string) (bool, string) {
	var problems []string

	if len(password) < 8 {
		problems = append(problems, "need more than 8 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		problems = append(problems, "at least one uppercase letter is required")
	}
	if !hasLower {
		problems = append(problems, "at least one lowercase letter is required")
	}
	if !hasDigit {
		problems = append(problems, "at least one digit is required")
	}
	if !hasSpecial {
		problems = append(problems, "at least one special character is required")
	}

	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	return true, ""
}
