package impl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"storefront/config"
	domainerrors "storefront/internal/domain/errors"
)

const defaultMinPasswordLength = 8

// validatePasswordStrength applies the configured password rules. A nil policy only
// enforces the default minimum length.
func validatePasswordStrength(policy *config.PasswordStrengthConfig, password string) error {
	minLength := defaultMinPasswordLength
	if policy != nil && policy.MinLength > 0 {
		minLength = policy.MinLength
	}

	length := utf8.RuneCountInString(password)
	var problems []string
	if length < minLength {
		problems = append(problems, "too short")
	}
	if policy != nil && policy.MaxLength > 0 && length > policy.MaxLength {
		problems = append(problems, "too long")
	}

	if policy != nil {
		var hasUpper, hasLower, hasDigit, hasSpecial bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				hasSpecial = true
			}
		}

		if policy.RequireUppercase && !hasUpper {
			problems = append(problems, "needs an uppercase letter")
		}
		if policy.RequireLowercase && !hasLower {
			problems = append(problems, "needs a lowercase letter")
		}
		if policy.RequireNumbers && !hasDigit {
			problems = append(problems, "needs a digit")
		}
		if policy.RequireSpecial && !hasSpecial {
			problems = append(problems, "needs a special character")
		}
	}

	if len(problems) > 0 {
		return domainerrors.ErrPasswordStrength.WithDetails(strings.Join(problems, ", "))
	}

	return nil
}
