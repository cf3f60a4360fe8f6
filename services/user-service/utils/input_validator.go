package utils

import (
	"errors"
	"regexp"
	"unicode"
	"unicode/utf8"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	namePattern     = regexp.MustCompile(`^[\p{L}\s'\-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	sqlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(union\s+select)`),
		regexp.MustCompile(`(?i)(insert\s+into)`),
		regexp.MustCompile(`(?i)(delete\s+from)`),
		regexp.MustCompile(`(?i)(drop\s+table)`),
		regexp.MustCompile(`(?i)(';\s*--)`),
		regexp.MustCompile(`(?i)(or\s+1\s*=\s*1)`),
	}
)

// ValidateUsername whitelists letters, digits, underscore and hyphen, starting with a letter.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 30 {
		return errors.New("username must be between 3 and 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	if !unicode.IsLetter(rune(username[0])) {
		return errors.New("username must start with a letter")
	}
	if ContainsSQLInjection(username) {
		return errors.New("username contains invalid patterns")
	}
	return nil
}

func ValidateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return errors.New("name must be between 2 and 50 characters")
	}
	if !namePattern.MatchString(name) {
		return errors.New("name contains invalid characters")
	}
	return nil
}

func ValidateEmail(email string) error {
	if len(email) < 5 || len(email) > 254 {
		return errors.New("email must be between 5 and 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

func ContainsSQLInjection(input string) bool {
	for _, p := range sqlPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}
