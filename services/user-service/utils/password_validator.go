package utils

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < 12 {
		return errors.New("password must be at least 12 characters long")
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSpecial {
		return errors.New("password must contain at least one special character")
	}

	commonPasswords := []string{
		"password", "Password123!", "Admin123!", "Welcome123!",
		"Qwerty123!", "Abc123456!", "Passw0rd!",
	}
	for _, common := range commonPasswords {
		if password == common {
			return errors.New("password is too common, please choose a different one")
		}
	}

	runes := []rune(password)
	for i := 0; i+3 < len(runes); i++ {
		if runes[i] == runes[i+1] && runes[i] == runes[i+2] && runes[i] == runes[i+3] {
			return errors.New("password cannot contain more than 3 consecutive repeating characters")
		}
	}

	return nil
}
