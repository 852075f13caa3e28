package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Marcel-mosha/task-manager/config"
)

const defaultMinPasswordLength = 8

// bcrypt rejects anything longer than 72 bytes.
const maxPasswordLength = 72

// PasswordValidator checks one aspect of password strength. The username
// and email of the registering account are provided for similarity checks.
type PasswordValidator func(password, username, email string) error

// PasswordPolicy is an ordered list of validators. The first failure wins.
type PasswordPolicy struct {
	validators []PasswordValidator
}

// DefaultPasswordPolicy builds the standard policy from config: minimum
// length, maximum length, not purely numeric, and not too similar to the
// account's username or email.
func DefaultPasswordPolicy(cfg config.PasswordConfig) PasswordPolicy {
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = defaultMinPasswordLength
	}
	return NewPasswordPolicy(
		MinLengthValidator(minLength),
		MaxLengthValidator(maxPasswordLength),
		NotNumericValidator(),
		NotSimilarValidator(),
	)
}

func NewPasswordPolicy(validators ...PasswordValidator) PasswordPolicy {
	return PasswordPolicy{validators: validators}
}

// Validate runs every validator in order and wraps the first failure in
// ErrWeakPassword.
func (p PasswordPolicy) Validate(password, username, email string) error {
	for _, validate := range p.validators {
		if err := validate(password, username, email); err != nil {
			return weakPassword(err.Error())
		}
	}
	return nil
}

func MinLengthValidator(minLength int) PasswordValidator {
	return func(password, _, _ string) error {
		if len(password) < minLength {
			return fmt.Errorf("password must be at least %d characters", minLength)
		}
		return nil
	}
}

func MaxLengthValidator(maxLength int) PasswordValidator {
	return func(password, _, _ string) error {
		if len(password) > maxLength {
			return fmt.Errorf("password must be at most %d characters", maxLength)
		}
		return nil
	}
}

func NotNumericValidator() PasswordValidator {
	return func(password, _, _ string) error {
		for _, r := range password {
			if !unicode.IsDigit(r) {
				return nil
			}
		}
		return fmt.Errorf("password cannot be entirely numeric")
	}
}

// NotSimilarValidator rejects passwords that contain, or are contained
// in, the username or the local part of the email (case-insensitive).
func NotSimilarValidator() PasswordValidator {
	return func(password, username, email string) error {
		lowered := strings.ToLower(password)
		for _, attr := range []string{username, emailLocalPart(email)} {
			attr = strings.ToLower(strings.TrimSpace(attr))
			if len(attr) < 3 {
				continue
			}
			if strings.Contains(lowered, attr) || strings.Contains(attr, lowered) {
				return fmt.Errorf("password is too similar to the username or email")
			}
		}
		return nil
	}
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
