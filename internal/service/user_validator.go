package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"microblog/internal/errors"
	"microblog/internal/repository"
)

const (
	maxNameLength     = 50
	maxEmailLength    = 255
	minPasswordLength = 6
)

// emailPattern is a conservative email shape: local part of word characters,
// plus, minus and dots, then a dot-separated lower-case domain. Input is
// lower-cased before matching, so the pattern only needs the normalized form.
var emailPattern = regexp.MustCompile(`^[\w+\-.]+@[a-z\d\-]+(\.[a-z\d\-]+)*\.[a-z]+$`)

// NormalizeEmail lower-cases and trims an email address. Every write path
// runs through this before comparison or persistence.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// rule pairs a predicate with the field error reported when it fails.
// Rules are evaluated in order and in full; validation never stops at the
// first failure.
type rule struct {
	field   string
	code    string
	message string
	ok      func() bool
}

func runRules(rules []rule) errors.ValidationErrors {
	var errs errors.ValidationErrors
	for _, r := range rules {
		if !r.ok() {
			errs = append(errs, errors.FieldError{Field: r.field, Code: r.code, Message: r.message})
		}
	}
	return errs
}

// UserValidator validates user attributes against the validation rules and
// the store (for email uniqueness).
type UserValidator struct {
	users repository.UserRepository
}

// NewUserValidator creates a new user validator.
func NewUserValidator(users repository.UserRepository) *UserValidator {
	return &UserValidator{users: users}
}

// ValidateNew checks every rule for a user being created: name and email
// presence/length/shape, case-insensitive email uniqueness, and the password
// rules. All violations are collected.
func (v *UserValidator) ValidateNew(ctx context.Context, name, email, password, confirmation string) error {
	errs, err := v.validateProfile(ctx, 0, name, email)
	if err != nil {
		return err
	}
	errs = append(errs, passwordRules(password, confirmation)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateProfile checks name and email for an existing user; excludeID keeps
// the uniqueness rule from tripping over the record being edited.
func (v *UserValidator) ValidateProfile(ctx context.Context, excludeID uint, name, email string) error {
	errs, err := v.validateProfile(ctx, excludeID, name, email)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidatePassword checks the password rules alone, for password changes.
func (v *UserValidator) ValidatePassword(password, confirmation string) error {
	if errs := passwordRules(password, confirmation); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *UserValidator) validateProfile(ctx context.Context, excludeID uint, name, email string) (errors.ValidationErrors, error) {
	normalized := NormalizeEmail(email)

	// The uniqueness lookup happens up front so the rule list itself stays
	// side-effect free. A store failure propagates unchanged.
	taken := false
	if normalized != "" {
		var err error
		taken, err = v.users.EmailTaken(ctx, normalized, excludeID)
		if err != nil {
			return nil, err
		}
	}

	rules := []rule{
		{"name", errors.CodeBlank, "can't be blank", func() bool { return strings.TrimSpace(name) != "" }},
		{"name", errors.CodeTooLong, "is too long (maximum is 50 characters)", func() bool { return utf8.RuneCountInString(name) <= maxNameLength }},
		{"email", errors.CodeBlank, "can't be blank", func() bool { return normalized != "" }},
		{"email", errors.CodeTooLong, "is too long (maximum is 255 characters)", func() bool { return utf8.RuneCountInString(normalized) <= maxEmailLength }},
		{"email", errors.CodeInvalidFormat, "is invalid", func() bool { return normalized == "" || emailPattern.MatchString(normalized) }},
		{"email", errors.CodeTaken, "has already been taken", func() bool { return !taken }},
	}
	return runRules(rules), nil
}

func passwordRules(password, confirmation string) errors.ValidationErrors {
	return runRules([]rule{
		{"password", errors.CodeBlank, "can't be blank", func() bool { return password != "" || confirmation != "" }},
		{"password", errors.CodeTooShort, "is too short (minimum is 6 characters)", func() bool { return password == "" || utf8.RuneCountInString(password) >= minPasswordLength }},
		{"password_confirmation", errors.CodeConfirmationMismatch, "doesn't match password", func() bool { return password == confirmation }},
	})
}
