// Package validation holds the declarative input checks for users,
// organisations, and membership requests. All rules for a record are
// evaluated and reported together; callers never see only the first
// violation.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/foyerhq/foyer/internal/apperror"
)

// passwordSymbols is the punctuation set accepted by the password policy.
const passwordSymbols = `!@#$%^&*()_+-=[]{};'":,.<>/?`

const minNameLength = 3

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserInput is a candidate user record as submitted at signup.
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// OrganisationInput is a candidate organisation record.
type OrganisationInput struct {
	Name        string
	Description string
}

// MembershipInput is a candidate membership-add request.
type MembershipInput struct {
	UserID string
}

// User validates a signup record. It returns nil when valid, otherwise a
// validation error carrying every violated rule.
func User(in UserInput) *apperror.Error {
	var fields []apperror.FieldError

	fields = appendNameError(fields, "firstName", in.FirstName)
	fields = appendNameError(fields, "lastName", in.LastName)

	switch {
	case in.Email == "":
		fields = append(fields, apperror.FieldError{Field: "email", Message: "email is required"})
	case !emailPattern.MatchString(in.Email):
		fields = append(fields, apperror.FieldError{Field: "email", Message: "email must be a valid email address"})
	}

	if in.Phone == "" {
		fields = append(fields, apperror.FieldError{Field: "phone", Message: "phone is required"})
	}

	switch {
	case in.Password == "":
		fields = append(fields, apperror.FieldError{Field: "password", Message: "password is required"})
	case !strongPassword(in.Password):
		fields = append(fields, apperror.FieldError{Field: "password", Message: "password not strong enough"})
	}

	if len(fields) > 0 {
		return apperror.Validation(fields...)
	}
	return nil
}

// Organisation validates an organisation record. Description is optional
// and may be empty.
func Organisation(in OrganisationInput) *apperror.Error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.Validation(apperror.FieldError{Field: "name", Message: "name is required"})
	}
	return nil
}

// MembershipAdd validates a membership-add request.
func MembershipAdd(in MembershipInput) *apperror.Error {
	if in.UserID == "" {
		return apperror.Validation(apperror.FieldError{Field: "userId", Message: "userId is required"})
	}
	return nil
}

func appendNameError(fields []apperror.FieldError, field, value string) []apperror.FieldError {
	switch {
	case value == "":
		return append(fields, apperror.FieldError{Field: field, Message: field + " is required"})
	case len(value) < minNameLength:
		return append(fields, apperror.FieldError{Field: field, Message: field + " must be at least 3 characters"})
	}
	return fields
}

// strongPassword reports whether pw satisfies the complexity policy:
// at least 8 characters with one lowercase letter, one uppercase letter,
// one digit, and one symbol from passwordSymbols.
func strongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
