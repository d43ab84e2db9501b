package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bloodbank/bloodbank-api/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email, password or role")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("not allowed for this role")
	ErrDonationNotFound   = errors.New("donation not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRequestFinalized   = errors.New("request has already been decided")
	ErrSelfDelete         = errors.New("cannot delete your own account")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

const maxNameLen = 100

var cnicPattern = regexp.MustCompile(`^\d{5}-?\d{7}-?\d$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateBloodType(bt models.BloodType) error {
	if !bt.Valid() {
		return invalid("bloodType", "must be one of %s", strings.Join(bloodTypeNames(), ", "))
	}
	return nil
}

func validateUnits(units int) error {
	if units < 1 {
		return invalid("units", "must be at least 1")
	}
	return nil
}

func validateName(name string) error {
	if len([]rune(name)) > maxNameLen {
		return invalid("name", "must be at most %d characters", maxNameLen)
	}
	return nil
}

func validateCNIC(cnic string) error {
	if cnic != "" && !cnicPattern.MatchString(cnic) {
		return invalid("cnic", "must look like 12345-1234567-1")
	}
	return nil
}

func bloodTypeNames() []string {
	names := make([]string, len(models.BloodTypes))
	for i, bt := range models.BloodTypes {
		names[i] = string(bt)
	}
	return names
}
