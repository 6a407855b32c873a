package auth

import (
	"fmt"
	"regexp"

	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/rut"
)

const defaultMinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator holds the form rules shared by registration, login and password
// recovery. Every failure wraps one of the validation sentinels so callers can
// pick the message to show.
type Validator struct {
	minPasswordLength int
}

// NewValidator creates a Validator; cfg may be nil to use the defaults
func NewValidator(cfg config.ValidationConfig) *Validator {
	v := &Validator{minPasswordLength: defaultMinPasswordLength}
	if cfg != nil && cfg.GetMinPasswordLength() > 0 {
		v.minPasswordLength = cfg.GetMinPasswordLength()
	}
	return v
}

// ValidateEmail checks the loose address shape the sign-in form accepts
func (v *Validator) ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword only enforces a minimum length, counted in characters
func (v *Validator) ValidatePassword(password string) error {
	if len([]rune(password)) < v.minPasswordLength {
		return fmt.Errorf("%w: need at least %d characters", errors.ErrPasswordTooShort, v.minPasswordLength)
	}
	return nil
}

// ValidateRUT requires the unformatted NNNNNNNN-D shape with a matching check digit
func (v *Validator) ValidateRUT(raw string) error {
	if !rut.Validate(raw) {
		return errors.ErrInvalidRUT
	}
	return nil
}

// ValidateRegistration checks required fields first, then email, password and
// RUT, stopping at the first failure.
func (v *Validator) ValidateRegistration(req RegistrationRequest) error {
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Surname == "" || req.RUT == "" {
		return errors.ErrRequiredFields
	}
	if err := v.ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := v.ValidatePassword(req.Password); err != nil {
		return err
	}
	return v.ValidateRUT(req.RUT)
}

// ValidateSignIn checks the login form
func (v *Validator) ValidateSignIn(email, password string) error {
	if err := v.ValidateEmail(email); err != nil {
		return err
	}
	return v.ValidatePassword(password)
}
