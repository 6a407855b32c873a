package auth

import (
	"strings"

	"github.com/jrsteele09/seniorinteract/users"
)

// RegistrationRequest holds the fields of the sign-up form
type RegistrationRequest struct {
	Email     string
	Password  string
	Name      string
	Surname   string
	RUT       string         // National identifier, e.g. 12345678-5
	Role      users.RoleType // Empty means users.RoleEndUser
	BirthDate string         // YYYY-MM-DD, optional
	Phone     string         // Optional
}

// Normalize trims surrounding whitespace from the free-text fields. The
// password is left untouched.
func (r RegistrationRequest) Normalize() RegistrationRequest {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.RUT = strings.TrimSpace(r.RUT)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

// Metadata returns the profile sent to the provider with the new account
func (r RegistrationRequest) Metadata() users.Metadata {
	return users.Metadata{
		Name:      r.Name,
		Surname:   r.Surname,
		RUT:       r.RUT,
		Role:      r.Role,
		BirthDate: r.BirthDate,
		Phone:     r.Phone,
	}.Resolve()
}
