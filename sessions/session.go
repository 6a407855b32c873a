package sessions

import (
	"time"

	"github.com/jrsteele09/seniorinteract/rut"
	"github.com/jrsteele09/seniorinteract/users"
)

// UserSnapshot is a point-in-time copy of the authenticated user. It is never
// refreshed except by authenticating again.
type UserSnapshot struct {
	ID         string         // Provider user id (opaque)
	Email      string         // Login email
	Name       string         // Display name
	Surname    string         // Surname
	Identifier *rut.Value     // National identifier, nil when not provided
	Role       users.RoleType // Defaults to users.RoleEndUser
	BirthDate  string         // YYYY-MM-DD, empty when not provided
	Phone      string         // Empty when not provided
}

// Credentials are the tokens issued by the provider for this session.
type Credentials struct {
	AccessToken  string    // Bearer token (opaque)
	RefreshToken string    // Refresh token (opaque)
	RemoteExpiry int64     // Provider-defined expiry; not used for local expiry
	CreatedAt    time.Time // Set by Store.Save; drives local expiry
}

// Record is the single session held in the slot
type Record struct {
	User        UserSnapshot
	Credentials Credentials
}

// IsExpired reports whether more than ttl has elapsed since the record was
// saved. A record without a creation time is always expired.
func (r *Record) IsExpired(now time.Time, ttl time.Duration) bool {
	if r.Credentials.CreatedAt.IsZero() {
		return true
	}
	return now.Sub(r.Credentials.CreatedAt) > ttl
}
