package users

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// RoleType represents the role a user plays in the platform. The string
// values are shared with stored sessions and provider metadata and must not
// change.
type RoleType string

const (
	RoleAdmin     RoleType = "administrador" // Platform administrator
	RoleModerator RoleType = "moderador"     // Content moderator
	RoleEndUser   RoleType = "adulto_mayor"  // Senior end user (default)
)

// Roles lists every known role
var Roles = []RoleType{RoleAdmin, RoleModerator, RoleEndUser}

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole maps an empty value to RoleEndUser and keeps anything else verbatim.
func ParseRole(s string) RoleType {
	if s == "" {
		return RoleEndUser
	}
	return RoleType(s)
}

// Metadata is the profile a user registers with. JSON keys follow the
// provider's user_metadata contract.
type Metadata struct {
	Name      string   `json:"nombre,omitempty"`
	Surname   string   `json:"apellido,omitempty"`
	RUT       string   `json:"rut,omitempty"`
	Role      RoleType `json:"rol,omitempty"`
	BirthDate string   `json:"fecha_nacimiento,omitempty"` // YYYY-MM-DD
	Phone     string   `json:"telefono,omitempty"`
}

// Resolve applies defaults once so callers never re-derive them.
func (m Metadata) Resolve() Metadata {
	m.Role = ParseRole(string(m.Role))
	return m
}

// User is an account in the local directory
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Metadata     Metadata  `json:"user_metadata"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return CheckPasswordHash(password, u.PasswordHash)
}

// Demo account created in local mode so the app can be tried without registering.
const (
	DemoUserID       = "local_demo"
	DemoUserEmail    = "demo@senioriteract.com"
	DemoUserPassword = "12345678"
)

// SeedDemoUser adds the demo account when it is missing.
func SeedDemoUser(ctx context.Context, repo UserRepo) error {
	if _, err := repo.GetByEmail(ctx, DemoUserEmail); err == nil {
		return nil
	}

	hash, err := HashPassword(DemoUserPassword)
	if err != nil {
		return err
	}

	if err := repo.Upsert(ctx, &User{
		ID:           DemoUserID,
		Email:        DemoUserEmail,
		PasswordHash: hash,
		Metadata: Metadata{
			Name:      "María",
			Surname:   "González",
			RUT:       "12345678-5",
			Role:      RoleEndUser,
			BirthDate: "1950-05-15",
			Phone:     "+56912345678",
		},
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	log.Info().Str("email", DemoUserEmail).Msg("Demo user created")
	return nil
}
