package auth

import (
	"context"

	"github.com/jrsteele09/seniorinteract/internal/utils"
	"github.com/jrsteele09/seniorinteract/rut"
	"github.com/jrsteele09/seniorinteract/sessions"
	"github.com/jrsteele09/seniorinteract/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Identity is the provider's view of an account
type Identity struct {
	ID       string
	Email    string
	Metadata users.Metadata
}

// Provider is the identity service accounts live in: the local directory or
// the hosted one. Errors wrap the sentinels in internal/errors.
type Provider interface {
	// SignUp creates the account. The token is nil when the provider wants
	// the email confirmed before issuing a session.
	SignUp(ctx context.Context, email, password string, metadata users.Metadata) (*Identity, *oauth2.Token, error)

	SignIn(ctx context.Context, email, password string) (*Identity, *oauth2.Token, error)

	// ResetPassword starts password recovery for email
	ResetPassword(ctx context.Context, email string) error

	SignOut(ctx context.Context, accessToken string) error

	// GetUser resolves the account behind accessToken, failing when the
	// token is no longer accepted.
	GetUser(ctx context.Context, accessToken string) (*Identity, error)
}

// snapshotFromIdentity copies the identity into the shape the session slot
// keeps. A stored RUT that does not parse is dropped rather than saved.
func snapshotFromIdentity(identity *Identity) sessions.UserSnapshot {
	meta := identity.Metadata.Resolve()
	snapshot := sessions.UserSnapshot{
		ID:        identity.ID,
		Email:     identity.Email,
		Name:      meta.Name,
		Surname:   meta.Surname,
		Role:      meta.Role,
		BirthDate: meta.BirthDate,
		Phone:     meta.Phone,
	}

	if meta.RUT != "" {
		id, err := rut.Parse(meta.RUT)
		if err != nil {
			log.Warn().Str("user_id", identity.ID).Msg("Ignoring malformed RUT in user metadata")
		}
		snapshot.Identifier = utils.PtrIfSet(id)
	}
	return snapshot
}

// credentialsFromToken keeps the provider expiry as epoch seconds. It is
// informational; the session slot expires on its own clock.
func credentialsFromToken(tok *oauth2.Token) sessions.Credentials {
	creds := sessions.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		creds.RemoteExpiry = tok.Expiry.Unix()
	}
	return creds
}
