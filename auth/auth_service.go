package auth

import (
	"context"
	"fmt"

	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/sessions"
	"github.com/jrsteele09/seniorinteract/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Pages the front-end navigates to
const (
	ProtectedPage      = "./src/pages/principal.html"
	LandingLoginPage   = "./src/pages/login.html"
	SignedOutPage      = "/src/pages/login.html"
	AdminDashboard     = "/admin/dashboard.html"
	ModeratorDashboard = "/moderador/dashboard.html"
	HomePage           = "/index.html"
)

// Outcome is what a completed flow asks the front-end to do next
type Outcome struct {
	Message  string                 // User-facing text
	Redirect string                 // Page to navigate to; empty means stay
	User     *sessions.UserSnapshot // Set when a session was saved
}

// Service drives the sign-up, sign-in, recovery and sign-out flows and keeps
// the session slot in step with the provider.
type Service struct {
	provider  Provider
	store     *sessions.Store
	validator *Validator
	localMode bool
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithValidator replaces the default form rules
func WithValidator(v *Validator) ServiceOption {
	return func(s *Service) {
		s.validator = v
	}
}

// WithLocalMode marks the provider as the on-device directory. Existing
// sessions are then trusted until they expire instead of being checked with
// the provider.
func WithLocalMode(local bool) ServiceOption {
	return func(s *Service) {
		s.localMode = local
	}
}

func NewService(provider Provider, store *sessions.Store, options ...ServiceOption) (*Service, error) {
	if provider == nil {
		return nil, errors.New("[NewService] provider is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] session store is required")
	}

	s := &Service{
		provider:  provider,
		store:     store,
		validator: NewValidator(nil),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Register validates the form and creates the account. When the provider
// returns a session right away it is saved and the outcome redirects by role.
func (s *Service) Register(ctx context.Context, req RegistrationRequest) (*Outcome, error) {
	req = req.Normalize()
	if err := s.validator.ValidateRegistration(req); err != nil {
		return nil, err
	}

	identity, tok, err := s.provider.SignUp(ctx, req.Email, req.Password, req.Metadata())
	if err != nil {
		log.Warn().Err(err).Msg("Registration failed")
		return nil, err
	}

	outcome := &Outcome{Message: s.pick(MsgRegistered, MsgLocalRegistered)}
	if tok == nil {
		log.Info().Str("user_id", identity.ID).Msg("Registration pending email confirmation")
		return outcome, nil
	}

	if err := s.startSession(ctx, identity, tok, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// SignIn checks the login form and authenticates with the provider
func (s *Service) SignIn(ctx context.Context, email, password string) (*Outcome, error) {
	if err := s.validator.ValidateSignIn(email, password); err != nil {
		return nil, err
	}

	identity, tok, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		log.Warn().Err(err).Msg("Sign in failed")
		return nil, err
	}

	outcome := &Outcome{Message: s.pick(MsgSignedIn, MsgLocalSignedIn)}
	if err := s.startSession(ctx, identity, tok, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// RecoverPassword asks the provider to send recovery instructions to email
func (s *Service) RecoverPassword(ctx context.Context, email string) (*Outcome, error) {
	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := s.provider.ResetPassword(ctx, email); err != nil {
		log.Warn().Err(err).Msg("Password recovery failed")
		return nil, err
	}
	return &Outcome{Message: s.pick(MsgRecoveryEmailed, MsgLocalRecovery)}, nil
}

// SignOut ends the session. The provider is told on a best-effort basis; the
// local slot is cleared whatever it answers.
func (s *Service) SignOut(ctx context.Context) (*Outcome, error) {
	if record, ok := s.store.Load(ctx); ok {
		if err := s.provider.SignOut(ctx, record.Credentials.AccessToken); err != nil {
			log.Warn().Err(err).Str("user_id", record.User.ID).Msg("Provider sign out failed, clearing local session anyway")
		}
	}

	outcome := &Outcome{
		Message:  s.pick(MsgSignedOut, MsgLocalSignedOut),
		Redirect: SignedOutPage,
	}
	if err := s.store.Clear(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// VerifyExistingSession returns the user of a still-valid session. Outside
// local mode the provider must still accept the access token; a rejected or
// unverifiable token clears the slot.
func (s *Service) VerifyExistingSession(ctx context.Context) (*sessions.UserSnapshot, bool) {
	record, ok := s.store.Load(ctx)
	if !ok {
		return nil, false
	}
	if s.localMode {
		return &record.User, true
	}

	if _, err := s.provider.GetUser(ctx, record.Credentials.AccessToken); err != nil {
		log.Info().Err(err).Str("user_id", record.User.ID).Msg("Stored session rejected by provider, clearing")
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			log.Err(clearErr).Msg("Failed to clear rejected session")
		}
		return nil, false
	}
	return &record.User, true
}

// CheckPageAccess reports whether a protected page may be shown
func (s *Service) CheckPageAccess(ctx context.Context) (*sessions.UserSnapshot, bool) {
	user, ok := s.store.CurrentUser(ctx)
	if !ok {
		log.Debug().Msg("Access denied: no active session")
		return nil, false
	}
	log.Debug().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("Access granted")
	return user, true
}

// LandingPath is the protected page with an active session and the login
// page without one.
func (s *Service) LandingPath(ctx context.Context) string {
	if s.store.IsActive(ctx) {
		return ProtectedPage
	}
	return LandingLoginPage
}

// RedirectPathForRole maps a role to its home page. Unknown roles land on
// the end-user home page.
func RedirectPathForRole(role users.RoleType) string {
	switch role {
	case users.RoleAdmin:
		return AdminDashboard
	case users.RoleModerator:
		return ModeratorDashboard
	default:
		return HomePage
	}
}

func (s *Service) startSession(ctx context.Context, identity *Identity, tok *oauth2.Token, outcome *Outcome) error {
	if identity == nil || tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("%w: provider returned an incomplete session", errors.ErrConnection)
	}

	snapshot := snapshotFromIdentity(identity)
	if err := s.store.Save(ctx, snapshot, credentialsFromToken(tok)); err != nil {
		return err
	}

	outcome.User = &snapshot
	outcome.Redirect = RedirectPathForRole(snapshot.Role)
	log.Info().Str("user_id", snapshot.ID).Str("role", string(snapshot.Role)).Msg("Session started")
	return nil
}

func (s *Service) pick(remote, local string) string {
	if s.localMode {
		return local
	}
	return remote
}
