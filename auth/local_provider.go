package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/token"
	"github.com/jrsteele09/seniorinteract/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const localIDPrefix = "local_"

var _ Provider = (*LocalProvider)(nil)

// LocalProvider keeps accounts in a users.UserRepo on the device and issues
// its own tokens. It stands in for the hosted provider during development.
type LocalProvider struct {
	users   users.UserRepo
	tokens  *token.Manager
	nowTime func() time.Time
}

// LocalProviderOption defines a function type to modify the LocalProvider instance.
type LocalProviderOption func(*LocalProvider)

// WithLocalNowTime sets the now time function (primarily for testing)
func WithLocalNowTime(nowFunc func() time.Time) LocalProviderOption {
	return func(p *LocalProvider) {
		p.nowTime = nowFunc
	}
}

func NewLocalProvider(userRepo users.UserRepo, tokens *token.Manager, options ...LocalProviderOption) (*LocalProvider, error) {
	if userRepo == nil {
		return nil, errors.New("[NewLocalProvider] user repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewLocalProvider] token manager is required")
	}

	p := &LocalProvider{
		users:   userRepo,
		tokens:  tokens,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, metadata users.Metadata) (*Identity, *oauth2.Token, error) {
	if _, err := p.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, errors.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, errors.ErrUserNotFound) {
		return nil, nil, fmt.Errorf("%w: %w", errors.ErrConnection, err)
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "LocalProvider.SignUp HashPassword")
	}

	user := &users.User{
		ID:           localIDPrefix + uuid.New().String(),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Metadata:     metadata.Resolve(),
		CreatedAt:    p.nowTime(),
	}
	if err := p.users.Upsert(ctx, user); err != nil {
		return nil, nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("Local account created")

	tok, err := p.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return identityFromUser(user), tok, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Identity, *oauth2.Token, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, nil, errors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("%w: %w", errors.ErrConnection, err)
	}
	if !user.CheckPassword(password) {
		return nil, nil, errors.ErrInvalidCredentials
	}

	tok, err := p.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return identityFromUser(user), tok, nil
}

// ResetPassword only confirms the account exists; nothing is sent.
func (p *LocalProvider) ResetPassword(ctx context.Context, email string) error {
	if _, err := p.users.GetByEmail(ctx, email); err != nil {
		return err
	}
	log.Info().Msg("Local mode: password recovery email not sent")
	return nil
}

func (p *LocalProvider) SignOut(_ context.Context, accessToken string) error {
	return p.tokens.Revoke(accessToken)
}

func (p *LocalProvider) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := p.tokens.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := p.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return identityFromUser(user), nil
}

func identityFromUser(user *users.User) *Identity {
	return &Identity{
		ID:       user.ID,
		Email:    user.Email,
		Metadata: user.Metadata.Resolve(),
	}
}
