package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/users"
	"golang.org/x/oauth2"
)

// Claims carried by a local access token
type Claims struct {
	Email string         `json:"email,omitempty"`
	Role  users.RoleType `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the tokens of local mode, standing in for the
// remote provider's access and refresh tokens.
type Manager struct {
	signer             Signer
	issuer             string
	accessTokenExpiry  time.Duration
	refreshTokenLength int
	revokedCache       RevokedTokenCache
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

// WithRefreshTokenLength sets the number of random bytes in a refresh token
func WithRefreshTokenLength(n int) ManagerOption {
	return func(m *Manager) {
		m.refreshTokenLength = n
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:       signer,
		revokedCache: NewInMemoryRevokedTokenCache(), // Default implementation
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = 24 * time.Hour
	}
	if m.refreshTokenLength <= 0 {
		m.refreshTokenLength = 32
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// NewFromConfig creates an HMAC-signed Manager from the provider settings
func NewFromConfig(cfg config.ProviderConfig, options ...ManagerOption) (*Manager, error) {
	secret := cfg.GetLocalTokenSecret()
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("[token.NewFromConfig] LOCAL_TOKEN_SECRET is required")
	}

	opts := []ManagerOption{
		WithIssuer(cfg.GetLocalTokenIssuer()),
		WithTokenExpiry(cfg.GetLocalTokenExpiry()),
		WithRefreshTokenLength(cfg.GetRefreshTokenLength()),
	}
	return New(NewHMACSigner(secret), append(opts, options...)...), nil
}

// Issue creates an access and refresh token pair for user
func (m *Manager) Issue(user *users.User) (*oauth2.Token, error) {
	if user == nil || user.ID == "" {
		return nil, errors.New("[Manager.Issue] user with an id is required")
	}

	now := m.nowFunc()
	expiry := now.Add(m.accessTokenExpiry)
	claims := Claims{
		Email: user.Email,
		Role:  users.ParseRole(string(user.Metadata.Role)),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
		},
	}

	accessToken, err := m.signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrapf(err, "Manager.Issue Sign")
	}

	refreshToken, err := m.createRefreshToken()
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		RefreshToken: refreshToken,
		Expiry:       expiry,
	}, nil
}

func (m *Manager) createRefreshToken() (string, error) {
	tokenBytes := make([]byte, m.refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrapf(err, "Manager.createRefreshToken rand.Read")
	}
	return hex.EncodeToString(tokenBytes), nil
}

// Verify checks the signature, algorithm, issuer and expiry of raw. Failures
// wrap ErrTokenExpired or ErrInvalidToken.
func (m *Manager) Verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty token", errors.ErrInvalidToken)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, m.signer.GetVerificationKey, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", errors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, errors.ErrInvalidToken
	}

	if claims.ID != "" && m.revokedCache.IsRevoked(claims.ID) {
		return nil, fmt.Errorf("%w: token revoked", errors.ErrInvalidToken)
	}
	return claims, nil
}

// Revoke marks a valid access token as signed out. Tokens that no longer
// verify need no revocation and are ignored.
func (m *Manager) Revoke(raw string) error {
	claims, err := m.Verify(raw)
	if err != nil {
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return fmt.Errorf("%w: token missing jti or exp claim", errors.ErrInvalidToken)
	}

	m.revokedCache.Cleanup(m.nowFunc())
	return m.revokedCache.Add(claims.ID, claims.ExpiresAt.Time)
}
