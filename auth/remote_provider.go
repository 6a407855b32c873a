package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const authPath = "/auth/v1"

var _ Provider = (*RemoteProvider)(nil)

// Provider messages that have a dedicated user-facing text. Matching is exact.
var providerMessages = map[string]error{
	"Invalid login credentials": errors.ErrInvalidCredentials,
	"User not found":            errors.ErrUserNotFound,
	"User already registered":   errors.ErrEmailAlreadyRegistered,
}

// Newer GoTrue releases also send a machine-readable code.
var providerErrorCodes = map[string]error{
	"invalid_credentials": errors.ErrInvalidCredentials,
	"user_not_found":      errors.ErrUserNotFound,
	"user_already_exists": errors.ErrEmailAlreadyRegistered,
	"email_exists":        errors.ErrEmailAlreadyRegistered,
}

// RemoteProvider talks to a Supabase project's GoTrue REST API.
type RemoteProvider struct {
	baseURL          string // <project url>/auth/v1
	anonKey          string
	recoveryRedirect string
	timeout          time.Duration
	httpClient       *http.Client
	verifier         *oidc.IDTokenVerifier // nil unless the JWKS pre-check is enabled
}

// RemoteProviderOption defines a function type to modify the RemoteProvider instance.
type RemoteProviderOption func(*RemoteProvider)

// WithHTTPClient replaces the client used for provider and JWKS requests
func WithHTTPClient(client *http.Client) RemoteProviderOption {
	return func(p *RemoteProvider) {
		p.httpClient = client
	}
}

// NewRemoteProvider creates a provider for the Supabase project in cfg. ctx
// scopes background JWKS refreshes, so it should live as long as the provider.
func NewRemoteProvider(ctx context.Context, cfg config.ProviderConfig, options ...RemoteProviderOption) (*RemoteProvider, error) {
	projectURL := strings.TrimRight(strings.TrimSpace(cfg.GetSupabaseURL()), "/")
	if projectURL == "" {
		return nil, errors.New("[NewRemoteProvider] SUPABASE_URL is required")
	}
	if _, err := url.ParseRequestURI(projectURL); err != nil {
		return nil, errors.Wrapf(err, "[NewRemoteProvider] invalid SUPABASE_URL")
	}
	if cfg.GetSupabaseAnonKey() == "" {
		return nil, errors.New("[NewRemoteProvider] SUPABASE_ANON_KEY is required")
	}

	p := &RemoteProvider{
		baseURL:          projectURL + authPath,
		anonKey:          cfg.GetSupabaseAnonKey(),
		recoveryRedirect: cfg.GetRecoveryRedirectURL(),
		timeout:          cfg.GetProviderTimeout(),
		httpClient:       http.DefaultClient,
	}
	for _, opt := range options {
		opt(p)
	}

	if cfg.GetSupabaseJWKSVerify() {
		keySet := oidc.NewRemoteKeySet(oidc.ClientContext(ctx, p.httpClient), p.baseURL+"/.well-known/jwks.json")
		p.verifier = oidc.NewVerifier(p.baseURL, keySet, &oidc.Config{
			SkipClientIDCheck:    true, // access tokens carry "authenticated" as audience
			SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
		})
	}
	return p, nil
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata users.Metadata `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"` // epoch seconds
	RefreshToken string      `json:"refresh_token"`
	User         *gotrueUser `json:"user"`
}

// signUpResponse is a session when the project auto-confirms emails and a
// bare user otherwise.
type signUpResponse struct {
	gotrueSession
	gotrueUser
}

type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (p *RemoteProvider) SignUp(ctx context.Context, email, password string, metadata users.Metadata) (*Identity, *oauth2.Token, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata.Resolve(),
	}

	var resp signUpResponse
	if err := p.do(ctx, http.MethodPost, "/signup", nil, body, "", &resp); err != nil {
		return nil, nil, err
	}

	if resp.AccessToken != "" && resp.User != nil {
		return resp.User.identity(), resp.token(), nil
	}
	// Email confirmation pending: no session yet.
	return resp.gotrueUser.identity(), nil, nil
}

func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*Identity, *oauth2.Token, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	var resp gotrueSession
	if err := p.do(ctx, http.MethodPost, "/token", query, body, "", &resp); err != nil {
		return nil, nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, nil, fmt.Errorf("%w: provider returned no session", errors.ErrConnection)
	}
	return resp.User.identity(), resp.token(), nil
}

func (p *RemoteProvider) ResetPassword(ctx context.Context, email string) error {
	var query url.Values
	if p.recoveryRedirect != "" {
		query = url.Values{"redirect_to": {p.recoveryRedirect}}
	}
	return p.do(ctx, http.MethodPost, "/recover", query, map[string]string{"email": email}, "", nil)
}

func (p *RemoteProvider) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return p.do(ctx, http.MethodPost, "/logout", nil, nil, accessToken, nil)
}

func (p *RemoteProvider) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", errors.ErrInvalidToken)
	}

	if p.verifier != nil {
		if _, err := p.verifier.Verify(oidc.ClientContext(ctx, p.httpClient), accessToken); err != nil {
			var expired *oidc.TokenExpiredError
			if errors.As(err, &expired) {
				return nil, fmt.Errorf("%w: %v", errors.ErrTokenExpired, err)
			}
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
		}
	}

	var user gotrueUser
	if err := p.do(ctx, http.MethodGet, "/user", nil, nil, accessToken, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: provider returned no user", errors.ErrInvalidToken)
	}
	return user.identity(), nil
}

// do sends one request. The bearer is the user's access token when given and
// the project's anon key otherwise.
func (p *RemoteProvider) do(ctx context.Context, method, path string, query url.Values, body any, accessToken string, out any) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	endpoint := p.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	bearer := accessToken
	if bearer == "" {
		bearer = p.anonKey
	}
	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, p.httpClient),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearer}),
	)

	resp, err := client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Auth provider request failed")
		return fmt.Errorf("%w: %v", errors.ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", errors.ErrConnection, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return providerError(path, resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: decode %s response: %v", errors.ErrConnection, path, err)
		}
	}
	return nil
}

func providerError(path string, status int, body []byte) error {
	var apiErr gotrueError
	_ = json.Unmarshal(body, &apiErr)
	text := apiErr.text()

	log.Warn().Int("status", status).Str("path", path).Str("provider_error", text).Msg("Auth provider rejected request")

	if sentinel, ok := providerMessages[text]; ok {
		return fmt.Errorf("%w: %s", sentinel, text)
	}
	if sentinel, ok := providerErrorCodes[apiErr.ErrorCode]; ok {
		return fmt.Errorf("%w: %s", sentinel, text)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", errors.ErrInvalidToken, text)
	case status >= 500:
		return fmt.Errorf("%w: %w: status %d %s", errors.ErrConnection, errors.ErrProviderUnavailable, status, text)
	default:
		return fmt.Errorf("%w: status %d %s", errors.ErrConnection, status, text)
	}
}

func (u *gotrueUser) identity() *Identity {
	return &Identity{
		ID:       u.ID,
		Email:    u.Email,
		Metadata: u.UserMetadata.Resolve(),
	}
}

func (s *gotrueSession) token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
	}
	switch {
	case s.ExpiresAt > 0:
		tok.Expiry = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return tok
}
