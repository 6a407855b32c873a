package config

import "time"

type ProviderConfig interface {
	GetLocalMode() bool
	GetSupabaseURL() string
	GetSupabaseAnonKey() string
	GetSupabaseJWKSVerify() bool
	GetRecoveryRedirectURL() string
	GetProviderTimeout() time.Duration
	GetLocalUsersKey() string
	GetLocalTokenSecret() string
	GetLocalTokenIssuer() string
	GetLocalTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetSeedDemoUser() bool
}

type Provider struct{}

var _ ProviderConfig = Provider{}

// GetLocalMode selects the storage-backed account directory instead of Supabase.
func (Provider) GetLocalMode() bool {
	return GetEnvBool("LOCAL_MODE", true)
}

func (Provider) GetSupabaseURL() string {
	return GetEnv("SUPABASE_URL", "")
}

func (Provider) GetSupabaseAnonKey() string {
	return GetEnv("SUPABASE_ANON_KEY", "")
}

// GetSupabaseJWKSVerify enables an offline signature check of access tokens
// against the project's JWKS before asking the provider for the user.
func (Provider) GetSupabaseJWKSVerify() bool {
	return GetEnvBool("SUPABASE_JWKS_VERIFY", false)
}

func (Provider) GetRecoveryRedirectURL() string {
	return GetEnv("RECOVERY_REDIRECT_URL", "http://localhost:8080/src/pages/recuperar.html")
}

func (Provider) GetProviderTimeout() time.Duration {
	return GetEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
}

func (Provider) GetLocalUsersKey() string {
	return GetEnv("LOCAL_USERS_KEY", "usuarios_locales")
}

func (Provider) GetLocalTokenSecret() string {
	return GetEnv("LOCAL_TOKEN_SECRET", "senioriteract-local-secret")
}

func (Provider) GetLocalTokenIssuer() string {
	return GetEnv("LOCAL_TOKEN_ISSUER", "seniorinteract-local")
}

func (Provider) GetLocalTokenExpiry() time.Duration {
	return GetEnvDuration("LOCAL_TOKEN_EXPIRY", 24*time.Hour)
}

func (Provider) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (Provider) GetSeedDemoUser() bool {
	return GetEnvBool("SEED_DEMO_USER", true)
}
