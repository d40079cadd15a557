package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

// EnvPrefix prefixes every environment override, e.g. LIFECTL_BACKEND_URL.
const EnvPrefix = "LIFECTL"

// Config keys.
const (
	KeyBackendURL       = "backend_url"
	KeySessionSyncURL   = "session_sync_url"
	KeyOIDCIssuer       = "oidc.issuer"
	KeyOIDCClientID     = "oidc.client_id"
	KeyOIDCClientSecret = "oidc.client_secret"
	KeyOIDCSignUpURL    = "oidc.signup_url"
	KeyCredentialsPath  = "credentials_path"
	KeyToken            = "token"
	KeyDashboardAddr    = "dashboard.addr"
	KeyDashboardPending = "dashboard.pending_wait"
	KeyRoleCacheSize    = "role_cache.size"
	KeyRoleCacheTTL     = "role_cache.ttl"
	KeyRequestTimeout   = "request_timeout"
	KeyDebug            = "debug"
)

// Config holds the lifectl configuration.
type Config struct {
	// BackendURL is the REST backend every domain call goes to.
	BackendURL string
	// SessionSyncURL receives the best-effort session sync. Defaults to BackendURL.
	SessionSyncURL string

	OIDC OIDCConfig

	// CredentialsPath is where the signed-in identity is persisted.
	CredentialsPath string
	// Token is a static bearer token that bypasses the identity provider.
	Token string

	Dashboard DashboardConfig
	RoleCache RoleCacheConfig

	RequestTimeout time.Duration
	Debug          bool
}

// OIDCConfig identifies the lifectl client at the identity provider.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	SignUpURL    string
}

// Enabled reports whether an identity provider is configured.
func (c OIDCConfig) Enabled() bool {
	return c.Issuer != "" && c.ClientID != ""
}

// ProviderConfig converts to the SDK's provider settings.
func (c OIDCConfig) ProviderConfig() sdk.ProviderConfig {
	return sdk.ProviderConfig{
		Issuer:       c.Issuer,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		SignUpURL:    c.SignUpURL,
	}
}

// DashboardConfig configures the local dashboard server.
type DashboardConfig struct {
	Addr string
	// PendingWait is how long a guarded route waits for a verdict before
	// answering 202.
	PendingWait time.Duration
}

// RoleCacheConfig sizes the per-address role cache.
type RoleCacheConfig struct {
	Size int
	TTL  time.Duration
}

// New returns a viper instance with defaults and LIFECTL_ env binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackendURL, "https://life-server-one.vercel.app")
	v.SetDefault(KeySessionSyncURL, "https://life-insurance-server-side.vercel.app")
	v.SetDefault(KeyOIDCIssuer, "")
	v.SetDefault(KeyOIDCClientID, "")
	v.SetDefault(KeyOIDCClientSecret, "")
	v.SetDefault(KeyOIDCSignUpURL, "")
	v.SetDefault(KeyCredentialsPath, "~/.lifectl/credentials.json")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyDashboardAddr, "localhost:5173")
	v.SetDefault(KeyDashboardPending, 2*time.Second)
	v.SetDefault(KeyRoleCacheSize, 64)
	v.SetDefault(KeyRoleCacheTTL, 5*time.Minute)
	v.SetDefault(KeyRequestTimeout, 15*time.Second)
	v.SetDefault(KeyDebug, false)
}

// ReadFile merges a YAML config file into v. Environment variables still win.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load builds and validates a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BackendURL:     strings.TrimRight(v.GetString(KeyBackendURL), "/"),
		SessionSyncURL: strings.TrimRight(v.GetString(KeySessionSyncURL), "/"),
		OIDC: OIDCConfig{
			Issuer:       v.GetString(KeyOIDCIssuer),
			ClientID:     v.GetString(KeyOIDCClientID),
			ClientSecret: v.GetString(KeyOIDCClientSecret),
			SignUpURL:    v.GetString(KeyOIDCSignUpURL),
		},
		CredentialsPath: v.GetString(KeyCredentialsPath),
		Token:           v.GetString(KeyToken),
		Dashboard: DashboardConfig{
			Addr:        v.GetString(KeyDashboardAddr),
			PendingWait: v.GetDuration(KeyDashboardPending),
		},
		RoleCache: RoleCacheConfig{
			Size: v.GetInt(KeyRoleCacheSize),
			TTL:  v.GetDuration(KeyRoleCacheTTL),
		},
		RequestTimeout: v.GetDuration(KeyRequestTimeout),
		Debug:          v.GetBool(KeyDebug),
	}
	if cfg.SessionSyncURL == "" {
		cfg.SessionSyncURL = cfg.BackendURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := requireAbsolute(KeyBackendURL, c.BackendURL); err != nil {
		return err
	}
	if err := requireAbsolute(KeySessionSyncURL, c.SessionSyncURL); err != nil {
		return err
	}
	if c.RoleCache.Size <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyRoleCacheSize, c.RoleCache.Size)
	}
	if c.RoleCache.TTL <= 0 {
		return fmt.Errorf("%s must be positive", KeyRoleCacheTTL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyRequestTimeout)
	}
	if (c.OIDC.Issuer == "") != (c.OIDC.ClientID == "") {
		return errors.New("oidc.issuer and oidc.client_id must be set together")
	}
	if c.OIDC.Issuer != "" {
		if err := requireAbsolute(KeyOIDCIssuer, c.OIDC.Issuer); err != nil {
			return err
		}
	}
	if c.Dashboard.PendingWait < 0 {
		return fmt.Errorf("%s must not be negative", KeyDashboardPending)
	}
	return nil
}

func requireAbsolute(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}
