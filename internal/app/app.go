// Package app wires the session holder, request client, role resolver and
// guards into one explicitly constructed object shared by every surface.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/client"
	"github.com/tahsinratul/life-client/internal/config"
	"github.com/tahsinratul/life-client/internal/guard"
	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/provider"
	"github.com/tahsinratul/life-client/internal/role"
	"github.com/tahsinratul/life-client/internal/session"
	"github.com/tahsinratul/life-client/internal/telemetry"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Authenticator is the interactive part of the identity provider.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, address, password string) (*sdk.Identity, error)
	SignInWithSocial(ctx context.Context) (*sdk.Identity, error)
	CreateAccount(ctx context.Context, input sdk.SignUpInput) (*sdk.Identity, error)
	UpdateProfile(ctx context.Context, displayName, photoURL string) (*sdk.Identity, error)
}

// Guards are the three gates the route table uses.
type Guards struct {
	Authenticated *guard.Guard
	Agent         *guard.Guard
	Admin         *guard.Guard
}

// Options carries surface-specific collaborators.
type Options struct {
	Logger zerolog.Logger
	// Navigator receives redirects raised outside an HTTP request.
	Navigator navigation.Navigator
	// Prompt shows the device code during social sign-in.
	Prompt sdk.DeviceCodePrompt
	// Transport overrides the outbound transport, mainly for tests.
	Transport http.RoundTripper
}

// App holds every long-lived component.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *telemetry.Metrics

	Session *session.Holder
	// Auth is nil when a static token replaces the identity provider.
	Auth   Authenticator
	Client *client.Client
	// Public reaches the backend without credentials, for public pages and
	// views that must never trigger redirects.
	Public *sdk.Client
	Roles  *role.Resolver
	Guards Guards

	oidc *provider.OIDC
}

// New builds the component graph. Nothing runs until Start.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Metrics: metrics}

	var idp session.Provider
	if cfg.Token != "" {
		identity, err := sdk.IdentityFromToken(cfg.Token, "Bearer", "", "", time.Time{})
		if err != nil {
			return nil, fmt.Errorf("static token must be a JWT with an email claim: %w", err)
		}
		idp = session.NewManualProvider(identity, true)
	} else {
		store, err := provider.NewFileStore(cfg.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create credential store: %w", err)
		}
		providerCfg := cfg.OIDC.ProviderConfig()
		providerCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout, Transport: opts.Transport}
		a.oidc = provider.NewOIDC(providerCfg, store, provider.Options{
			Logger:  logger,
			Metrics: metrics.Auth,
			Prompt:  opts.Prompt,
		})
		a.Auth = a.oidc
		idp = a.oidc
	}

	plain := &http.Client{Timeout: cfg.RequestTimeout, Transport: opts.Transport}
	syncer, err := sdk.NewClient(cfg.SessionSyncURL, sdk.WithHTTPClient(plain))
	if err != nil {
		return nil, err
	}
	a.Session = session.New(idp,
		session.WithSyncer(syncer),
		session.WithLogger(logger),
		session.WithSyncTimeout(cfg.RequestTimeout),
	)

	nav := navigation.SlotNavigator{Fallback: opts.Navigator}
	a.Client, err = client.New(cfg.BackendURL, a.Session, nav, client.Options{
		Base:    opts.Transport,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
		Metrics: metrics.Client,
	})
	if err != nil {
		return nil, err
	}
	a.Public, err = sdk.NewClient(cfg.BackendURL, sdk.WithHTTPClient(plain))
	if err != nil {
		return nil, err
	}

	a.Roles = role.New(a.Session, a.Client.SDK(), role.Options{
		CacheSize:    cfg.RoleCache.Size,
		CacheTTL:     cfg.RoleCache.TTL,
		QueryTimeout: cfg.RequestTimeout,
		Logger:       logger,
		Metrics:      metrics.Role,
	})

	guardOpts := guard.Options{Logger: logger, Metrics: metrics.Guard}
	a.Guards = Guards{
		Authenticated: guard.New("", a.Session, a.Roles, nav, guardOpts),
		Agent:         guard.New(sdk.RoleAgent, a.Session, a.Roles, nav, guardOpts),
		Admin:         guard.New(sdk.RoleAdmin, a.Session, a.Roles, nav, guardOpts),
	}
	return a, nil
}

// Start subscribes the holder and resolver and loads the stored identity.
func (a *App) Start(ctx context.Context) {
	a.Session.Start()
	a.Roles.Start()
	if a.oidc != nil {
		a.oidc.Start(ctx)
	}
	a.Logger.Debug().Str(logging.FieldComponent, "app").Msg("started")
}

// Close stops background work.
func (a *App) Close() {
	a.Roles.Close()
	a.Session.Close()
}

// API returns the authenticated backend client.
func (a *App) API() *sdk.Client {
	return a.Client.SDK()
}

type contextKey string

const appKey contextKey = "lifectl-app"

// Inject adds a to ctx for cobra subcommands.
func Inject(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// FromContext retrieves the App stored by Inject.
func FromContext(ctx context.Context) (*App, bool) {
	a, ok := ctx.Value(appKey).(*App)
	return a, ok
}

// MustFromContext retrieves the App or panics. Only command RunE functions
// running under the root command may use it.
func MustFromContext(ctx context.Context) *App {
	a, ok := FromContext(ctx)
	if !ok {
		panic("lifectl: app not found in context - this is a bug in lifectl")
	}
	return a
}
