// Package provider implements the identity provider on top of OIDC. It owns
// the token lifecycle (sign-in, refresh, revocation) and persists the
// resulting identity so later runs start signed in.
package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/session"
	"github.com/tahsinratul/life-client/internal/telemetry"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Operation names used in logs and metrics.
const (
	opSignIn       = "sign_in"
	opSocialSignIn = "social_sign_in"
	opCreate       = "create_account"
	opSignOut      = "sign_out"
	opRefresh      = "refresh"
)

// flows are the provider round trips, swappable in tests.
type flows struct {
	password func(ctx context.Context, cfg sdk.ProviderConfig, address, password string) (*sdk.Identity, error)
	device   func(ctx context.Context, cfg sdk.ProviderConfig, prompt sdk.DeviceCodePrompt) (*sdk.Identity, error)
	refresh  func(ctx context.Context, cfg sdk.ProviderConfig, current *sdk.Identity) (*sdk.Identity, error)
	revoke   func(ctx context.Context, cfg sdk.ProviderConfig, token string) error
	create   func(ctx context.Context, cfg sdk.ProviderConfig, input sdk.SignUpInput) error
}

func defaultFlows() flows {
	return flows{
		password: sdk.LoginWithPassword,
		device:   sdk.LoginWithDeviceCode,
		refresh:  sdk.RefreshIdentity,
		revoke:   sdk.RevokeToken,
		create:   sdk.CreateAccount,
	}
}

// Options configures an OIDC provider.
type Options struct {
	Logger  zerolog.Logger
	Metrics *telemetry.AuthMetrics
	// Prompt is shown the device code during social sign-in.
	Prompt sdk.DeviceCodePrompt
}

// OIDC is the identity provider backed by an OIDC issuer and a credential
// store.
type OIDC struct {
	cfg     sdk.ProviderConfig
	store   Store
	logger  zerolog.Logger
	metrics *telemetry.AuthMetrics
	prompt  sdk.DeviceCodePrompt
	flows   flows

	mu       sync.Mutex
	current  *sdk.Identity
	started  bool
	watchers map[int]func(*sdk.Identity)
	nextID   int

	// deliverMu keeps deliveries in the order the changes were made.
	deliverMu sync.Mutex
}

var _ session.Provider = (*OIDC)(nil)

// NewOIDC returns a provider that has not delivered anything yet. Call Start
// to load the stored identity.
func NewOIDC(cfg sdk.ProviderConfig, store Store, opts Options) *OIDC {
	logger := opts.Logger
	return &OIDC{
		cfg:      cfg,
		store:    store,
		logger:   logging.Component(logger, "provider"),
		metrics:  opts.Metrics,
		prompt:   opts.Prompt,
		flows:    defaultFlows(),
		watchers: make(map[int]func(*sdk.Identity)),
	}
}

// Start loads the persisted identity and delivers it, or absent, to every
// watcher. An expired identity is refreshed when it carries a refresh token
// and is otherwise dropped.
func (p *OIDC) Start(ctx context.Context) {
	identity, err := p.store.Load()
	switch {
	case errors.Is(err, ErrNoCredentials):
		identity = nil
	case err != nil:
		p.logger.Warn().Err(err).Msg("stored credentials unreadable; starting signed out")
		identity = nil
	}

	if identity != nil && identity.IsExpired() {
		identity = p.refreshExpired(ctx, identity)
	}

	p.mu.Lock()
	p.started = true
	p.mu.Unlock()
	p.set(identity)
}

func (p *OIDC) refreshExpired(ctx context.Context, identity *sdk.Identity) *sdk.Identity {
	if identity.RefreshToken == "" {
		p.logger.Info().Str(logging.FieldAddress, identity.Address).Msg("stored session expired")
		_ = p.store.Delete()
		return nil
	}
	refreshed, err := p.flows.refresh(ctx, p.cfg, identity)
	p.record(ctx, opRefresh, err)
	if err != nil {
		p.logger.Warn().Err(err).Str(logging.FieldAddress, identity.Address).Msg("session refresh failed")
		_ = p.store.Delete()
		return nil
	}
	if err := p.store.Save(refreshed); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist refreshed session")
	}
	return refreshed
}

// OnIdentityChange implements session.Provider. When the provider has
// already started, fn receives the current identity immediately.
func (p *OIDC) OnIdentityChange(fn func(*sdk.Identity)) func() {
	p.deliverMu.Lock()
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	started, current := p.started, p.current.Clone()
	p.mu.Unlock()
	if started {
		fn(current)
	}
	p.deliverMu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

// Current returns the identity last delivered.
func (p *OIDC) Current() *sdk.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

// SignInWithPassword signs in with an email and password.
func (p *OIDC) SignInWithPassword(ctx context.Context, address, password string) (*sdk.Identity, error) {
	identity, err := p.flows.password(ctx, p.cfg, address, password)
	p.record(ctx, opSignIn, err)
	if err != nil {
		return nil, err
	}
	return p.signedIn(identity)
}

// SignInWithSocial signs in through the provider-hosted login page.
func (p *OIDC) SignInWithSocial(ctx context.Context) (*sdk.Identity, error) {
	identity, err := p.flows.device(ctx, p.cfg, p.prompt)
	p.record(ctx, opSocialSignIn, err)
	if err != nil {
		return nil, err
	}
	return p.signedIn(identity)
}

// CreateAccount registers input with the provider and signs in with it.
func (p *OIDC) CreateAccount(ctx context.Context, input sdk.SignUpInput) (*sdk.Identity, error) {
	err := p.flows.create(ctx, p.cfg, input)
	p.record(ctx, opCreate, err)
	if err != nil {
		return nil, err
	}
	identity, err := p.SignInWithPassword(ctx, input.Address, input.Password)
	if err != nil {
		return nil, err
	}
	if identity.DisplayName == "" && input.DisplayName != "" {
		return p.UpdateProfile(ctx, input.DisplayName, input.PhotoURL)
	}
	return identity, nil
}

// SignOut revokes the session at the provider and forgets it locally. On a
// revocation failure nothing changes and the error is returned.
func (p *OIDC) SignOut(ctx context.Context) error {
	current := p.Current()
	if current != nil {
		token := current.RefreshToken
		if token == "" {
			token = current.AccessToken
		}
		err := p.flows.revoke(ctx, p.cfg, token)
		p.record(ctx, opSignOut, err)
		if err != nil {
			return err
		}
	}
	if err := p.store.Delete(); err != nil {
		return sdk.NewProviderError("sign out", sdk.ProviderUnavailable, err)
	}
	p.set(nil)
	return nil
}

// UpdateProfile changes the display attributes of the signed-in identity and
// redelivers it.
func (p *OIDC) UpdateProfile(_ context.Context, displayName, photoURL string) (*sdk.Identity, error) {
	current := p.Current()
	if current == nil {
		return nil, sdk.NewProviderError("update profile", sdk.ProviderInvalidCredentials, errors.New("not signed in"))
	}
	if displayName != "" {
		current.DisplayName = displayName
	}
	if photoURL != "" {
		current.PhotoURL = photoURL
	}
	return p.signedIn(current)
}

func (p *OIDC) signedIn(identity *sdk.Identity) (*sdk.Identity, error) {
	if err := p.store.Save(identity); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist session; it will not survive restart")
	}
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()
	p.set(identity)
	return identity.Clone(), nil
}

func (p *OIDC) set(identity *sdk.Identity) {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	p.current = identity.Clone()
	watchers := make([]func(*sdk.Identity), 0, len(p.watchers))
	for _, fn := range p.watchers {
		watchers = append(watchers, fn)
	}
	p.mu.Unlock()

	for _, fn := range watchers {
		fn(identity.Clone())
	}
}

func (p *OIDC) record(ctx context.Context, op string, err error) {
	kind := ""
	if err != nil {
		var providerErr *sdk.ProviderError
		if errors.As(err, &providerErr) {
			kind = string(providerErr.Kind)
		} else {
			kind = string(sdk.ProviderUnavailable)
		}
		p.logger.Info().Err(err).Str("op", op).Msg("identity provider operation failed")
	}
	p.metrics.RecordAttempt(ctx, op, kind)
}
