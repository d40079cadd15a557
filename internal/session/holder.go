// Package session holds the signed-in identity for the lifetime of the
// process. The identity provider's change callback is its only writer
// besides SignOut.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Status tracks whether the provider has delivered its first identity.
type Status int

const (
	// StatusResolving means no delivery has arrived yet. An absent identity
	// is not authoritative in this state.
	StatusResolving Status = iota
	// StatusSettled means at least one delivery has been applied.
	StatusSettled
)

func (s Status) String() string {
	if s == StatusSettled {
		return "settled"
	}
	return "resolving"
}

// Event is delivered to subscribers after each applied change.
type Event struct {
	Identity *sdk.Identity
	Status   Status
}

// Listener receives change events in delivery order. A listener must not
// call SignOut synchronously.
type Listener func(Event)

// Provider is the identity provider as seen by the holder.
type Provider interface {
	// OnIdentityChange registers fn for every identity the provider
	// delivers, including the initial one. The returned func unregisters it.
	OnIdentityChange(fn func(*sdk.Identity)) (unsubscribe func())
	// SignOut ends the provider session. Failures are *sdk.ProviderError.
	SignOut(ctx context.Context) error
}

// Syncer tells the backend about a newly authenticated address.
type Syncer interface {
	SyncSession(ctx context.Context, address string) error
}

// Option configures a Holder.
type Option func(*Holder)

// WithSyncer enables the best-effort backend session sync.
func WithSyncer(s Syncer) Option {
	return func(h *Holder) { h.syncer = s }
}

// WithLogger sets the holder's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Holder) { h.logger = logging.Component(l, "session") }
}

// WithSyncTimeout bounds each session sync call.
func WithSyncTimeout(d time.Duration) Option {
	return func(h *Holder) { h.syncTimeout = d }
}

// Holder is the single source of truth for who is signed in.
type Holder struct {
	provider    Provider
	syncer      Syncer
	syncTimeout time.Duration
	logger      zerolog.Logger

	mu        sync.RWMutex
	identity  *sdk.Identity
	status    Status
	listeners map[uint64]Listener
	nextID    uint64
	settled   chan struct{}

	// deliverMu serializes apply so listeners observe deliveries in order.
	deliverMu sync.Mutex

	startOnce   sync.Once
	unsubscribe func()
	syncs       sync.WaitGroup
}

// New returns a holder in StatusResolving with no identity.
func New(provider Provider, opts ...Option) *Holder {
	h := &Holder{
		provider:    provider,
		syncTimeout: 10 * time.Second,
		logger:      logging.Nop(),
		listeners:   make(map[uint64]Listener),
		settled:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start subscribes to the provider. It is safe to call more than once.
func (h *Holder) Start() {
	h.startOnce.Do(func() {
		unsubscribe := h.provider.OnIdentityChange(h.apply)
		h.mu.Lock()
		h.unsubscribe = unsubscribe
		h.mu.Unlock()
	})
}

// Close unsubscribes from the provider and waits for pending session syncs.
func (h *Holder) Close() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	h.syncs.Wait()
}

// Current returns a copy of the current identity, or nil when signed out.
func (h *Holder) Current() *sdk.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identity.Clone()
}

// Status reports whether the first delivery has been applied.
func (h *Holder) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Snapshot returns the identity and status read under one lock.
func (h *Holder) Snapshot() Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Event{Identity: h.identity.Clone(), Status: h.status}
}

// Settled is closed once the first delivery has been applied.
func (h *Holder) Settled() <-chan struct{} {
	return h.settled
}

// Subscribe registers l for future change events. The returned func removes
// it and may be called more than once.
func (h *Holder) Subscribe(l Listener) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = l
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Watch subscribes l and hands it the current event first. Both happen in
// delivery order, so no delivery can slip between the replay and l's first
// live event.
func (h *Holder) Watch(l Listener) (unsubscribe func()) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	unsubscribe = h.Subscribe(l)
	l(h.Snapshot())
	return unsubscribe
}

// SignOut ends the session at the provider. On success the identity becomes
// absent and subscribers are notified. On failure the identity is unchanged
// and the provider error is returned for display.
func (h *Holder) SignOut(ctx context.Context) error {
	if err := h.provider.SignOut(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("sign-out failed")
		return err
	}
	// The provider will usually deliver absent too; applying it here keeps
	// the holder correct for providers that do not.
	h.apply(nil)
	return nil
}

func (h *Holder) apply(identity *sdk.Identity) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	identity = identity.Clone()

	h.mu.Lock()
	first := h.status == StatusResolving
	if !first && identity == nil && h.identity == nil {
		h.mu.Unlock()
		return
	}
	h.identity = identity
	h.status = StatusSettled
	if first {
		close(h.settled)
	}
	listeners := make([]Listener, 0, len(h.listeners))
	ids := make([]uint64, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, h.listeners[id])
	}
	h.mu.Unlock()

	if identity != nil {
		h.logger.Debug().Str(logging.FieldAddress, identity.Address).Msg("identity applied")
	} else {
		h.logger.Debug().Msg("identity cleared")
	}

	for _, l := range listeners {
		l(Event{Identity: identity.Clone(), Status: StatusSettled})
	}

	if identity != nil && identity.Address != "" {
		h.sync(identity.Address)
	}
}

// sync posts the address to the backend in the background. Failures are
// logged and the identity stays current.
func (h *Holder) sync(address string) {
	if h.syncer == nil {
		return
	}
	h.syncs.Add(1)
	go func() {
		defer h.syncs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.syncTimeout)
		defer cancel()
		if err := h.syncer.SyncSession(ctx, address); err != nil {
			h.logger.Warn().Err(err).Str(logging.FieldAddress, address).Msg("session sync failed")
		}
	}()
}
