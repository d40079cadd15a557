// Package role resolves the signed-in caller's backend role and keeps it in
// step with the session.
package role

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/session"
	"github.com/tahsinratul/life-client/internal/telemetry"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Phase is the progress of role resolution for the current address.
type Phase int

const (
	// PhaseIdle means there is no address to resolve.
	PhaseIdle Phase = iota
	// PhaseLoading means a query for Address is in flight.
	PhaseLoading
	// PhaseResolved means Role holds the backend's answer for Address.
	PhaseResolved
	// PhaseFailed means the last query for Address failed. The role stays unknown.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is the resolver's answer. Role is only meaningful in PhaseResolved;
// every other phase means the role is unknown.
type State struct {
	Phase   Phase
	Address string
	Role    sdk.Role
	Err     error
}

// Known reports whether the role has been resolved.
func (s State) Known() bool {
	return s.Phase == PhaseResolved
}

// Fetcher queries the backend for an address's role.
type Fetcher interface {
	GetRole(ctx context.Context, address string) (sdk.Role, error)
}

// Source is the session holder as seen by the resolver.
type Source interface {
	Watch(l session.Listener) (unsubscribe func())
}

// Options configures a Resolver.
type Options struct {
	CacheSize    int
	CacheTTL     time.Duration
	QueryTimeout time.Duration
	Logger       zerolog.Logger
	Metrics      *telemetry.RoleMetrics
}

// Resolver derives the current role from the session. Results are cached per
// address, the previous address's entry is dropped whenever the address
// changes, and completions for an address that is no longer current are
// discarded.
type Resolver struct {
	source  Source
	fetcher Fetcher
	cache   *expirable.LRU[string, sdk.Role]
	timeout time.Duration
	logger  zerolog.Logger
	metrics *telemetry.RoleMetrics

	mu         sync.Mutex
	state      State
	generation uint64
	listeners  map[uint64]func(State)
	nextID     uint64

	notifyMu    sync.Mutex
	unsubscribe func()
	queries     sync.WaitGroup
}

// New returns a resolver in PhaseIdle. Call Start to follow the session.
func New(source Source, fetcher Fetcher, opts Options) *Resolver {
	size := opts.CacheSize
	if size <= 0 {
		size = 64
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Resolver{
		source:    source,
		fetcher:   fetcher,
		cache:     expirable.NewLRU[string, sdk.Role](size, nil, ttl),
		timeout:   timeout,
		logger:    logging.Component(opts.Logger, "role"),
		metrics:   opts.Metrics,
		listeners: make(map[uint64]func(State)),
	}
}

// Start subscribes to the session and resolves its current identity.
func (r *Resolver) Start() {
	unsubscribe := r.source.Watch(r.handle)
	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()
}

// Close stops following the session and waits for in-flight queries.
func (r *Resolver) Close() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	r.queries.Wait()
}

// State returns the current resolution state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RoleFor returns the resolved role for identity, or false while it is
// unknown or identity is not the current one.
func (r *Resolver) RoleFor(identity *sdk.Identity) (sdk.Role, bool) {
	if identity == nil {
		return "", false
	}
	st := r.State()
	if !st.Known() || st.Address != identity.Address {
		return "", false
	}
	return st.Role, true
}

// Subscribe registers fn for state changes.
func (r *Resolver) Subscribe(fn func(State)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Invalidate drops the cached role for address and re-queries it when it is
// the current address.
func (r *Resolver) Invalidate(address string) {
	r.cache.Remove(address)

	r.mu.Lock()
	if r.state.Address != address || r.state.Phase == PhaseIdle {
		r.mu.Unlock()
		return
	}
	gen := r.begin(address)
	r.mu.Unlock()

	r.notify()
	r.query(gen, address)
}

func (r *Resolver) handle(ev session.Event) {
	address := ""
	if ev.Status == session.StatusSettled && ev.Identity != nil {
		address = ev.Identity.Address
	}

	r.mu.Lock()
	if address != "" && address == r.state.Address &&
		(r.state.Phase == PhaseLoading || r.state.Phase == PhaseResolved) {
		// Same caller redelivered, e.g. after a token refresh.
		r.mu.Unlock()
		return
	}
	if previous := r.state.Address; previous != "" && previous != address {
		r.cache.Remove(previous)
	}

	if address == "" {
		changed := r.state.Phase != PhaseIdle
		r.generation++
		r.state = State{Phase: PhaseIdle}
		r.mu.Unlock()
		if changed {
			r.notify()
		}
		return
	}

	if cached, ok := r.cache.Get(address); ok {
		r.generation++
		r.state = State{Phase: PhaseResolved, Address: address, Role: cached}
		r.mu.Unlock()
		r.notify()
		return
	}

	gen := r.begin(address)
	r.mu.Unlock()

	r.notify()
	r.query(gen, address)
}

// begin moves to PhaseLoading for address. r.mu must be held.
func (r *Resolver) begin(address string) uint64 {
	r.generation++
	r.state = State{Phase: PhaseLoading, Address: address}
	return r.generation
}

func (r *Resolver) query(gen uint64, address string) {
	r.metrics.RecordQuery(context.Background())
	r.queries.Add(1)
	go func() {
		defer r.queries.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		role, err := r.fetcher.GetRole(ctx, address)

		r.mu.Lock()
		if gen != r.generation || r.state.Address != address {
			r.mu.Unlock()
			r.metrics.RecordStale(ctx)
			r.logger.Debug().Str(logging.FieldAddress, address).Msg("discarding stale role response")
			return
		}
		if err != nil {
			r.state = State{Phase: PhaseFailed, Address: address, Err: err}
		} else {
			r.cache.Add(address, role)
			r.state = State{Phase: PhaseResolved, Address: address, Role: role}
		}
		r.mu.Unlock()

		if err != nil {
			r.metrics.RecordFailure(ctx)
			r.logger.Warn().Err(err).Str(logging.FieldAddress, address).Msg("role query failed; role stays unknown")
		} else {
			r.logger.Debug().Str(logging.FieldAddress, address).Str(logging.FieldRole, role.String()).Msg("role resolved")
		}
		r.notify()
	}()
}

// notify hands the latest state to every listener. Calls are serialized so
// a listener never sees an older state after a newer one.
func (r *Resolver) notify() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	st := r.state
	listeners := make([]func(State), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
