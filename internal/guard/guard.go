// Package guard gates protected views on the session and the resolved role.
// One Guard type serves every gate: with no required role it only demands a
// signed-in caller, with a role it also demands that exact role.
package guard

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/role"
	"github.com/tahsinratul/life-client/internal/session"
	"github.com/tahsinratul/life-client/internal/telemetry"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Outcome is a guard's verdict for one mount.
type Outcome int

const (
	// Pending means the session or the role is still resolving.
	Pending Outcome = iota
	// Granted means the protected view may be shown.
	Granted
	// Denied means the caller is redirected away. It is terminal for a mount.
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "pending"
	}
}

// ErrStillResolving is returned by Await when ctx ends while Pending.
var ErrStillResolving = errors.New("session or role still resolving")

// Decide is the guard predicate. It never grants while the session is
// resolving or, for a role requirement, while the role for the current
// address is unknown.
func Decide(ev session.Event, st role.State, required sdk.Role) Outcome {
	if ev.Status != session.StatusSettled {
		return Pending
	}
	if ev.Identity == nil {
		return Denied
	}
	if required == "" {
		return Granted
	}
	if !st.Known() || st.Address != ev.Identity.Address {
		return Pending
	}
	if st.Role == required {
		return Granted
	}
	return Denied
}

// SessionView is the session holder as seen by guards.
type SessionView interface {
	Snapshot() session.Event
	Subscribe(l session.Listener) (unsubscribe func())
}

// RoleView is the role resolver as seen by guards.
type RoleView interface {
	State() role.State
	Subscribe(fn func(role.State)) (unsubscribe func())
}

// Options configures a Guard.
type Options struct {
	Logger  zerolog.Logger
	Metrics *telemetry.GuardMetrics
}

// Guard gates a view on the session and, optionally, a required role.
type Guard struct {
	required sdk.Role
	session  SessionView
	roles    RoleView
	nav      navigation.Navigator
	logger   zerolog.Logger
	metrics  *telemetry.GuardMetrics
}

// New returns a guard. An empty required role only demands a signed-in caller.
func New(required sdk.Role, sess SessionView, roles RoleView, nav navigation.Navigator, opts Options) *Guard {
	g := &Guard{
		required: required,
		session:  sess,
		roles:    roles,
		nav:      nav,
		metrics:  opts.Metrics,
	}
	g.logger = logging.Component(opts.Logger, "guard").With().Str("guard", g.Name()).Logger()
	return g
}

// Name identifies the guard in logs and metrics.
func (g *Guard) Name() string {
	if g.required == "" {
		return "authenticated"
	}
	return g.required.String()
}

// Required is the role the guard demands, or "" for authenticated-only.
func (g *Guard) Required() sdk.Role {
	return g.required
}

// RedirectTarget is where a denied caller is sent.
func (g *Guard) RedirectTarget() string {
	if g.required == "" {
		return navigation.RouteLogin
	}
	return navigation.RouteForbidden
}

// Check evaluates the guard against the current session and role without
// mounting or navigating.
func (g *Guard) Check() Outcome {
	return Decide(g.session.Snapshot(), g.roles.State(), g.required)
}

// Await mounts the guard for path and blocks until it leaves Pending or ctx
// ends. A denial has already navigated when Await returns.
func (g *Guard) Await(ctx context.Context, path string) (Outcome, error) {
	m := g.Mount(ctx, path)
	defer m.Unmount()

	select {
	case <-m.Settled():
		return m.Verdict(), nil
	case <-ctx.Done():
		if outcome := m.Verdict(); outcome != Pending {
			return outcome, nil
		}
		return Pending, ErrStillResolving
	}
}
