package guard

import (
	"context"
	"sync"

	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/role"
	"github.com/tahsinratul/life-client/internal/session"
)

// Mount is one guarded view instance. It starts Pending and re-evaluates on
// every session or role change until it is unmounted or denied.
type Mount struct {
	guard *Guard
	ctx   context.Context
	path  string

	mu       sync.Mutex
	outcome  Outcome
	verdict  Outcome
	settled  chan struct{}
	unsubs   []func()
	detached bool
}

// Mount starts guarding path. Navigation on denial uses ctx.
func (g *Guard) Mount(ctx context.Context, path string) *Mount {
	m := &Mount{
		guard:   g,
		ctx:     ctx,
		path:    path,
		outcome: Pending,
		verdict: Pending,
		settled: make(chan struct{}),
	}

	unsubSession := g.session.Subscribe(func(session.Event) { m.evaluate() })
	unsubRoles := g.roles.Subscribe(func(role.State) { m.evaluate() })
	m.mu.Lock()
	if m.detached {
		m.mu.Unlock()
		unsubSession()
		unsubRoles()
		return m
	}
	m.unsubs = []func(){unsubSession, unsubRoles}
	m.mu.Unlock()

	m.evaluate()
	return m
}

// Outcome is the mount's current verdict.
func (m *Mount) Outcome() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome
}

// Settled is closed the first time the mount leaves Pending.
func (m *Mount) Settled() <-chan struct{} {
	return m.settled
}

// Verdict is the first non-Pending outcome, or Pending before Settled closes.
func (m *Mount) Verdict() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verdict
}

// Unmount stops reacting to changes. It is safe to call more than once.
func (m *Mount) Unmount() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.detached = true
	m.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

// evaluate reads the session and role under m.mu, so a listener holding an
// older view can never commit after one holding a newer view.
func (m *Mount) evaluate() {
	g := m.guard

	m.mu.Lock()
	if m.detached || m.outcome == Denied {
		m.mu.Unlock()
		return
	}
	next := g.Check()
	if next == m.outcome {
		m.mu.Unlock()
		return
	}
	m.outcome = next
	if next != Pending && m.verdict == Pending {
		m.verdict = next
		close(m.settled)
	}
	m.mu.Unlock()

	if next == Pending {
		return
	}
	g.metrics.RecordDecision(m.ctx, g.Name(), next.String())

	if next == Denied {
		target := g.RedirectTarget()
		g.logger.Info().Str(logging.FieldPath, m.path).Str("redirect", target).Msg("access denied")
		if g.nav != nil {
			g.nav.Navigate(m.ctx, target, m.path)
		}
		m.Unmount()
		return
	}
	g.logger.Debug().Str(logging.FieldPath, m.path).Msg("access granted")
}
