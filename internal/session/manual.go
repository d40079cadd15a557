package session

import (
	"context"
	"sync"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

// ManualProvider delivers whatever identity it is told to. It backs static
// bearer tokens passed on the command line and stands in for the identity
// provider in tests.
type ManualProvider struct {
	mu        sync.Mutex
	fns       map[int]func(*sdk.Identity)
	next      int
	initial   *sdk.Identity
	deliverAt bool

	// SignOutErr, when set, is returned by SignOut instead of clearing.
	SignOutErr error
	signOuts   int
}

// NewManualProvider returns a provider that delivers initial to each new
// subscriber when deliverInitial is true. Leaving it false keeps holders in
// StatusResolving until Deliver is called.
func NewManualProvider(initial *sdk.Identity, deliverInitial bool) *ManualProvider {
	return &ManualProvider{
		fns:       make(map[int]func(*sdk.Identity)),
		initial:   initial,
		deliverAt: deliverInitial,
	}
}

// OnIdentityChange implements Provider.
func (p *ManualProvider) OnIdentityChange(fn func(*sdk.Identity)) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.fns[id] = fn
	initial, deliver := p.initial, p.deliverAt
	p.mu.Unlock()

	if deliver {
		fn(initial)
	}
	return func() {
		p.mu.Lock()
		delete(p.fns, id)
		p.mu.Unlock()
	}
}

// Deliver pushes identity to every subscriber.
func (p *ManualProvider) Deliver(identity *sdk.Identity) {
	p.mu.Lock()
	p.initial = identity
	fns := make([]func(*sdk.Identity), 0, len(p.fns))
	for _, fn := range p.fns {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}

// SignOut implements Provider.
func (p *ManualProvider) SignOut(context.Context) error {
	p.mu.Lock()
	p.signOuts++
	err := p.SignOutErr
	if err == nil {
		p.initial = nil
	}
	p.mu.Unlock()
	return err
}

// SignOuts is the number of SignOut calls received.
func (p *ManualProvider) SignOuts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOuts
}
