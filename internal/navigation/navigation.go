package navigation

import (
	"context"
	"net/url"
	"sync"
)

// Fixed redirect targets.
const (
	RouteHome      = "/"
	RouteLogin     = "/login"
	RouteForbidden = "/forbidden"
)

// FromParam carries the attempted path on redirects so the destination can
// return the user afterwards.
const FromParam = "from"

// Navigator moves the caller to another view. from is the location the
// caller was on when the redirect was triggered.
type Navigator interface {
	Navigate(ctx context.Context, to, from string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, to, from string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, to, from string) {
	f(ctx, to, from)
}

// RedirectURL appends the attempted path to target as the from parameter.
func RedirectURL(to, from string) string {
	if from == "" {
		return to
	}
	u, err := url.Parse(to)
	if err != nil {
		return to
	}
	q := u.Query()
	q.Set(FromParam, from)
	u.RawQuery = q.Encode()
	return u.String()
}

type locationContextKey struct{}

// WithLocation records the caller's current location on ctx.
func WithLocation(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, locationContextKey{}, path)
}

// LocationFromContext returns the location stored by WithLocation, or "".
func LocationFromContext(ctx context.Context) string {
	path, _ := ctx.Value(locationContextKey{}).(string)
	return path
}

// Slot holds the first redirect requested while serving one request. Later
// requests are counted but dropped, so a burst of failing calls produces a
// single navigation.
type Slot struct {
	mu      sync.Mutex
	to      string
	from    string
	set     bool
	dropped int
}

type slotContextKey struct{}

// WithSlot attaches a fresh Slot to ctx.
func WithSlot(ctx context.Context) (context.Context, *Slot) {
	slot := &Slot{}
	return context.WithValue(ctx, slotContextKey{}, slot), slot
}

// SlotFromContext returns the Slot attached by WithSlot, if any.
func SlotFromContext(ctx context.Context) (*Slot, bool) {
	slot, ok := ctx.Value(slotContextKey{}).(*Slot)
	return slot, ok
}

// Offer records a redirect unless one is already held. It reports whether
// the redirect was kept.
func (s *Slot) Offer(to, from string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		s.dropped++
		return false
	}
	s.to, s.from, s.set = to, from, true
	return true
}

// Redirect returns the held redirect.
func (s *Slot) Redirect() (to, from string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.to, s.from, s.set
}

// Dropped is the number of redirects collapsed into the held one.
func (s *Slot) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// SlotNavigator fills the request's Slot when ctx carries one and otherwise
// hands the redirect to Fallback.
type SlotNavigator struct {
	Fallback Navigator
}

// Navigate implements Navigator.
func (n SlotNavigator) Navigate(ctx context.Context, to, from string) {
	if slot, ok := SlotFromContext(ctx); ok {
		slot.Offer(to, from)
		return
	}
	if n.Fallback != nil {
		n.Fallback.Navigate(ctx, to, from)
	}
}
