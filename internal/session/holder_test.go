package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsinratul/life-client/pkg/sdk"
)

type recordingSyncer struct {
	mu        sync.Mutex
	addresses []string
	err       error
}

func (s *recordingSyncer) SyncSession(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses = append(s.addresses, address)
	return s.err
}

func (s *recordingSyncer) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.addresses...)
}

func ann() *sdk.Identity {
	return &sdk.Identity{Address: "a@x.com", AccessToken: "tok1"}
}

func TestHolder_ResolvingUntilFirstDelivery(t *testing.T) {
	provider := NewManualProvider(nil, false)
	h := New(provider)
	h.Start()
	defer h.Close()

	assert.Equal(t, StatusResolving, h.Status())
	assert.Nil(t, h.Current())
	select {
	case <-h.Settled():
		t.Fatal("settled before first delivery")
	default:
	}

	provider.Deliver(nil)

	assert.Equal(t, StatusSettled, h.Status())
	assert.Nil(t, h.Current())
	<-h.Settled()
}

func TestHolder_WatchReplaysCurrentEvent(t *testing.T) {
	provider := NewManualProvider(ann(), true)
	h := New(provider)
	h.Start()
	defer h.Close()

	var events []Event
	unsubscribe := h.Watch(func(ev Event) { events = append(events, ev) })
	defer unsubscribe()

	require.Len(t, events, 1)
	assert.Equal(t, StatusSettled, events[0].Status)
	assert.Equal(t, "a@x.com", events[0].Identity.Address)

	provider.Deliver(nil)
	require.Len(t, events, 2)
	assert.Nil(t, events[1].Identity)
}

func TestHolder_WatchDuringDeliveriesEndsOnLatest(t *testing.T) {
	provider := NewManualProvider(nil, true)
	h := New(provider)
	h.Start()
	defer h.Close()

	const deliveries = 500
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range deliveries {
			provider.Deliver(&sdk.Identity{Address: fmt.Sprintf("user%d@x.com", i), AccessToken: "tok"})
		}
	}()

	var mu sync.Mutex
	var last string
	unsubscribe := h.Watch(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		last = ""
		if ev.Identity != nil {
			last = ev.Identity.Address
		}
	})
	defer unsubscribe()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, fmt.Sprintf("user%d@x.com", deliveries-1), last)
	assert.Equal(t, last, h.Current().Address)
}

func TestHolder_NotifiesSubscribersInOrder(t *testing.T) {
	provider := NewManualProvider(nil, false)
	h := New(provider)

	var mu sync.Mutex
	var seen []string
	record := func(tag string) Listener {
		return func(e Event) {
			mu.Lock()
			defer mu.Unlock()
			addr := "absent"
			if e.Identity != nil {
				addr = e.Identity.Address
			}
			seen = append(seen, tag+":"+addr+":"+e.Status.String())
		}
	}
	h.Subscribe(record("first"))
	unsubscribe := h.Subscribe(record("second"))
	h.Start()
	defer h.Close()

	provider.Deliver(ann())
	unsubscribe()
	unsubscribe()
	provider.Deliver(nil)

	assert.Equal(t, []string{
		"first:a@x.com:settled",
		"second:a@x.com:settled",
		"first:absent:settled",
	}, seen)
}

func TestHolder_RepeatedAbsentIsNotRedelivered(t *testing.T) {
	provider := NewManualProvider(nil, true)
	h := New(provider)
	calls := 0
	h.Subscribe(func(Event) { calls++ })
	h.Start()
	defer h.Close()

	provider.Deliver(nil)
	provider.Deliver(nil)
	assert.Equal(t, 1, calls)
}

func TestHolder_CurrentIsACopy(t *testing.T) {
	provider := NewManualProvider(ann(), true)
	h := New(provider)
	h.Start()
	defer h.Close()

	current := h.Current()
	current.AccessToken = "mutated"
	assert.Equal(t, "tok1", h.Current().AccessToken)
}

func TestHolder_SignOut(t *testing.T) {
	provider := NewManualProvider(ann(), true)
	h := New(provider)
	h.Start()
	defer h.Close()

	var events []Event
	h.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, h.SignOut(context.Background()))
	assert.Nil(t, h.Current())
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Identity)
}

func TestHolder_SignOutFailureLeavesIdentity(t *testing.T) {
	provider := NewManualProvider(ann(), true)
	provider.SignOutErr = sdk.NewProviderError("sign out", sdk.ProviderUnavailable, errors.New("offline"))
	h := New(provider)
	h.Start()
	defer h.Close()

	err := h.SignOut(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrProviderUnavailable)
	require.NotNil(t, h.Current())
	assert.Equal(t, "a@x.com", h.Current().Address)
}

func TestHolder_SessionSyncIsBestEffort(t *testing.T) {
	syncer := &recordingSyncer{err: errors.New("backend down")}
	provider := NewManualProvider(nil, true)
	h := New(provider, WithSyncer(syncer))
	h.Start()

	provider.Deliver(ann())
	h.Close()

	assert.Equal(t, []string{"a@x.com"}, syncer.calls())
	require.NotNil(t, h.Current(), "sync failure must not sign the user out")
}

func TestHolder_NoSyncWhenSignedOut(t *testing.T) {
	syncer := &recordingSyncer{}
	provider := NewManualProvider(nil, true)
	h := New(provider, WithSyncer(syncer))
	h.Start()
	h.Close()

	assert.Empty(t, syncer.calls())
}
