package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/session"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

type fixture struct {
	provider *session.ManualProvider
	holder   *session.Holder
	nav      *navigation.Recorder
	client   *Client

	mu          sync.Mutex
	authHeaders []string
}

// newFixture starts a backend that replies with the status registered for
// each path (200 when unregistered) and records the Authorization header.
func newFixture(t *testing.T, identity *sdk.Identity, statuses map[string]int) *fixture {
	t.Helper()
	f := &fixture{
		provider: session.NewManualProvider(identity, true),
		nav:      &navigation.Recorder{},
	}
	f.holder = session.New(f.provider)
	f.holder.Start()
	t.Cleanup(f.holder.Close)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		f.mu.Unlock()
		if status, ok := statuses[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	c, err := New(server.URL, f.holder, f.nav, Options{})
	require.NoError(t, err)
	f.client = c
	return f
}

func (f *fixture) headers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

func TestTransport_AttachesCurrentCredential(t *testing.T) {
	f := newFixture(t, &sdk.Identity{Address: "a@x.com", AccessToken: "tok1"}, nil)

	require.NoError(t, f.client.Request(context.Background(), http.MethodGet, "/policies", nil, nil))
	f.provider.Deliver(&sdk.Identity{Address: "a@x.com", AccessToken: "tok2"})
	require.NoError(t, f.client.Request(context.Background(), http.MethodGet, "/policies", nil, nil))
	f.provider.Deliver(nil)
	require.NoError(t, f.client.Request(context.Background(), http.MethodGet, "/policies", nil, nil))

	assert.Equal(t, []string{"Bearer tok1", "Bearer tok2", ""}, f.headers())
	assert.Empty(t, f.nav.Visits())
}

func TestTransport_StripsCallerAuthorizationWhenSignedOut(t *testing.T) {
	f := newFixture(t, nil, nil)

	req, err := http.NewRequest(http.MethodGet, f.client.SDK().BaseURL()+"/blogs", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer leaked")

	resp, err := f.client.HTTPClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{""}, f.headers())
	assert.Equal(t, "Bearer leaked", req.Header.Get("Authorization"), "caller request must not be modified")
}

func TestTransport_Forbidden(t *testing.T) {
	f := newFixture(t, &sdk.Identity{Address: "a@x.com", AccessToken: "tok1"}, map[string]int{"/users": http.StatusForbidden})
	ctx := navigation.WithLocation(context.Background(), "/dashboard/manage-users")

	err := f.client.Request(ctx, http.MethodGet, "/users", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrAuthorizationDenied)

	assert.Equal(t, []navigation.Visit{{To: navigation.RouteForbidden, From: "/dashboard/manage-users"}}, f.nav.Visits())
	require.NotNil(t, f.holder.Current(), "403 must leave the identity in place")
	assert.Zero(t, f.provider.SignOuts())
}

func TestTransport_Unauthenticated(t *testing.T) {
	f := newFixture(t, &sdk.Identity{Address: "a@x.com", AccessToken: "tok1"}, map[string]int{"/applications": http.StatusUnauthorized})
	ctx := navigation.WithLocation(context.Background(), "/dashboard/my-policies")

	err := f.client.Request(ctx, http.MethodGet, "/applications", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrAuthenticationInvalid)

	assert.Nil(t, f.holder.Current())
	assert.Equal(t, 1, f.provider.SignOuts())
	assert.Equal(t, []navigation.Visit{{To: navigation.RouteLogin, From: "/dashboard/my-policies"}}, f.nav.Visits())
}

func TestTransport_UnauthenticatedSignOutFailureStillRedirects(t *testing.T) {
	f := newFixture(t, &sdk.Identity{Address: "a@x.com", AccessToken: "tok1"}, map[string]int{"/claims": http.StatusUnauthorized})
	f.provider.SignOutErr = sdk.NewProviderError("sign out", sdk.ProviderUnavailable, errors.New("offline"))

	err := f.client.Request(context.Background(), http.MethodGet, "/claims", nil, nil)
	assert.ErrorIs(t, err, sdk.ErrAuthenticationInvalid)

	last, ok := f.nav.Last()
	require.True(t, ok)
	assert.Equal(t, navigation.RouteLogin, last.To)
}

func TestTransport_OtherErrorsPassThrough(t *testing.T) {
	f := newFixture(t, &sdk.Identity{Address: "a@x.com", AccessToken: "tok1"}, map[string]int{
		"/policy/missing": http.StatusNotFound,
		"/policies":       http.StatusConflict,
		"/payments":       http.StatusInternalServerError,
	})
	ctx := context.Background()

	for _, path := range []string{"/policy/missing", "/policies", "/payments"} {
		err := f.client.Request(ctx, http.MethodGet, path, nil, nil)
		var httpErr *sdk.HTTPError
		require.ErrorAs(t, err, &httpErr)
	}
	assert.Empty(t, f.nav.Visits())
	assert.NotNil(t, f.holder.Current())
}

func TestTransport_BurstCollapsesIntoOneRedirect(t *testing.T) {
	f := newFixture(t, &sdk.Identity{Address: "a@x.com", AccessToken: "tok1"}, map[string]int{"/users": http.StatusForbidden})
	f.client.httpClient.Transport.(*Transport).Navigator = navigation.SlotNavigator{Fallback: f.nav}

	ctx, slot := navigation.WithSlot(navigation.WithLocation(context.Background(), "/dashboard/manage-users"))
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.client.Request(ctx, http.MethodGet, "/users", nil, nil); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, failures.Load())
	to, from, ok := slot.Redirect()
	require.True(t, ok)
	assert.Equal(t, navigation.RouteForbidden, to)
	assert.Equal(t, "/dashboard/manage-users", from)
	assert.Equal(t, 4, slot.Dropped())
	assert.Empty(t, f.nav.Visits())
}

func TestNew_RequiresSession(t *testing.T) {
	_, err := New("https://backend.example.com", nil, nil, Options{})
	assert.Error(t, err)
}
