package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/config"
	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/web"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// fakeBackend serves canned payloads, records the Authorization header per
// path and can hold role lookups until gate is closed.
type fakeBackend struct {
	mu        sync.Mutex
	roles     map[string]string
	statuses  map[string]int
	auth      map[string]string
	roleCalls int
	gate      chan struct{}
}

func newFakeBackend(t *testing.T, roles map[string]string) (*fakeBackend, *httptest.Server) {
	t.Helper()
	be := &fakeBackend{roles: roles, statuses: map[string]int{}, auth: map[string]string{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)
	return be, srv
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth[r.URL.Path] = r.Header.Get("Authorization")
	status, override := b.statuses[r.URL.Path]
	gate := b.gate
	b.mu.Unlock()

	if override {
		w.WriteHeader(status)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/role"):
		if gate != nil {
			<-gate
		}
		b.mu.Lock()
		b.roleCalls++
		address := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/users/"), "/role")
		role := b.roles[address]
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"role": role})
	case r.URL.Path == "/policies":
		_, _ = w.Write([]byte(`{"policies":[{"_id":"p1","title":"Term Life"}],"total":10}`))
	case r.URL.Path == "/users" && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`[{"_id":"u1","email":"ann@example.com","role":"customer"}]`))
	case strings.HasPrefix(r.URL.Path, "/user/"):
		_, _ = w.Write([]byte(`{"_id":"u1","email":"ann@example.com","name":"Ann"}`))
	case r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`[]`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (b *fakeBackend) authorization(path string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.auth[path]
	return v, ok
}

func (b *fakeBackend) roleCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.roleCalls
}

func tokenFor(t *testing.T, address string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": address,
		"name":  "Test User",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

// newDashboard wires an App signed in as address against backendURL. An
// empty address starts signed out.
func newDashboard(t *testing.T, backendURL, address string, wait time.Duration) (*app.App, web.RouterOptions) {
	t.Helper()
	v := config.New()
	v.Set(config.KeyBackendURL, backendURL)
	v.Set(config.KeyCredentialsPath, filepath.Join(t.TempDir(), "credentials.json"))
	v.Set(config.KeyRequestTimeout, "2s")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	if address != "" {
		cfg.Token = tokenFor(t, address)
	}
	cfg.Dashboard.PendingWait = wait

	a, err := app.New(cfg, app.Options{Logger: logging.Nop()})
	require.NoError(t, err)
	a.Start(context.Background())
	t.Cleanup(a.Close)
	return a, web.OptionsFromApp(a)
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicPages_SendNoCredentials(t *testing.T) {
	be, srv := newFakeBackend(t, map[string]string{"ann@example.com": "customer"})
	_, opts := newDashboard(t, srv.URL, "ann@example.com", time.Second)
	router := web.NewRouter(opts)

	rec := serve(router, http.MethodGet, "/policies?page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listing web.PolicyListing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Equal(t, 2, listing.Page)
	assert.Equal(t, 2, listing.Pages)
	require.Len(t, listing.Policies, 1)

	auth, ok := be.authorization("/policies")
	require.True(t, ok)
	assert.Empty(t, auth)
}

func TestGuardedRoutes(t *testing.T) {
	roles := map[string]string{
		"root@example.com":  "admin",
		"agent@example.com": "agent",
		"ann@example.com":   "",
	}

	tests := []struct {
		name     string
		address  string
		path     string
		wantCode int
		wantLoc  string
	}{
		{"admin reaches admin page", "root@example.com", "/dashboard/manage-users", http.StatusOK, ""},
		{"agent reaches agent page", "agent@example.com", "/dashboard/assigned-customers", http.StatusOK, ""},
		{"customer reaches customer page", "ann@example.com", "/dashboard/my-policies", http.StatusOK, ""},
		{"agent reaches customer page", "agent@example.com", "/dashboard/claims", http.StatusOK, ""},
		{"customer denied agent page", "ann@example.com", "/dashboard/assigned-customers", http.StatusSeeOther, "/forbidden?from=%2Fdashboard%2Fassigned-customers"},
		{"agent denied admin page", "agent@example.com", "/dashboard/manage-users", http.StatusSeeOther, "/forbidden?from=%2Fdashboard%2Fmanage-users"},
		{"admin denied agent page", "root@example.com", "/dashboard/claim-review", http.StatusSeeOther, "/forbidden?from=%2Fdashboard%2Fclaim-review"},
		{"signed out sent to login from customer page", "", "/dashboard/my-policies", http.StatusSeeOther, "/login?from=%2Fdashboard%2Fmy-policies"},
		{"signed out sent to login from agent page", "", "/dashboard/claim-review", http.StatusSeeOther, "/login?from=%2Fdashboard%2Fclaim-review"},
		{"signed out sent to login from admin page", "", "/dashboard/manage-users", http.StatusSeeOther, "/login?from=%2Fdashboard%2Fmanage-users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newFakeBackend(t, roles)
			_, opts := newDashboard(t, srv.URL, tt.address, 2*time.Second)

			rec := serve(web.NewRouter(opts), http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestGuardedRoute_PendingWhileRoleResolves(t *testing.T) {
	be, srv := newFakeBackend(t, map[string]string{"root@example.com": "admin"})
	gate := make(chan struct{})
	be.gate = gate
	_, opts := newDashboard(t, srv.URL, "root@example.com", 50*time.Millisecond)
	t.Cleanup(func() { close(gate) })

	rec := serve(web.NewRouter(opts), http.MethodGet, "/dashboard/manage-users", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "pending", body["state"])
	assert.Equal(t, "/dashboard/manage-users", body["path"])
}

func TestUnauthorizedDuringHandler_RedirectsToLogin(t *testing.T) {
	be, srv := newFakeBackend(t, map[string]string{"ann@example.com": "customer"})
	be.statuses["/user/ann@example.com"] = http.StatusUnauthorized
	a, opts := newDashboard(t, srv.URL, "ann@example.com", 2*time.Second)

	rec := serve(web.NewRouter(opts), http.MethodGet, "/dashboard/profile", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?from=%2Fdashboard%2Fprofile", rec.Header().Get("Location"))
	assert.Nil(t, a.Session.Current())
}

func TestForbiddenDuringHandler_RedirectsToForbidden(t *testing.T) {
	be, srv := newFakeBackend(t, map[string]string{"ann@example.com": "customer"})
	be.statuses["/claims"] = http.StatusForbidden
	a, opts := newDashboard(t, srv.URL, "ann@example.com", 2*time.Second)

	rec := serve(web.NewRouter(opts), http.MethodGet, "/dashboard/claims", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/forbidden?from=%2Fdashboard%2Fclaims", rec.Header().Get("Location"))
	assert.NotNil(t, a.Session.Current())
}

func TestNoticePages(t *testing.T) {
	_, srv := newFakeBackend(t, nil)
	_, opts := newDashboard(t, srv.URL, "ann@example.com", time.Second)
	router := web.NewRouter(opts)

	rec := serve(router, http.MethodGet, "/forbidden?from=%2Fdashboard%2Fmanage-users", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	var page web.NoticePage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, web.NoticePage{State: "forbidden", From: "/dashboard/manage-users", SignedIn: true}, page)

	rec = serve(router, http.MethodGet, "/login", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

type fakeAuth struct {
	identity *sdk.Identity
	err      error
}

func (f *fakeAuth) SignInWithPassword(context.Context, string, string) (*sdk.Identity, error) {
	return f.identity, f.err
}

func (f *fakeAuth) SignInWithSocial(context.Context) (*sdk.Identity, error) {
	return f.identity, f.err
}

func (f *fakeAuth) CreateAccount(context.Context, sdk.SignUpInput) (*sdk.Identity, error) {
	return f.identity, f.err
}

func (f *fakeAuth) UpdateProfile(context.Context, string, string) (*sdk.Identity, error) {
	return f.identity, f.err
}

func TestLogin(t *testing.T) {
	_, srv := newFakeBackend(t, nil)
	_, opts := newDashboard(t, srv.URL, "ann@example.com", time.Second)

	t.Run("disabled with static token", func(t *testing.T) {
		rec := serve(web.NewRouter(opts), http.MethodPost, "/login", `{"email":"ann@example.com","password":"Secret1"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	withAuth := opts
	withAuth.Auth = &fakeAuth{identity: &sdk.Identity{Address: "ann@example.com", AccessToken: "t"}}
	router := web.NewRouter(withAuth)

	returns := []struct {
		from string
		want string
	}{
		{"", "/"},
		{"%2Fdashboard%2Fclaims", "/dashboard/claims"},
		{"%2F%2Fevil.example.com", "/"},
		{"https%3A%2F%2Fevil.example.com", "/"},
	}
	for _, tt := range returns {
		t.Run("returns to "+tt.want+" from "+tt.from, func(t *testing.T) {
			rec := serve(router, http.MethodPost, "/login?from="+tt.from, `{"email":"ann@example.com","password":"Secret1"}`)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}

	t.Run("provider error is shown inline", func(t *testing.T) {
		failing := opts
		failing.Auth = &fakeAuth{err: sdk.NewProviderError("sign in with password", sdk.ProviderInvalidCredentials, nil)}
		rec := serve(web.NewRouter(failing), http.MethodPost, "/login", `{"email":"ann@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body web.ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Email or password is incorrect.", body.Error)
	})
}

func TestLogout(t *testing.T) {
	_, srv := newFakeBackend(t, nil)
	a, opts := newDashboard(t, srv.URL, "ann@example.com", time.Second)

	rec := serve(web.NewRouter(opts), http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Nil(t, a.Session.Current())
}

func TestSetUserRole_InvalidatesCachedRole(t *testing.T) {
	be, srv := newFakeBackend(t, map[string]string{"root@example.com": "admin"})
	a, opts := newDashboard(t, srv.URL, "root@example.com", 2*time.Second)
	router := web.NewRouter(opts)

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/dashboard/manage-users", "").Code)
	require.Equal(t, 1, be.roleCallCount())

	rec := serve(router, http.MethodPatch, "/dashboard/manage-users/u1", `{"role":"admin","email":"root@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Eventually(t, func() bool { return be.roleCallCount() == 2 && a.Roles.State().Known() },
		2*time.Second, 10*time.Millisecond)
}

func TestSetUserRole_RejectsUnknownRole(t *testing.T) {
	_, srv := newFakeBackend(t, map[string]string{"root@example.com": "admin"})
	_, opts := newDashboard(t, srv.URL, "root@example.com", 2*time.Second)

	rec := serve(web.NewRouter(opts), http.MethodPatch, "/dashboard/manage-users/u1", `{"role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
