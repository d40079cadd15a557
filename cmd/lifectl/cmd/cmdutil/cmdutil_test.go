package cmdutil_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/config"
	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/role"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// commandFor returns a command running as address against a backend that
// answers role lookups from roles. A missing entry blocks until the request
// is cancelled.
func commandFor(t *testing.T, address string, roles map[string]string, timeout time.Duration) (*cobra.Command, *app.App, *navigation.Recorder) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/role") {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		addr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/users/"), "/role")
		roleName, ok := roles[addr]
		if !ok {
			<-r.Context().Done()
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"role": roleName})
	}))
	t.Cleanup(srv.Close)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": address,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	v := config.New()
	v.Set(config.KeyBackendURL, srv.URL)
	v.Set(config.KeyCredentialsPath, filepath.Join(t.TempDir(), "credentials.json"))
	v.Set(config.KeyToken, token)
	v.Set(config.KeyRequestTimeout, timeout)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	nav := &navigation.Recorder{}
	a, err := app.New(cfg, app.Options{Logger: logging.Nop(), Navigator: nav})
	require.NoError(t, err)
	a.Start(context.Background())
	t.Cleanup(a.Close)

	cmd := &cobra.Command{Use: "assigned"}
	cmd.SetContext(app.Inject(context.Background(), a))
	return cmd, a, nav
}

func TestRequire_Granted(t *testing.T) {
	cmd, a, nav := commandFor(t, "root@example.com", map[string]string{"root@example.com": "admin"}, 2*time.Second)

	got, err := cmdutil.Require(cmd, cmdutil.Admin)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Empty(t, nav.Visits())
}

func TestRequire_DeniedNavigatesToForbidden(t *testing.T) {
	cmd, _, nav := commandFor(t, "ann@example.com", map[string]string{"ann@example.com": "customer"}, 2*time.Second)

	_, err := cmdutil.Require(cmd, cmdutil.Agent)
	require.ErrorIs(t, err, cmdutil.ErrDenied)

	last, ok := nav.Last()
	require.True(t, ok)
	assert.Equal(t, navigation.Visit{To: navigation.RouteForbidden, From: "assigned"}, last)
}

func TestRequire_StillResolving(t *testing.T) {
	cmd, _, nav := commandFor(t, "slow@example.com", nil, 100*time.Millisecond)

	_, err := cmdutil.Require(cmd, cmdutil.Admin)
	require.Error(t, err)
	assert.NotErrorIs(t, err, cmdutil.ErrDenied)
	assert.Contains(t, err.Error(), "still resolving")
	assert.Empty(t, nav.Visits())
}

func TestRequire_AuthenticatedIgnoresRole(t *testing.T) {
	cmd, _, _ := commandFor(t, "slow@example.com", nil, 2*time.Second)

	_, err := cmdutil.Require(cmd, cmdutil.Authenticated)
	require.NoError(t, err)
}

func TestRequire_SignedOutIsSentToLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	v := config.New()
	v.Set(config.KeyBackendURL, srv.URL)
	v.Set(config.KeyCredentialsPath, filepath.Join(t.TempDir(), "credentials.json"))
	v.Set(config.KeyRequestTimeout, "2s")
	cfg, err := config.Load(v)
	require.NoError(t, err)

	nav := &navigation.Recorder{}
	a, err := app.New(cfg, app.Options{Logger: logging.Nop(), Navigator: nav})
	require.NoError(t, err)
	a.Start(context.Background())
	t.Cleanup(a.Close)

	tests := []struct {
		name string
		pick cmdutil.GuardPicker
	}{
		{"authenticated", cmdutil.Authenticated},
		{"agent", cmdutil.Agent},
		{"admin", cmdutil.Admin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "review"}
			cmd.SetContext(app.Inject(context.Background(), a))

			_, err := cmdutil.Require(cmd, tt.pick)
			require.ErrorIs(t, err, cmdutil.ErrDenied)

			last, ok := nav.Last()
			require.True(t, ok)
			assert.Equal(t, navigation.Visit{To: navigation.RouteLogin, From: "review"}, last)
		})
	}
}

func TestResolveRole(t *testing.T) {
	_, a, _ := commandFor(t, "agent@example.com", map[string]string{"agent@example.com": "agent"}, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st := cmdutil.ResolveRole(ctx, a.Roles, "agent@example.com")
	assert.Equal(t, role.PhaseResolved, st.Phase)
	assert.Equal(t, sdk.RoleAgent, st.Role)
}

func TestSigner_StaticToken(t *testing.T) {
	_, a, _ := commandFor(t, "ann@example.com", map[string]string{"ann@example.com": ""}, 2*time.Second)

	_, err := cmdutil.Signer(a)
	assert.Error(t, err)
}
