// Package cmdutil holds the pieces every lifectl command shares: guard
// enforcement, the terminal navigator and table output.
package cmdutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/guard"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/role"
)

// ErrDenied is returned by guarded commands the caller may not run. The
// notice explaining why has already been printed.
var ErrDenied = errors.New("access denied")

// GuardPicker selects the guard a command runs behind.
type GuardPicker func(app.Guards) *guard.Guard

var (
	Authenticated GuardPicker = func(g app.Guards) *guard.Guard { return g.Authenticated }
	Agent         GuardPicker = func(g app.Guards) *guard.Guard { return g.Agent }
	Admin         GuardPicker = func(g app.Guards) *guard.Guard { return g.Admin }
)

// Navigator prints the sign-in and forbidden notices a browser would have
// navigated to, naming the command that was attempted.
type Navigator struct{}

// Navigate implements navigation.Navigator.
func (Navigator) Navigate(_ context.Context, to, from string) {
	switch to {
	case navigation.RouteLogin:
		pterm.Warning.Printf("Sign in required to run %q. Run 'lifectl auth login' first.\n", from)
	case navigation.RouteForbidden:
		pterm.Error.Printf("Your role does not allow %q.\n", from)
	default:
		pterm.Info.Printf("Continue at %s\n", navigation.RedirectURL(to, from))
	}
}

// DevicePrompt shows where to finish a browser sign-in.
func DevicePrompt(resp *oidc.DeviceAuthorizationResponse) {
	pterm.DefaultSection.Println("Sign in with your browser")
	pterm.Info.Printf("Open: %s\n", resp.VerificationURI)
	pterm.Info.Printf("Code: %s\n", resp.UserCode)
}

// Context is the command's context with its path recorded as the location
// any redirect refers back to.
func Context(cmd *cobra.Command) context.Context {
	return navigation.WithLocation(cmd.Context(), cmd.CommandPath())
}

// Require waits for the picked guard to decide on cmd. Role guards run only
// after the sign-in guard has granted, so a signed-out caller is always told
// to sign in. It returns the App once access is granted.
func Require(cmd *cobra.Command, pick GuardPicker) (*app.App, error) {
	a := app.MustFromContext(cmd.Context())
	path := cmd.CommandPath()

	ctx, cancel := context.WithTimeout(Context(cmd), a.Config.RequestTimeout)
	defer cancel()

	chain := []*guard.Guard{a.Guards.Authenticated}
	if g := pick(a.Guards); g != a.Guards.Authenticated {
		chain = append(chain, g)
	}
	for _, g := range chain {
		outcome, err := g.Await(ctx, path)
		if errors.Is(err, guard.ErrStillResolving) {
			return nil, fmt.Errorf("%s: your session or role is still resolving, try again", path)
		}
		if err != nil {
			return nil, err
		}
		if outcome != guard.Granted {
			return nil, fmt.Errorf("%s: %w", path, ErrDenied)
		}
	}
	return a, nil
}

// Table renders rows under header.
func Table(header []string, rows [][]string) error {
	if len(rows) == 0 {
		pterm.Info.Println("Nothing to show.")
		return nil
	}
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ResolveRole waits until the resolver has answered for address or ctx ends,
// and returns the state it reached.
func ResolveRole(ctx context.Context, roles *role.Resolver, address string) role.State {
	changed := make(chan struct{}, 1)
	unsubscribe := roles.Subscribe(func(role.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		st := roles.State()
		if st.Address == address && (st.Phase == role.PhaseResolved || st.Phase == role.PhaseFailed) {
			return st
		}
		select {
		case <-ctx.Done():
			return roles.State()
		case <-changed:
		}
	}
}

// Signer returns the interactive authenticator or explains why there is none.
func Signer(a *app.App) (app.Authenticator, error) {
	if a.Auth == nil {
		return nil, errors.New("signing in is disabled while a static token is configured")
	}
	return a.Auth, nil
}
