package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/role"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the session and resolved role",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		identity := a.Session.Current()
		if identity == nil {
			return fmt.Errorf("not signed in")
		}

		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("Email: %s\n", identity.Address)
		if identity.DisplayName != "" {
			pterm.Info.Printf("Name: %s\n", identity.DisplayName)
		}
		if !identity.ExpiresAt.IsZero() {
			pterm.Info.Printf("Token expires at: %s\n", identity.ExpiresAt.Format(time.RFC1123))
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.RequestTimeout)
		defer cancel()
		st := cmdutil.ResolveRole(ctx, a.Roles, identity.Address)

		pterm.DefaultSection.Println("Role")
		switch st.Phase {
		case role.PhaseResolved:
			pterm.Info.Printf("Role: %s\n", st.Role)
		case role.PhaseFailed:
			pterm.Warning.Printf("Role unknown: %v\n", st.Err)
		default:
			pterm.Warning.Println("Role still resolving")
		}
		return nil
	},
}
