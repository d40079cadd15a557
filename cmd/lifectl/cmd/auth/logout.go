package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/internal/app"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		if a.Session.Current() == nil {
			pterm.Info.Println("Not signed in.")
			return nil
		}
		if err := a.Session.SignOut(cmd.Context()); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
		pterm.Success.Println("Signed out")
		return nil
	},
}
