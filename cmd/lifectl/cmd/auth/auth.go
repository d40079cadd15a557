package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// AuthCmd is the parent command for sign-in operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your session",
	Long:  `Commands for signing in, creating an account, signing out and showing the session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
}

func promptIfEmpty(value, label string, mask bool) (string, error) {
	if value != "" {
		return value, nil
	}
	input := pterm.DefaultInteractiveTextInput
	if mask {
		input = *input.WithMask("*")
	}
	return input.Show(label)
}
