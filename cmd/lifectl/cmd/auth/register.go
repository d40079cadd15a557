package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

var (
	registerName     string
	registerEmail    string
	registerPassword string
	registerPhoto    string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Long: `Creates an account with the identity provider, signs in and records the
profile with the backend. Passwords need at least 6 characters mixing upper
case, lower case and digits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		signer, err := cmdutil.Signer(a)
		if err != nil {
			return err
		}
		email, err := promptIfEmpty(registerEmail, "Email", false)
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(registerPassword, "Password", true)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		identity, err := signer.CreateAccount(ctx, sdk.SignUpInput{
			Address:     email,
			Password:    password,
			DisplayName: registerName,
			PhotoURL:    registerPhoto,
		})
		if err != nil {
			return err
		}
		if err := a.Public.UpsertUser(ctx, sdk.User{
			Email: identity.Address,
			Name:  registerName,
			Photo: registerPhoto,
		}); err != nil {
			pterm.Warning.Printf("Account created, but the profile could not be saved: %v\n", err)
		}

		pterm.Success.Printf("Account created for %s\n", identity.Address)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerPhoto, "photo", "", "Profile photo URL")
}
