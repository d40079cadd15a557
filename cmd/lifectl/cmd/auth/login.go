package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

var (
	loginEmail    string
	loginPassword string
	loginSocial   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long: `Signs in with an email and password, or with --social through the identity
provider's browser sign-in. The session is stored and reused by later commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		signer, err := cmdutil.Signer(a)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var identity *sdk.Identity
		if loginSocial {
			identity, err = signer.SignInWithSocial(ctx)
			if err != nil {
				return err
			}
			if err := a.Public.UpsertUser(ctx, sdk.User{
				Email: identity.Address,
				Name:  identity.DisplayName,
				Photo: identity.PhotoURL,
			}); err != nil {
				pterm.Warning.Printf("Signed in, but the profile could not be saved: %v\n", err)
			}
		} else {
			email, err := promptIfEmpty(loginEmail, "Email", false)
			if err != nil {
				return err
			}
			password, err := promptIfEmpty(loginPassword, "Password", true)
			if err != nil {
				return err
			}
			identity, err = signer.SignInWithPassword(ctx, email, password)
			if err != nil {
				return err
			}
		}

		fmt.Println("------------------------------------------------------------")
		pterm.Success.Println("Signed in")
		pterm.Info.Printf("Signed in as: %s\n", identity.Address)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginSocial, "social", false, "Sign in through the browser")
}
