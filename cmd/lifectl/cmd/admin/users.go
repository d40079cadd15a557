package admin

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		users, err := a.API().ListUsers(cmdutil.Context(cmd))
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			role := u.Role
			if role == "" {
				role = sdk.RoleCustomer
			}
			rows = append(rows, []string{u.ID, u.Email, u.Name, role.String()})
		}
		return cmdutil.Table([]string{"ID", "EMAIL", "NAME", "ROLE"}, rows)
	},
}

var setRoleEmail string

var setRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <customer|agent|admin>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		newRole, err := sdk.ParseRole(args[1])
		if err != nil {
			return err
		}
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		if err := a.API().SetUserRole(cmdutil.Context(cmd), args[0], newRole); err != nil {
			return fmt.Errorf("failed to set role: %w", err)
		}
		if setRoleEmail != "" {
			a.Roles.Invalidate(setRoleEmail)
		}
		pterm.Success.Printf("User %s is now %s\n", args[0], newRole)
		return nil
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		if err := a.API().DeleteUser(cmdutil.Context(cmd), args[0]); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		pterm.Success.Printf("Deleted user %s\n", args[0])
		return nil
	},
}

func init() {
	setRoleCmd.Flags().StringVar(&setRoleEmail, "email", "", "The user's email, to refresh a cached role for that address")
}
