package admin

import (
	"github.com/spf13/cobra"
)

// AdminCmd groups the admin workflows. Every subcommand runs behind the admin guard.
var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin workflows",
}

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "Manage policy applications",
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users and roles",
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Manage the policy catalogue",
}

func init() {
	applicationsCmd.AddCommand(listApplicationsCmd)
	applicationsCmd.AddCommand(assignCmd)
	applicationsCmd.AddCommand(rejectCmd)

	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(setRoleCmd)
	usersCmd.AddCommand(deleteUserCmd)

	policiesCmd.AddCommand(listPoliciesCmd)
	policiesCmd.AddCommand(deletePolicyCmd)

	AdminCmd.AddCommand(applicationsCmd)
	AdminCmd.AddCommand(usersCmd)
	AdminCmd.AddCommand(policiesCmd)
	AdminCmd.AddCommand(transactionsCmd)
}
