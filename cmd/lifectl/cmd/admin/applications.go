package admin

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/customer"
)

var listApplicationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List every application",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		applications, err := a.API().ListApplicationsAdmin(cmdutil.Context(cmd))
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}
		return cmdutil.Table(customer.ApplicationHeader, customer.ApplicationRows(applications))
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <application-id> <agent-email>",
	Short: "Assign an application to an agent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		if err := a.API().AssignAgent(cmdutil.Context(cmd), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to assign agent: %w", err)
		}
		pterm.Success.Printf("Assigned %s to %s\n", args[0], args[1])
		return nil
	},
}

var rejectFeedback string

var rejectCmd = &cobra.Command{
	Use:   "reject <application-id>",
	Short: "Reject an application with feedback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		if err := a.API().RejectApplication(cmdutil.Context(cmd), args[0], rejectFeedback); err != nil {
			return fmt.Errorf("failed to reject application: %w", err)
		}
		pterm.Success.Printf("Rejected %s\n", args[0])
		return nil
	},
}

func init() {
	rejectCmd.Flags().StringVar(&rejectFeedback, "feedback", "", "Feedback shown to the applicant")
}
