package agent

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/customer"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// AgentCmd groups the agent workflows
var AgentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Agent workflows",
	Long: `Commands for agents: review assigned applications, approve them and review
claims. 'agent apply' is for customers asking to become an agent.`,
}

var (
	applyName       string
	applyPhone      string
	applyExperience string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Ask to become an agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		identity := a.Session.Current()
		name := applyName
		if name == "" {
			name = identity.DisplayName
		}
		err = a.API().ApplyAsAgent(cmdutil.Context(cmd), sdk.AgentApplication{
			Email:      identity.Address,
			FullName:   name,
			Phone:      applyPhone,
			Experience: applyExperience,
			Photo:      identity.PhotoURL,
		})
		if err != nil {
			return fmt.Errorf("failed to submit agent application: %w", err)
		}
		pterm.Success.Println("Agent application submitted")
		return nil
	},
}

var assignedCmd = &cobra.Command{
	Use:   "assigned",
	Short: "List applications assigned to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Agent)
		if err != nil {
			return err
		}
		applications, err := a.API().ListAssignedApplications(cmdutil.Context(cmd), a.Session.Current().Address)
		if err != nil {
			return fmt.Errorf("failed to list assigned applications: %w", err)
		}
		return cmdutil.Table(customer.ApplicationHeader, customer.ApplicationRows(applications))
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <application-id>",
	Short: "Approve an assigned application",
	Long: `Approves the application, marks its first payment as due and counts the
purchase on the policy. The steps stop at the first failure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Agent)
		if err != nil {
			return err
		}
		ctx := cmdutil.Context(cmd)
		application, err := a.API().GetApplication(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get application: %w", err)
		}
		if err := a.API().ApproveAssignedApplication(ctx, application.ID, application.PolicyID); err != nil {
			return err
		}
		pterm.Success.Printf("Approved application %s for %s\n", application.ID, application.UserEmail)
		return nil
	},
}

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "List and review claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Agent)
		if err != nil {
			return err
		}
		claims, err := a.API().ListAllClaims(cmdutil.Context(cmd))
		if err != nil {
			return fmt.Errorf("failed to list claims: %w", err)
		}
		return cmdutil.Table(customer.ClaimHeader, customer.ClaimRows(claims))
	},
}

var reviewStatus string

var reviewCmd = &cobra.Command{
	Use:   "review <claim-id>",
	Short: "Approve or reject a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Agent)
		if err != nil {
			return err
		}
		if err := a.API().SetClaimStatus(cmdutil.Context(cmd), args[0], sdk.ClaimStatus(reviewStatus)); err != nil {
			return fmt.Errorf("failed to review claim: %w", err)
		}
		pterm.Success.Printf("Claim %s marked %s\n", args[0], reviewStatus)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyName, "name", "", "Full name (defaults to your profile name)")
	applyCmd.Flags().StringVar(&applyPhone, "phone", "", "Phone number")
	applyCmd.Flags().StringVar(&applyExperience, "experience", "", "Relevant experience")

	reviewCmd.Flags().StringVar(&reviewStatus, "status", string(sdk.ClaimApproved), "Approved or Rejected")
	claimsCmd.AddCommand(reviewCmd)

	AgentCmd.AddCommand(applyCmd)
	AgentCmd.AddCommand(assignedCmd)
	AgentCmd.AddCommand(approveCmd)
	AgentCmd.AddCommand(claimsCmd)
}
