package customer

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// MyCmd shows the signed-in customer's records
var MyCmd = &cobra.Command{
	Use:   "my",
	Short: "Show your policies and claims",
}

var myPoliciesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List your applications and policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		applications, err := a.API().ListMyApplications(cmdutil.Context(cmd), a.Session.Current().Address)
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}
		return cmdutil.Table(ApplicationHeader, ApplicationRows(applications))
	},
}

var myClaimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "List your claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		claims, err := a.API().ListClaims(cmdutil.Context(cmd), a.Session.Current().Address)
		if err != nil {
			return fmt.Errorf("failed to list claims: %w", err)
		}
		return cmdutil.Table(ClaimHeader, ClaimRows(claims))
	},
}

// ClaimsCmd files claims
var ClaimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "File claims against your policies",
}

var (
	claimPolicy   string
	claimReason   string
	claimDocument string
)

var fileClaimCmd = &cobra.Command{
	Use:   "file",
	Short: "File a claim",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		ctx := cmdutil.Context(cmd)
		claim := sdk.Claim{
			PolicyID:    claimPolicy,
			UserEmail:   a.Session.Current().Address,
			Reason:      claimReason,
			DocumentURL: claimDocument,
		}
		if policy, err := a.Public.GetPolicy(ctx, claimPolicy); err == nil {
			claim.PolicyTitle = policy.Title
		}
		filed, err := a.API().FileClaim(ctx, claim)
		if err != nil {
			return fmt.Errorf("failed to file claim: %w", err)
		}
		pterm.Success.Printf("Claim %s filed (status %s)\n", filed.ID, filed.Status)
		return nil
	},
}

// SubscribeCmd signs up for the newsletter
var SubscribeCmd = &cobra.Command{
	Use:   "subscribe <name> <email>",
	Short: "Subscribe to the newsletter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		if err := a.Public.Subscribe(cmdutil.Context(cmd), sdk.Subscriber{Name: args[0], Email: args[1]}); err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		pterm.Success.Println("Subscribed")
		return nil
	},
}

// ApplicationHeader and ApplicationRows render applications in tables.
var ApplicationHeader = []string{"ID", "POLICY", "STATUS", "PAYMENT", "MONTHLY", "AGENT"}

func ApplicationRows(applications []sdk.Application) [][]string {
	rows := make([][]string, 0, len(applications))
	for _, a := range applications {
		rows = append(rows, []string{
			a.ID,
			a.PolicyTitle,
			string(a.Status),
			a.PaymentStatus,
			fmt.Sprintf("%d", a.QuoteInfo.Monthly),
			a.AssignedAgent,
		})
	}
	return rows
}

// ClaimHeader and ClaimRows render claims for customers and reviewers.
var ClaimHeader = []string{"ID", "POLICY", "EMAIL", "STATUS", "REASON"}

func ClaimRows(claims []sdk.Claim) [][]string {
	rows := make([][]string, 0, len(claims))
	for _, c := range claims {
		rows = append(rows, []string{c.ID, c.PolicyTitle, c.UserEmail, string(c.Status), c.Reason})
	}
	return rows
}

func init() {
	MyCmd.AddCommand(myPoliciesCmd)
	MyCmd.AddCommand(myClaimsCmd)

	fileClaimCmd.Flags().StringVar(&claimPolicy, "policy", "", "Policy ID")
	fileClaimCmd.Flags().StringVar(&claimReason, "reason", "", "Reason for the claim")
	fileClaimCmd.Flags().StringVar(&claimDocument, "document", "", "Supporting document URL")
	_ = fileClaimCmd.MarkFlagRequired("policy")
	_ = fileClaimCmd.MarkFlagRequired("reason")
	ClaimsCmd.AddCommand(fileClaimCmd)

	payCmd.Flags().StringVar(&payTransaction, "transaction", "", "Card processor transaction ID")
	payCmd.Flags().StringSliceVar(&payMethods, "method", []string{"card"}, "Payment method")
	_ = payCmd.MarkFlagRequired("transaction")
	PaymentsCmd.AddCommand(payCmd)
	PaymentsCmd.AddCommand(dueCmd)
}
