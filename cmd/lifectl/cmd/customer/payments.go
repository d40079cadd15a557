package customer

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// PaymentsCmd pays premiums for approved applications
var PaymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Pay premiums",
}

var (
	payTransaction string
	payMethods     []string
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List approved applications and their payment status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		applications, err := a.API().ListApprovedApplications(cmdutil.Context(cmd), a.Session.Current().Address)
		if err != nil {
			return fmt.Errorf("failed to list approved applications: %w", err)
		}
		return cmdutil.Table(ApplicationHeader, ApplicationRows(applications))
	},
}

var payCmd = &cobra.Command{
	Use:   "pay <application-id>",
	Short: "Record the monthly premium payment for an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		ctx := cmdutil.Context(cmd)
		api := a.API()

		application, err := api.GetApplication(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get application: %w", err)
		}
		if application.Status != sdk.ApplicationApproved {
			return fmt.Errorf("application %s is %s; only approved applications can be paid", application.ID, application.Status)
		}
		amount := float64(application.QuoteInfo.Monthly)
		if _, err := api.CreatePaymentIntent(ctx, amount); err != nil {
			return fmt.Errorf("failed to open payment: %w", err)
		}
		payment, err := api.RecordPayment(ctx, sdk.Payment{
			AppID:         application.ID,
			PolicyID:      application.PolicyID,
			PolicyTitle:   application.PolicyTitle,
			Email:         a.Session.Current().Address,
			TransactionID: payTransaction,
			Amount:        amount,
			PaymentMethod: payMethods,
		})
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		if err := api.MarkPaid(ctx, application.ID); err != nil {
			return fmt.Errorf("payment recorded but application not marked paid: %w", err)
		}
		pterm.Success.Printf("Paid %.2f for %s (payment %s)\n", payment.Amount, application.PolicyTitle, payment.ID)
		return nil
	},
}
