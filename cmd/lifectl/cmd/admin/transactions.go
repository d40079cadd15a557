package admin

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

var (
	txEmail  string
	txPolicy string
	txFrom   string
	txTo     string
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List payments with income totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := sdk.PaymentFilter{Email: txEmail, Policy: txPolicy}
		var err error
		if txFrom != "" {
			if filter.From, err = time.Parse(time.DateOnly, txFrom); err != nil {
				return fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
			}
		}
		if txTo != "" {
			if filter.To, err = time.Parse(time.DateOnly, txTo); err != nil {
				return fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
			}
		}

		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		payments, err := a.API().ListPayments(cmdutil.Context(cmd), filter)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}

		rows := make([][]string, 0, len(payments))
		for _, p := range payments {
			rows = append(rows, []string{p.TransactionID, p.Email, p.PolicyTitle, fmt.Sprintf("%.2f", p.Amount), p.Date.Format(time.DateOnly)})
		}
		if err := cmdutil.Table([]string{"TRANSACTION", "EMAIL", "POLICY", "AMOUNT", "DATE"}, rows); err != nil {
			return err
		}

		summary := sdk.SummarizePayments(payments)
		pterm.DefaultSection.Println("Income")
		pterm.Info.Printf("Total: %.2f across %d payments\n", summary.Total, summary.Count)
		daily := make([][]string, 0, len(summary.Daily))
		for _, d := range summary.Daily {
			daily = append(daily, []string{d.Day, fmt.Sprintf("%.2f", d.Amount)})
		}
		return cmdutil.Table([]string{"DAY", "AMOUNT"}, daily)
	},
}

func init() {
	transactionsCmd.Flags().StringVar(&txEmail, "email", "", "Filter by payer email")
	transactionsCmd.Flags().StringVar(&txPolicy, "policy", "", "Filter by policy")
	transactionsCmd.Flags().StringVar(&txFrom, "from", "", "Earliest date (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&txTo, "to", "", "Latest date (YYYY-MM-DD)")
}
