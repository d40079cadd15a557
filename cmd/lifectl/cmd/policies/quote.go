package policies

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

var (
	quoteInput sdk.QuoteInput
	quoteSave  bool
)

// QuoteCmd estimates a premium and optionally saves the quote
var QuoteCmd = &cobra.Command{
	Use:   "quote <policy-id>",
	Short: "Estimate the premium for a policy",
	Long: `Estimates the monthly and annual premium for a policy. With --save the quote
is stored for the signed-in user so it can be applied for.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		premium, err := sdk.CalculatePremium(quoteInput)
		if err != nil {
			return err
		}
		pterm.DefaultSection.Println("Premium estimate")
		pterm.Printf("Monthly: %d\n", premium.Monthly)
		pterm.Printf("Annual:  %d\n", premium.Annual)

		if !quoteSave {
			return nil
		}
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		quote, err := a.API().CreateQuote(cmdutil.Context(cmd), a.Session.Current(), args[0], quoteInput)
		if err != nil {
			return fmt.Errorf("failed to save quote: %w", err)
		}
		pterm.Success.Printf("Saved quote %s. Apply with: lifectl apply %s --quote %s\n", quote.ID, args[0], quote.ID)
		return nil
	},
}

func init() {
	QuoteCmd.Flags().IntVar(&quoteInput.Age, "age", 0, "Applicant age")
	QuoteCmd.Flags().StringVar(&quoteInput.Gender, "gender", "", "Applicant gender")
	QuoteCmd.Flags().Int64Var(&quoteInput.Coverage, "coverage", 0, "Coverage amount")
	QuoteCmd.Flags().IntVar(&quoteInput.DurationYears, "duration", 0, "Term in years")
	QuoteCmd.Flags().BoolVar(&quoteInput.Smoker, "smoker", false, "Applicant smokes")
	QuoteCmd.Flags().BoolVar(&quoteSave, "save", false, "Save the quote (requires sign-in)")
}
