package policies

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

var (
	applyQuoteID   string
	applyApplicant map[string]string
)

// ApplyCmd files an application from a saved quote
var ApplyCmd = &cobra.Command{
	Use:   "apply <policy-id>",
	Short: "Apply for a policy using a saved quote",
	Long: `Files an application for a policy. The quote is taken from --quote or, when
omitted, the most recent quote saved for the policy. Applicant details are
passed as --field key=value (name, nid, phone, address, nominee, ...).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Authenticated)
		if err != nil {
			return err
		}
		ctx := cmdutil.Context(cmd)
		identity := a.Session.Current()

		quotes, err := a.API().ListQuotes(ctx, identity.Address)
		if err != nil {
			return fmt.Errorf("failed to list quotes: %w", err)
		}
		quote := pickQuote(quotes, args[0], applyQuoteID)
		if quote == nil {
			return fmt.Errorf("no saved quote for policy %s; run 'lifectl quote %s --save' first", args[0], args[0])
		}

		policy, err := a.Public.GetPolicy(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get policy: %w", err)
		}
		application, err := a.API().SubmitApplication(ctx, identity, policy, quote, applyApplicant)
		if err != nil {
			return fmt.Errorf("failed to submit application: %w", err)
		}
		pterm.Success.Printf("Application %s submitted for %s (status %s)\n", application.ID, policy.Title, application.Status)
		return nil
	},
}

// pickQuote returns the quote with id, or the newest quote for policyID when
// id is empty.
func pickQuote(quotes []sdk.Quote, policyID, id string) *sdk.Quote {
	var picked *sdk.Quote
	for i := range quotes {
		q := &quotes[i]
		if id != "" {
			if q.ID == id {
				return q
			}
			continue
		}
		if q.PolicyID == policyID && (picked == nil || q.CreatedAt.After(picked.CreatedAt)) {
			picked = q
		}
	}
	return picked
}

func init() {
	ApplyCmd.Flags().StringVar(&applyQuoteID, "quote", "", "Saved quote ID")
	ApplyCmd.Flags().StringToStringVar(&applyApplicant, "field", nil, "Applicant detail as key=value")
}
