package admin

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
)

var listPoliciesCmd = &cobra.Command{
	Use:   "list",
	Short: "List every policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		policies, err := a.API().ListAllPolicies(cmdutil.Context(cmd))
		if err != nil {
			return fmt.Errorf("failed to list policies: %w", err)
		}
		rows := make([][]string, 0, len(policies))
		for _, p := range policies {
			rows = append(rows, []string{p.ID, p.Title, p.Category, strconv.FormatFloat(p.BasePremiumRate, 'f', -1, 64), strconv.Itoa(p.PurchaseCount)})
		}
		return cmdutil.Table([]string{"ID", "TITLE", "CATEGORY", "RATE", "PURCHASES"}, rows)
	},
}

var deletePolicyCmd = &cobra.Command{
	Use:   "delete <policy-id>",
	Short: "Delete a policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Admin)
		if err != nil {
			return err
		}
		if err := a.API().DeletePolicy(cmdutil.Context(cmd), args[0]); err != nil {
			return fmt.Errorf("failed to delete policy: %w", err)
		}
		pterm.Success.Printf("Deleted policy %s\n", args[0])
		return nil
	},
}
