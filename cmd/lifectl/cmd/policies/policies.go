package policies

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// PoliciesCmd browses the public policy catalogue
var PoliciesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Browse the policy catalogue",
}

var (
	listPage     int
	listCategory string
	listSearch   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogue policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		page, err := a.Public.ListPolicies(cmdutil.Context(cmd), sdk.PolicyQuery{
			Page:     listPage,
			Category: listCategory,
			Search:   listSearch,
		})
		if err != nil {
			return fmt.Errorf("failed to list policies: %w", err)
		}
		if err := cmdutil.Table(policyHeader, policyRows(page.Policies)); err != nil {
			return err
		}
		pterm.Info.Printf("Page %d of %d (%d policies)\n", max(listPage, 1), page.TotalPages(sdk.DefaultPolicyPageSize), page.Total)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <policy-id>",
	Short: "Show a policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		policy, err := a.Public.GetPolicy(cmdutil.Context(cmd), args[0])
		if err != nil {
			return fmt.Errorf("failed to get policy: %w", err)
		}
		pterm.DefaultSection.Println(policy.Title)
		pterm.Printf("Category: %s\n", policy.Category)
		pterm.Printf("Eligible ages: %d-%d\n", policy.MinAge, policy.MaxAge)
		pterm.Printf("Coverage: %s\n", policy.CoverageRange)
		pterm.Printf("Durations: %s\n", policy.DurationOptions)
		if len(policy.Tags) > 0 {
			pterm.Printf("Tags: %s\n", strings.Join(policy.Tags, ", "))
		}
		pterm.Println()
		pterm.Println(policy.Description)
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the most purchased policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		policies, err := a.Public.TopPolicies(cmdutil.Context(cmd))
		if err != nil {
			return fmt.Errorf("failed to list top policies: %w", err)
		}
		return cmdutil.Table(policyHeader, policyRows(policies))
	},
}

var policyHeader = []string{"ID", "TITLE", "CATEGORY", "AGES", "PURCHASES"}

func policyRows(policies []sdk.Policy) [][]string {
	rows := make([][]string, 0, len(policies))
	for _, p := range policies {
		rows = append(rows, []string{
			p.ID,
			p.Title,
			p.Category,
			fmt.Sprintf("%d-%d", p.MinAge, p.MaxAge),
			strconv.Itoa(p.PurchaseCount),
		})
	}
	return rows
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "Catalogue page")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Search titles")

	PoliciesCmd.AddCommand(listCmd)
	PoliciesCmd.AddCommand(getCmd)
	PoliciesCmd.AddCommand(topCmd)
}
