package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/admin"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/agent"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/auth"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/blogs"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/customer"
	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/policies"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/config"
	"github.com/tahsinratul/life-client/internal/logging"
)

var (
	cfgFile string
	current *app.App
)

var rootCmd = &cobra.Command{
	Use:   "lifectl",
	Short: "Life insurance client",
	Long: `lifectl browses the policy catalogue and runs the customer, agent and
admin workflows of the life insurance service. Commands that need a signed-in
user or a particular role check access before calling the backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := config.New()
		flags := cmd.Root().PersistentFlags()
		for key, name := range map[string]string{
			config.KeyBackendURL: "backend-url",
			config.KeyToken:      "token",
			config.KeyDebug:      "debug",
		} {
			if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
		if err := config.ReadFile(v, cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger := logging.New(os.Stderr, cfg.Debug)
		a, err := app.New(cfg, app.Options{
			Logger:    logger,
			Navigator: cmdutil.Navigator{},
			Prompt:    cmdutil.DevicePrompt,
		})
		if err != nil {
			return err
		}
		a.Start(cmd.Context())
		current = a
		cmd.SetContext(app.Inject(cmd.Context(), a))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	if current != nil {
		current.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (env overrides it)")
	rootCmd.PersistentFlags().String("backend-url", "", "Backend base URL (env: LIFECTL_BACKEND_URL)")
	rootCmd.PersistentFlags().String("token", "", "Static bearer token instead of signing in (env: LIFECTL_TOKEN)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: LIFECTL_DEBUG)")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(policies.PoliciesCmd)
	rootCmd.AddCommand(policies.QuoteCmd)
	rootCmd.AddCommand(policies.ApplyCmd)
	rootCmd.AddCommand(blogs.BlogsCmd)
	rootCmd.AddCommand(customer.MyCmd)
	rootCmd.AddCommand(customer.ClaimsCmd)
	rootCmd.AddCommand(customer.PaymentsCmd)
	rootCmd.AddCommand(customer.SubscribeCmd)
	rootCmd.AddCommand(agent.AgentCmd)
	rootCmd.AddCommand(admin.AdminCmd)
	rootCmd.AddCommand(dashboardCmd)
}
