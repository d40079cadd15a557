package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/web"
)

var dashboardAddr string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the local dashboard",
	Long: `Serves the dashboard routes as JSON on a local address. Guarded routes wait
briefly for the session and role, answer 202 while they are still resolving
and redirect to /login or /forbidden when access is denied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		addr := a.Config.Dashboard.Addr
		if dashboardAddr != "" {
			addr = dashboardAddr
		}

		srv := &http.Server{
			Addr:         addr,
			Handler:      web.NewRouter(web.OptionsFromApp(a)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: a.Config.RequestTimeout + a.Config.Dashboard.PendingWait + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			pterm.Info.Printf("Dashboard listening on http://%s\n", addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("dashboard server error: %w", err)
		case sig := <-shutdown:
			pterm.Info.Printf("Received %v, shutting down\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			return nil
		}
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAddr, "addr", "", "Listen address (default from dashboard.addr)")
}
