package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/cord19-explorer/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	srvAddr string
	srvData string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard over the cleaned data",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *cfg
		c.DashboardAddr = firstString(srvAddr, cfg.DashboardAddr)
		c.CleanedPath = firstString(srvData, cfg.CleanedPath)
		if _, err := os.Stat(c.CleanedPath); err != nil {
			fmt.Printf("⚠ %s not found yet; the dashboard will ask you to run 'cord19 analyze' first\n", c.CleanedPath)
		}

		srv := &http.Server{
			Addr:              c.DashboardAddr,
			Handler:           dashboard.New(&c, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", c.DashboardAddr)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(ln) }()
		fmt.Printf("✓ Dashboard listening on %s (data: %s)\n", ln.Addr(), c.CleanedPath)
		logger.Info("dashboard started", "addr", ln.Addr().String(), "data", c.CleanedPath)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		fmt.Println("✓ Dashboard stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config: :8501)")
	serveCmd.Flags().StringVar(&srvData, "data", "", "cleaned CSV to serve (default from config: cord19_cleaned.csv)")
}
