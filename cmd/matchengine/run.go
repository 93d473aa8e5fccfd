package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder scheduler until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("sweep-now", false, "run one sweep at startup instead of waiting for the first tick")
}

func run(ctx context.Context, cmd *cobra.Command) error {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	e.logger.Info("starting the matchengine",
		"environment", e.cfg.Environment,
		"interval", e.cfg.ReminderInterval.String(),
		"window", e.cfg.ReminderWindow.String(),
		"notification_backend", e.cfg.NotificationBackend,
		"email_provider", e.cfg.Email.Provider)

	if sweepNow, _ := cmd.Flags().GetBool("sweep-now"); sweepNow {
		if _, err := e.scheduler.RunSweep(ctx); err != nil {
			e.logger.Error("initial sweep failed", "err", err)
		}
	}

	h, err := e.scheduler.Start(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	e.logger.Info("shutdown requested")
	h.Stop()
	return nil
}
