package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pharmaguard/internal/platform/httpserver"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the verification HTTP API",
		Long: `Start the verification HTTP API.

The engine is initialized before the listener opens. Without a contract
address the server runs degraded: ledger evidence comes from the local
fallback and batch registration is refused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags)
		},
	}
}

func runServe(ctx context.Context, flags *globalFlags) error {
	a, err := flags.buildApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Error("shutdown cleanup failed", "error", err)
		}
	}()

	a.Init(ctx)

	srv := httpserver.New(a.Config.Server.Addr, a.Router)
	return httpserver.Run(ctx, srv, a.Config.Server.ShutdownTimeout, a.Logger)
}
