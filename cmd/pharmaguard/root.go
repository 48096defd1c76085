package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"pharmaguard/internal/app"
	"pharmaguard/internal/platform/config"
	"pharmaguard/internal/platform/logger"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "pharmaguard",
		Short: "PharmaGuard - pharmaceutical batch verification",
		Long: `PharmaGuard verifies pharmaceutical batch identifiers against the FDA
drug registry, a ledger contract and a pattern analyzer, and registers new
batches on the ledger for manufacturers.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file (env vars override it)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCommand(flags))
	cmd.AddCommand(newVerifyCommand(flags))
	cmd.AddCommand(newRegisterCommand(flags))
	cmd.AddCommand(newTokenCommand(flags))

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

func (f *globalFlags) loadConfig() (config.Config, error) {
	return config.Load(f.configPath)
}

// buildApp loads configuration and wires the engine, logging to logOut.
func (f *globalFlags) buildApp(ctx context.Context, logOut io.Writer) (*app.App, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if f.debug {
		level = "debug"
	}
	return app.New(ctx, cfg, app.WithLogger(logger.NewWithWriter(logOut, level, cfg.Log.Format)))
}
