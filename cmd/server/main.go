package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andy6609/roomchat-server/internal/app"
	"github.com/andy6609/roomchat-server/internal/config"
	applog "github.com/andy6609/roomchat-server/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "roomchat-server",
		Short:         "Multi-room line-based chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			boot := applog.New("info", "console")

			cfg, path, err := config.Load(boot, configPath, cmd.Flags())
			if err != nil {
				return err
			}

			logger := applog.New(cfg.LogLevel, cfg.LogFormat)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Str("admin_addr", cfg.AdminAddr).Msg("starting roomchat server")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.New(cfg, logger).Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	def := config.Default()
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./roomchat.yaml or $ROOMCHAT_CONFIG)")
	root.Flags().String("addr", def.Addr, "chat listen address")
	root.Flags().String("admin-addr", def.AdminAddr, "admin/metrics listen address, empty to disable")
	root.Flags().String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().String("log-format", def.LogFormat, "log format (console, json)")

	root.AddCommand(newConfigCmd(&configPath))
	return root
}

func newConfigCmd(configPath *string) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.WriteDefault(*configPath)
			if err != nil {
				return fmt.Errorf("write default config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cfgCmd
}
