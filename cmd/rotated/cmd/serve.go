package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/goRotate/internal/app"
	"github.com/spf13/cobra"
)

var (
	configPath string
	addr       string
	logLevel   string
	store      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTPAddr = addr
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("store") {
			cfg.Store = store
		}

		log := app.NewLogger(cfg.LogLevel)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	serveCmd.Flags().StringVar(&store, "store", "redis", "session backend: redis, bolt or memory")
	rootCmd.AddCommand(serveCmd)
}
