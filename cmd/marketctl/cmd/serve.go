package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"token_backend/internal/app/config"
	"token_backend/internal/app/server"
)

var envFile string

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server that serves /ohlc, /trades, /pairs, /token and /healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		server.SetupLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, cfg)
	},
}

func init() {
	serveCMD.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file")
}
