package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"screendb/internal/server"
	"screendb/internal/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  "Serve the loaded dataset: HTML search/browse pages and a JSON REST API under /api/v1.",
		Example: `  screendb serve
  screendb serve --listen :9090 --database /data/screens.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.Flags().String("listen", ":8080", "listen address")
	viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	dbPath := viper.GetString("database")
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer st.Close()
	st.SetLogger(logger)

	logger.Info("database opened", zap.String("path", dbPath))

	srv := server.New(st, logger)
	return srv.Run(viper.GetString("listen"))
}
