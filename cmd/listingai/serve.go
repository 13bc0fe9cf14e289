package main

import (
	"github.com/harunnryd/listingai/internal/config"
	"github.com/harunnryd/listingai/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the model registry over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		router, err := newRouter()
		if err != nil {
			return err
		}

		srv, err := server.New(cfg.Server, router)
		if err != nil {
			return err
		}
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().Int("server.port", config.DefaultServerPort, "server port")
	rootCmd.AddCommand(serveCmd)
}
