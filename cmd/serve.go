package main

import (
	"github.com/especia/especia/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run optimization jobs behind a local HTTP API",
	Long: `Starts a local job server. A job is created by posting a model
definition with its run configuration; the finished HTML report is
served back once the fit completes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.NewServer(serveAddr).Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
