package main

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/hipotures/todoit/internal/config"
	"github.com/hipotures/todoit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the JSON API over HTTP",
	GroupID: "data",
	Long: `Serve the manager API over HTTP until interrupted. All responses use
a {"success": ..., "data"/"error": ...} envelope. Force-tags and
filter-tags apply to the server's view exactly as they do on the CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		logFile, _ := cmd.Flags().GetString("log-file")
		if addr == "" {
			addr = config.GetString("serve.addr")
		}
		if logFile == "" {
			logFile = config.GetString("serve.log-file")
		}

		logger, err := server.NewLogger(logFile)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		srv := server.New(mgr, server.Options{Addr: addr, Logger: logger})
		if err := srv.Start(cmd.Context()); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	serveCmd.Flags().String("log-file", "", "write request logs here with rotation (default stderr)")

	rootCmd.AddCommand(serveCmd)
}
