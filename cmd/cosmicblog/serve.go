package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/cosmicblog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the blog over HTTP",
	Long: `The serve command renders pages from the configured Cosmic bucket, or
from a local database when --db (COSMIC_DATABASE_PATH) is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app := cosmicblog.New(appConfig.site(), cosmicblog.ViewFuncs{},
			cosmicblog.WithStaticDir(appConfig.StaticDir))

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			app.Close()
			return err
		case <-ctx.Done():
		}

		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":3000", "address to listen on")
	serveCmd.Flags().String("db", "", "serve from a local content database instead of the Cosmic API")
	serveCmd.Flags().String("static", "public", "directory served under /public")
	rootCmd.AddCommand(serveCmd)
}
