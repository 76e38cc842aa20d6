package main

import (
	"context"
	"time"

	"github.com/muhammadolammi/skillscan/internal/logger"
	"github.com/muhammadolammi/skillscan/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resume skill form",
	Long:  `Start an HTTP server with a form for entering skills and uploading resumes.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddress string

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Address to listen on (defaults to server.address from the config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(0)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg.Server
	if serveAddress != "" {
		cfg.Address = serveAddress
	}
	srv := server.New(cfg, a.scanner, a.publisher, logger.Component("server"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	a.logger.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
