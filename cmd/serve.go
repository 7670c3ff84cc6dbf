package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-gallery/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Gallery HTTP API.
The API exposes enrollment (register, list, update, delete) and recognition
under /api/v1.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.gallery.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading gallery: %w", err)
	}
	svc.log.Info().
		Str("driver", svc.cfg.Database.Driver).
		Str("storage", svc.cfg.Storage.Backend).
		Str("embedding", svc.cfg.Embedding.Backend).
		Int("identities", stats.Identities).
		Msg("gallery ready")

	server := web.NewServer(svc.cfg, svc.gallery, svc.log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Gallery on http://%s\n", svc.cfg.Server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
