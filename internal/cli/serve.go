package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surveycast/internal/app"
	"surveycast/internal/config"

	"github.com/spf13/cobra"
)

var envFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	Long: `Run the admin REST API and the recipient WebSocket endpoint.

Configuration is read from the environment, optionally seeded from a .env file
(--env-file). MONGO_URI and REDIS_URI are optional; without them exports and
answer correlations are kept in process memory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}
	defer a.Close(context.Background())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Printf("Admins: %v", cfg.AdminIDs)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/auth/recipient (admin)")
		log.Println("  POST /v1/roster")
		log.Println("  POST /v1/survey/{title,questions,reset,launch}")
		log.Println("  GET  /v1/survey/progress")
		log.Println("  POST /v1/results/export")
		log.Println("  GET  /v1/results/{download,snapshot}")
		log.Println("  POST /v1/answers")
		log.Println("  WS   /v1/ws/recipient")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}
