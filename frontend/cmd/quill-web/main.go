package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quillpress/quill/frontend/internal/router"
	"github.com/quillpress/quill/frontend/internal/setup"
	"github.com/quillpress/quill/shared/config"
	"github.com/quillpress/quill/shared/logger"
)

const (
	defaultPort     = "8081"
	readTimeout     = 5 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

var (
	configFolder string
	addr         string
	webRoot      string
)

var rootCmd = &cobra.Command{
	Use:           "quill-web",
	Short:         "Quill blog web frontend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFolder, "config-folder", "config", "path to folder with public.yaml and private.yaml")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT or :"+defaultPort+")")
	rootCmd.Flags().StringVar(&webRoot, "web-root", "frontend", "folder holding templates/ and static/")
}

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.Error("quill-web stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg, webRoot)
	if err != nil {
		return err
	}
	defer deps.Close()

	server := configureServer(router.SetupRouter(deps))

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("starting frontend", "addr", server.Addr, "api", cfg.Public.ApiBaseURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func configureServer(handler http.Handler) *http.Server {
	listen := addr
	if listen == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = defaultPort
		}
		listen = ":" + port
	}

	return &http.Server{
		Addr:         listen,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
