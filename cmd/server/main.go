package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gemcanvas/internal/bootstrap"
	"gemcanvas/internal/config"
	"gemcanvas/internal/logger"
	httptransport "gemcanvas/internal/transport/http"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gemcanvas",
		Short:         "Gem Canvas service and operator tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newGemsCmd(),
		newKnowledgeCmd(),
	)
	return root
}

func loadEnv() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config failed: %w", err)
	}
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := context.Background()
			app, err := bootstrap.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("bootstrap failed: %w", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					log.Error("close resources failed", "error", err)
				}
			}()

			router := httptransport.NewRouter(app)
			server := &http.Server{
				Addr:              cfg.HTTPAddr(),
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("server starting", "addr", server.Addr, "store", cfg.Store.Driver, "provider", cfg.LLM.Provider)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			return waitForShutdown(server, errCh, log)
		},
	}
}

func waitForShutdown(server *http.Server, errCh <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	return nil
}
