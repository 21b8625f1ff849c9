package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/erazemk/barang/internal/api"
	"github.com/erazemk/barang/internal/config"
	"github.com/erazemk/barang/internal/db"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr, driver, dsn, origin string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the item API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags, func(cfg *config.Config, fs *pflag.FlagSet) {
				if fs.Changed("addr") {
					cfg.HTTP.Addr = addr
				}
				if fs.Changed("db-driver") {
					cfg.DB.Driver = driver
				}
				if fs.Changed("db") {
					cfg.DB.DSN = dsn
				}
				if fs.Changed("origin") {
					cfg.HTTP.AllowedOrigin = origin
				}
			})
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&addr, "addr", "a", "", "API listen address (default :3000)")
	f.StringVar(&driver, "db-driver", "", "Database driver: sqlite or postgres")
	f.StringVarP(&dsn, "db", "d", "", "SQLite path or PostgreSQL connection string")
	f.StringVar(&origin, "origin", "", "Browser origin allowed to call the API")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DB.Driver, "error", err)
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		return err
	}
	slog.Info("database ready", "driver", cfg.DB.Driver)

	handler := api.RequestIDMiddleware(api.LoggingMiddleware(api.NewRouter(database, cfg.HTTP.AllowedOrigin)))

	if err := listenAndServe(ctx, newServer(cfg.HTTP.Addr, handler), cfg.HTTP.ShutdownTimeout); err != nil {
		return err
	}
	slog.Info("server stopped, closing database")
	return nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// listenAndServe runs server until ctx is cancelled or SIGINT/SIGTERM
// arrives, then shuts it down gracefully within timeout.
func listenAndServe(ctx context.Context, server *http.Server, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("server error", "error", err)
		return fmt.Errorf("serving %s: %w", server.Addr, err)
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}
	return nil
}
