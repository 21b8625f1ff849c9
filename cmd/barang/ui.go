package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/erazemk/barang/internal/api"
	"github.com/erazemk/barang/internal/client"
	"github.com/erazemk/barang/internal/config"
	"github.com/erazemk/barang/internal/web"
)

func newUICmd(flags *globalFlags) *cobra.Command {
	var addr, apiURL string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Run the form UI server against an item API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags, func(cfg *config.Config, fs *pflag.FlagSet) {
				if fs.Changed("addr") {
					cfg.UI.Addr = addr
				}
				if fs.Changed("api") {
					cfg.UI.APIURL = apiURL
				}
			})
			if err != nil {
				return err
			}
			return runUI(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&addr, "addr", "a", "", "UI listen address (default :5173)")
	f.StringVar(&apiURL, "api", "", "Base URL of the item API")
	return cmd
}

func runUI(ctx context.Context, cfg *config.Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	router, err := web.NewRouter(client.New(cfg.UI.APIURL))
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		return err
	}
	slog.Info("using item API", "url", cfg.UI.APIURL)

	handler := api.RequestIDMiddleware(api.LoggingMiddleware(router))
	return listenAndServe(ctx, newServer(cfg.UI.Addr, handler), cfg.HTTP.ShutdownTimeout)
}
