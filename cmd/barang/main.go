package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/erazemk/barang/internal/config"
	"github.com/erazemk/barang/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// globalFlags are shared by every server command.
type globalFlags struct {
	configPath string
	logFormat  string
	logLevel   string
	logPath    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:          "barang",
		Short:        "Inventory item service and form UI",
		Long:         "barang serves a JSON API for inventory items and a browser form that manages them.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML config file (environment variables override it)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text, json or pretty")
	pf.StringVar(&flags.logLevel, "log-level", "", "Minimum log level: debug, info, warn or error")
	pf.StringVarP(&flags.logPath, "log", "l", "", "Also append logs to this file")

	root.AddCommand(newServeCmd(&flags), newUICmd(&flags), newVersionCmd(), newEnvCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "barang %s\n", version)
		},
	}
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables that configure barang",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.Usage())
		},
	}
}

// loadConfig reads configuration, applies the persistent flags the user set
// explicitly, then lets apply copy command-specific flags before validation.
func loadConfig(cmd *cobra.Command, flags *globalFlags, apply func(cfg *config.Config, fs *pflag.FlagSet)) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if fs.Changed("log") {
		cfg.Log.File = flags.logPath
	}
	if apply != nil {
		apply(cfg, fs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging configures slog from cfg and returns a function closing the
// log file, which is safe to call when no file was opened.
func setupLogging(cfg *config.Config) (func(), error) {
	closeLog, err := logging.Setup(logging.Options{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, err
	}
	if closeLog == nil {
		closeLog = func() {}
	}
	return closeLog, nil
}
