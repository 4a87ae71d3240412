// Package main provides the addonsmith binary entry point.
// Addonsmith expands virtual components in Bedrock add-on behavior files
// and scaffolds the projects, entities and properties around them.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	// Register compiled-in components via init()
	_ "github.com/c360studio/addonsmith/component/builtin"

	"github.com/c360studio/addonsmith/config"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "addonsmith"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Bedrock add-on build toolkit",
		Long: `Addonsmith expands virtual components in Bedrock add-on behavior files.

A behavior file may reference components such as "custom:amphibian" next to
ordinary engine components. The build replaces every reference with the
engine components it stands for, validating its properties on the way.

It also provides:
- Project scaffolding (resource and behavior packs with manifests)
- Entity, item and block templates
- Entity property generation
- A watch mode that rebuilds files as they change`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		buildCmd(flags),
		watchCmd(flags),
		componentsCmd(flags),
		templateCmd(flags),
		entityCmd(flags),
		projectCmd(flags),
		configCmd(flags),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// newLogger configures the process-wide text logger on stderr.
func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// setup loads configuration and builds the application for a subcommand.
func setup(flags *globalFlags) (*App, error) {
	logger := newLogger(flags.logLevel)

	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	app, err := NewApp(cfg, logger)
	if err != nil {
		return nil, err
	}
	return app, nil
}
