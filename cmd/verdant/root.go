package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/verdant/internal/cli"
	"github.com/aretw0/verdant/internal/config"
	"github.com/aretw0/verdant/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "verdant",
	Short:         "Verdant manages a catalog of house plants",
	Long:          `Verdant keeps a list of plants and how often to water them, and can ask Gemini for a better watering period.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./verdant.yaml if present)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: memory, file, redis or sqlite")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every catalog transition")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Backend = backend
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// setup builds the runtime shared by every catalog command.
func setup(ctx context.Context, cmd *cobra.Command) (*cli.Runtime, cli.Output, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cli.Output{}, err
	}
	logger, err := cli.CreateLogger(cfg.Log)
	if err != nil {
		return nil, cli.Output{}, err
	}

	var opts []cli.BuildOption
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		opts = append(opts, cli.WithDebugHooks())
	}
	rt, err := cli.Build(ctx, cfg, logger, opts...)
	if err != nil {
		return nil, cli.Output{}, err
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	out := cli.Output{
		W:      cmd.OutOrStdout(),
		Render: tui.RendererFor(os.Stdout),
		JSON:   jsonMode,
	}
	return rt, out, nil
}
