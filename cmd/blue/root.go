package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/blue/internal/config"
)

const version = "0.1.0"

var (
	// cfgFlag is the --config flag value; empty means the standard locations.
	cfgFlag      string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "blue",
	Short: "blue - watches a codebase and speaks up when the changes add up",
	Long: `blue scores file changes as you work, batches them, and surfaces a batch
when it looks like a good moment for big-picture input. Type feedback such as
"helpful" or "too much" while it runs and the trigger threshold adapts.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("blue v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&cfgFlag, "config", "",
		"config file (default: $XDG_CONFIG_HOME/blue/config.toml, ./config/config.toml, ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"log level: debug, info, warn, error (overrides config)")
}

// loadConfig loads and validates config, applying global flag overrides. It
// also returns the file it came from, or "" for defaults.
func loadConfig() (config.Config, string, error) {
	path := config.Resolve(cfgFlag)
	cfg, err := config.Load(cfgFlag)
	if err != nil {
		return cfg, path, err
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("config: %w", err)
	}
	return cfg, path, nil
}
