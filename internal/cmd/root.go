// Package cmd implements the CLI commands for curldeck.
package cmd

import (
	"log/slog"
	"os"

	"curldeck/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "curldeck",
	Short: "Declarative HTTP requests, executed through curl",
	Long: `Curldeck reads request definitions from plain-text .http files and runs
them through the curl binary, decoding curl's output back into a structured
response.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and returns any error.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(home + "/.config/curldeck/config.yaml")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
