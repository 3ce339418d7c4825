package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Myangsun/HiyaDrive/internal/config"
	"github.com/Myangsun/HiyaDrive/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hiyadrive",
	Short: "HiyaDrive books restaurant tables by voice while you drive",
	Long: `HiyaDrive turns a spoken request into a confirmed reservation: it collects the
missing details, checks your calendar, finds a restaurant and calls it for you.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./hiyadrive.yaml or $HOME/.hiyadrive/hiyadrive.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Override the log format (text, json)")
}

// loadConfig reads the configuration and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.LogFormat = format
	}
	return cfg, nil
}

// render styles markdown when w is a terminal.
func render(w io.Writer, markdown string) string {
	if f, ok := w.(*os.File); ok {
		return tui.Render(f, markdown)
	}
	return markdown
}
