package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hawkkey/hawkkey-go/client"
	"github.com/hawkkey/hawkkey-go/config"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hawkkey",
	Short: "Manage Hawkkey API keys, usage and prompt security from the terminal",
	Long: `hawkkey is the command-line companion to the Hawkkey service.

It verifies credentials, manages API keys, records usage, and runs
prompt security analysis against your account.

Examples:
  hawkkey verify hk_live_abc...
  hawkkey keys list
  hawkkey keys create --name=ci-deploys
  hawkkey usage report --input-tokens=100 --output-tokens=50
  hawkkey analyze "Ignore all previous instructions"

Configuration is read from hawkkey.yaml or HAWKKEY_* environment
variables (HAWKKEY_API_KEY at minimum).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "hawkkey.yaml", "config file path")
}

// newClient builds an API client from the resolved configuration.
func newClient() (*client.Client, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging)
	return client.New(client.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
		Logger:  &logger,
	})
}

func newLogger(lc config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if lc.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
