package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonwraymond/sessionauth/observe"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	ConfigKey    = "config"
	LogLevelKey  = "log.level"
	LogFormatKey = "log.format"
)

var rootCmd = &cobra.Command{
	Use:   "sessionauth",
	Short: fmt.Sprintf("Session token service (version: %s)", version),
	Long: `sessionauth issues RS256 session tokens to directory users, keeps one
active token per user, and gates role-specific endpoints.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogging(os.Stderr)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execution failed")
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	rootCmd.PersistentFlags().String("config", "sessionauth.yaml", "Service configuration file")
	_ = viper.BindPFlag(ConfigKey, rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(LogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(LogFormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetEnvPrefix("SESSIONAUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// initLogging configures the global zerolog logger from viper.
func initLogging(w io.Writer) {
	zerolog.SetGlobalLevel(observe.ParseLogLevel(viper.GetString(LogLevelKey)))

	if viper.GetString(LogFormatKey) == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
}
