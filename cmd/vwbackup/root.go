package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vwbackup/internal/config"
	"vwbackup/internal/env"
	"vwbackup/internal/models"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	envFile    string
	dataDir    string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "vwbackup",
	Short: "A Vaultwarden backup agent for rclone remotes",
	Long: `vwbackup backs up a Vaultwarden data directory to one or more rclone
remotes and reports the outcome over mail, ntfy push and healthcheck
pings.

Configuration comes from environment variables, optionally indirected
through *_FILE secret references or an optional dotenv file.

Use as a one-shot command with an external scheduler (cron, systemd timer, etc.)`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", env.DefaultDotenvPath, "optional dotenv file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "/bitwarden/data", "Vaultwarden data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(testNotifyCmd)
}

func setupLogging() {
	// Set output format
	if jsonOutput {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		output.FormatLevel = func(i interface{}) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return ""
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set log level
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// buildConfig loads the optional dotenv file and resolves the full
// runtime configuration. The returned environ carries the resolver's
// canonical values, including _FILE and dotenv indirections, for
// subprocesses.
func buildConfig() (*models.Config, []string, error) {
	resolver := env.NewResolver(log.Logger)

	entries, err := env.LoadDotenv(envFile, log.Logger)
	if err != nil {
		return nil, nil, err
	}
	resolver.Merge(entries)

	cfg, err := config.Build(resolver, log.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, resolver.Environ(), nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
