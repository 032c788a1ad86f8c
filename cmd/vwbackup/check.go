package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vwbackup/internal/services/rclone"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity of every configured rclone remote",
	Long: `Verify that the rclone configuration exists and that every enumerated
remote is reachable, without executing any backup operations. Every
remote is attempted before the command fails, so one run surfaces all
unreachable destinations.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, environ, err := buildConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to build configuration")
		return err
	}

	svc := rclone.New(log.Logger, environ)
	if err := svc.CheckConnectivity(cmd.Context(), *cfg, cfg.Remotes); err != nil {
		log.Error().Err(err).Msg("connectivity check failed")
		return err
	}

	log.Info().Int("remotes", len(cfg.Remotes)).Msg("all remotes reachable")
	return nil
}
