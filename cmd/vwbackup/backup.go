package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vwbackup/internal/services/notify"
	"vwbackup/internal/services/runner"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Execute the backup workflow",
	Long: `Execute the complete backup workflow:
1. Signal the monitoring start endpoint (if configured)
2. Check connectivity of every configured rclone remote
3. Dump the external database (if configured)
4. Create the backup archive
5. Upload to every rclone remote
6. Send mail/push/ping notifications for the outcome`,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, environ, err := buildConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to build configuration")
		return err
	}

	dispatcher, err := notify.NewDispatcher(cfg, log.Logger, environ)
	if err != nil {
		log.Error().Err(err).Msg("invalid notification configuration")
		return err
	}

	log.Info().
		Str("data_dir", dataDir).
		Int("remotes", len(cfg.Remotes)).
		Str("timezone", cfg.Timezone).
		Msg("configuration loaded")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	runnerSvc := runner.New(log.Logger, dispatcher, dataDir, environ)
	if err := runnerSvc.Run(ctx, *cfg); err != nil {
		log.Error().Err(err).Msg("backup failed")
		return err
	}

	log.Info().Msg("backup completed successfully")
	return nil
}
