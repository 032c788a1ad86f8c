package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vwbackup/internal/models"
	"vwbackup/internal/services/notify"
)

var testFailure bool

var testNotifyCmd = &cobra.Command{
	Use:   "test-notify",
	Short: "Send a test notification over every enabled channel",
	RunE:  runTestNotify,
}

func init() {
	testNotifyCmd.Flags().BoolVar(&testFailure, "failure", false, "send the test as a failure outcome")
}

func runTestNotify(cmd *cobra.Command, args []string) error {
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

	outcome := models.OutcomeSuccess
	if testFailure {
		outcome = models.OutcomeFailure
	}
	host, _ := os.Hostname()

	dispatcher.Notify(cmd.Context(), models.DispatchEvent{
		Outcome: outcome,
		Subject: "vwbackup test notification",
		Body:    "Test notification from vwbackup on " + host + ". If you can read this, the channel works.",
	})

	log.Info().Str("outcome", string(outcome)).Msg("test notification dispatched")
	return nil
}
