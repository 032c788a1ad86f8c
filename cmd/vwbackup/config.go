package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Resolve and normalize the full configuration, then print a summary.
Secrets are masked.`,
	RunE: showConfig,
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := buildConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to build configuration")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"Cron", cfg.Cron},
		{"Data directory", dataDir},
		{"Timezone", cfg.Timezone},
		{"Keep days", cfg.KeepDays},
		{"File date format", cfg.BackupFileDate},
		{"Archive enabled", cfg.Archive.Enabled},
		{"Archive type", cfg.Archive.Type},
		{"Archive password", mask(cfg.Archive.Password)},
		{"Database", cfg.Database.Type},
	})
	for i, remote := range cfg.Remotes {
		t.AppendRow(table.Row{fmt.Sprintf("Remote %d", i), remote.String()})
	}
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Mail notifications", channelSummary(cfg.Mail.Enabled, cfg.Mail.OnSuccess, cfg.Mail.OnFailure)},
		{"Mail recipient", cfg.Mail.To},
		{"Push notifications", channelSummary(cfg.Ntfy.Enabled, cfg.Ntfy.OnSuccess, cfg.Ntfy.OnFailure)},
		{"Push server", cfg.Ntfy.Server},
		{"Push topic", cfg.Ntfy.Topic},
		{"Push auth", pushAuth(cfg.Ntfy.Password, cfg.Ntfy.Token)},
		{"Ping URL", cfg.Ping.URL},
	})
	t.Render()
	return nil
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "(configured)"
}

func pushAuth(password, token string) string {
	switch {
	case password != "":
		return "basic"
	case token != "":
		return "bearer"
	default:
		return "none"
	}
}

func channelSummary(enabled, onSuccess, onFailure bool) string {
	if !enabled {
		return "disabled"
	}
	var when []string
	if onSuccess {
		when = append(when, "success")
	}
	if onFailure {
		when = append(when, "failure")
	}
	if len(when) == 0 {
		return "enabled (never fires)"
	}
	return "enabled on " + strings.Join(when, ", ")
}
