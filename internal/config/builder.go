// Package config builds the normalized runtime configuration from the
// variable resolver.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vwbackup/internal/env"
	"vwbackup/internal/models"
)

// Defaults applied when a setting resolves empty.
const (
	DefaultCron                = "5 * * * *"
	DefaultRemoteName          = "BitwardenBackup"
	DefaultRemoteDir           = "/BitwardenBackup/"
	DefaultBackupFileDate      = "%Y%m%d"
	DefaultTimezone            = "UTC"
	DefaultNtfyTopic           = "vwbackup"
	DefaultNtfyPrioritySuccess = "default"
	DefaultNtfyPriorityFailure = "high"
)

// Build resolves and normalizes every setting into an immutable Config.
// Every field has a total default; normalization itself never fails, so
// the only errors escaping here are resolver I/O errors (an unreadable
// _FILE reference is a misconfiguration, not something to default away).
func Build(resolver *env.Resolver, logger zerolog.Logger) (*models.Config, error) {
	b := &builder{resolver: resolver, logger: logger}

	cfg := &models.Config{
		Cron:        b.get("CRON", DefaultCron),
		Remotes:     b.remotes(),
		RcloneFlags: strings.Fields(b.get("RCLONE_GLOBAL_FLAG", "")),
		Archive: models.ArchiveSettings{
			Enabled:  b.flag("ZIP_ENABLE", true),
			Type:     archiveType(b.get("ZIP_TYPE", "")),
			Password: b.get("ZIP_PASSWORD", ""),
		},
		BackupFileDate: b.dateFormat(),
		KeepDays:       b.keepDays(),
		Database:       b.database(),
		Mail:           b.mail(),
		Ntfy:           b.ntfy(),
		Ping:           b.ping(),
	}
	cfg.Timezone, cfg.Location = b.timezone()

	if b.err != nil {
		return nil, b.err
	}
	return cfg, nil
}

type builder struct {
	resolver *env.Resolver
	logger   zerolog.Logger
	err      error
}

// get resolves a name, applying def when no source is populated. The
// first resolver error is kept; later lookups still run so every setting
// is resolved exactly once regardless of where the failure sits.
func (b *builder) get(name, def string) string {
	value, err := b.resolver.ResolveDefault(name, def)
	if err != nil && b.err == nil {
		b.err = err
	}
	return value
}

func (b *builder) flag(name string, defaultOn bool) bool {
	return parseFlag(b.get(name, ""), defaultOn)
}

// parseFlag is the single boolean parser for the whole env surface.
// Default-on flags are disabled only by an explicit "false"; default-off
// master switches are enabled only by an explicit "true". Comparison is
// case-insensitive either way. The two directions are not unified on
// purpose: per-condition flags default on, channel master switches
// default off.
func parseFlag(value string, defaultOn bool) bool {
	if defaultOn {
		return !strings.EqualFold(value, "false")
	}
	return strings.EqualFold(value, "true")
}

func archiveType(value string) models.ArchiveType {
	if strings.EqualFold(value, string(models.ArchiveSevenZip)) {
		return models.ArchiveSevenZip
	}
	return models.ArchiveZip
}

// dateFormat derives the archive date format. BACKUP_FILE_SUFFIX, when
// set, replaces the whole format with path separators stripped;
// otherwise the date tokens plus optional suffix are sanitized down to
// alphanumerics, '%', '_' and '-'.
func (b *builder) dateFormat() string {
	format := b.get("BACKUP_FILE_DATE", DefaultBackupFileDate) + b.get("BACKUP_FILE_DATE_SUFFIX", "")
	if override := b.get("BACKUP_FILE_SUFFIX", ""); override != "" {
		return stripPathSeparators(override)
	}
	return sanitizeFormat(format)
}

func sanitizeFormat(format string) string {
	var sb strings.Builder
	for _, r := range format {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r == '%', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func stripPathSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, s)
}

func (b *builder) keepDays() int {
	raw := b.get("BACKUP_KEEP_DAYS", "0")
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || days < 0 {
		b.logger.Info().Str("value", raw).Msg("invalid BACKUP_KEEP_DAYS, backups will never expire by age")
		return 0
	}
	return days
}

// timezone accepts the supplied identifier only if the system timezone
// database knows it; anything else falls back to UTC. This is the one
// external-state check in the normalizer.
func (b *builder) timezone() (string, *time.Location) {
	name := b.get("TIMEZONE", DefaultTimezone)
	loc, err := time.LoadLocation(name)
	if err != nil {
		b.logger.Info().Str("timezone", name).Msg("unknown timezone, falling back to UTC")
		return DefaultTimezone, time.UTC
	}
	return name, loc
}

func (b *builder) database() models.DatabaseConfig {
	db := models.DatabaseConfig{Type: strings.ToLower(b.get("DB_TYPE", "sqlite"))}
	switch db.Type {
	case "postgresql":
		db.Host = b.get("PG_HOST", "localhost")
		db.Port = b.port("PG_PORT", 5432)
		db.Name = b.get("PG_DBNAME", "vaultwarden")
		db.Username = b.get("PG_USERNAME", "vaultwarden")
		db.Password = b.get("PG_PASSWORD", "")
	case "mysql":
		db.Host = b.get("MYSQL_HOST", "localhost")
		db.Port = b.port("MYSQL_PORT", 3306)
		db.Name = b.get("MYSQL_DATABASE", "vaultwarden")
		db.Username = b.get("MYSQL_USERNAME", "vaultwarden")
		db.Password = b.get("MYSQL_PASSWORD", "")
	default:
		db.Type = "sqlite"
	}
	return db
}

func (b *builder) port(name string, def int) int {
	raw := b.get(name, "")
	if raw == "" {
		return def
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port <= 0 {
		b.logger.Info().Str("name", name).Str("value", raw).Msg("invalid port, using default")
		return def
	}
	return port
}

func (b *builder) mail() models.MailPolicy {
	return models.MailPolicy{
		Enabled:       b.flag("MAIL_SMTP_ENABLE", false),
		To:            b.get("MAIL_TO", ""),
		SMTPVariables: b.get("MAIL_SMTP_VARIABLES", ""),
		OnSuccess:     b.flag("MAIL_WHEN_SUCCESS", true),
		OnFailure:     b.flag("MAIL_WHEN_FAILURE", true),
		Debug:         b.flag("MAIL_DEBUG", false),
	}
}

func (b *builder) ntfy() models.NtfyPolicy {
	return models.NtfyPolicy{
		Enabled:         b.flag("NTFY_ENABLE", false),
		Server:          strings.TrimRight(b.get("NTFY_SERVER", ""), "/"),
		Topic:           b.get("NTFY_TOPIC", DefaultNtfyTopic),
		Username:        b.get("NTFY_USERNAME", ""),
		Password:        b.get("NTFY_PASSWORD", ""),
		Token:           b.get("NTFY_TOKEN", ""),
		PrioritySuccess: b.get("NTFY_PRIORITY_SUCCESS", DefaultNtfyPrioritySuccess),
		PriorityFailure: b.get("NTFY_PRIORITY_FAILURE", DefaultNtfyPriorityFailure),
		OnSuccess:       b.flag("NTFY_WHEN_SUCCESS", true),
		OnFailure:       b.flag("NTFY_WHEN_FAILURE", true),
	}
}

func (b *builder) ping() models.PingPolicy {
	return models.PingPolicy{
		URL:        b.get("PING_URL", ""),
		StartURL:   b.get("PING_URL_WHEN_START", ""),
		SuccessURL: b.get("PING_URL_WHEN_SUCCESS", ""),
		FailureURL: b.get("PING_URL_WHEN_FAILURE", ""),
	}
}
