// Package models contains the data structures used throughout vwbackup.
package models

import "time"

// ArchiveType selects the archive container format.
type ArchiveType string

// Supported archive types.
const (
	ArchiveZip      ArchiveType = "zip"
	ArchiveSevenZip ArchiveType = "7z"
)

// Config holds every normalized setting for a backup run. It is built
// once at startup and never mutated afterwards; services receive it by
// value or read single fields.
type Config struct {
	Cron           string
	Remotes        []RemoteTarget
	RcloneFlags    []string
	Archive        ArchiveSettings
	BackupFileDate string // strftime tokens, already sanitized
	KeepDays       int    // 0 means never expire by age
	Timezone       string
	Location       *time.Location
	Database       DatabaseConfig
	Mail           MailPolicy
	Ntfy           NtfyPolicy
	Ping           PingPolicy
}

// RemoteTarget is one rclone destination. Slice order equals discovery
// order of the indexed RCLONE_REMOTE_NAME_i / RCLONE_REMOTE_DIR_i pairs.
type RemoteTarget struct {
	Name      string
	Directory string // trailing path separators stripped
}

// String renders the remote in rclone's name:directory form.
func (r RemoteTarget) String() string {
	return r.Name + ":" + r.Directory
}

// ArchiveSettings holds the archive creation settings.
type ArchiveSettings struct {
	Enabled  bool
	Type     ArchiveType
	Password string // optional, empty disables encryption
}

// DatabaseConfig holds the connection settings for an external
// Vaultwarden database. Type "sqlite" means the database lives inside
// the data directory and needs no separate dump.
type DatabaseConfig struct {
	Type     string // sqlite, postgresql or mysql
	Host     string
	Port     int
	Name     string
	Username string
	Password string
}
