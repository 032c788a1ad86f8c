package config

import (
	"fmt"
	"strings"

	"vwbackup/internal/models"
)

// remotes discovers the open-ended list of rclone destinations from the
// indexed RCLONE_REMOTE_NAME_i / RCLONE_REMOTE_DIR_i pairs, ascending
// from 0. Index 0 also answers to the unsuffixed pair, which carries
// defaults. Enumeration stops at the first pair with either side empty;
// higher indices are never considered, even if fully populated.
func (b *builder) remotes() []models.RemoteTarget {
	var targets []models.RemoteTarget
	for i := 0; ; i++ {
		var name, dir string
		if i == 0 {
			name = b.get("RCLONE_REMOTE_NAME", DefaultRemoteName)
			dir = b.get("RCLONE_REMOTE_DIR", DefaultRemoteDir)
		} else {
			name = b.get(fmt.Sprintf("RCLONE_REMOTE_NAME_%d", i), "")
			dir = b.get(fmt.Sprintf("RCLONE_REMOTE_DIR_%d", i), "")
		}
		if name == "" || dir == "" {
			break
		}
		targets = append(targets, models.RemoteTarget{
			Name:      name,
			Directory: strings.TrimRight(dir, "/\\"),
		})
	}
	return targets
}
