// Package runner orchestrates the backup workflow.
package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/rs/zerolog"

	"vwbackup/internal/models"
	"vwbackup/internal/services/archive"
	"vwbackup/internal/services/db"
	"vwbackup/internal/services/notify"
	"vwbackup/internal/services/rclone"
)

// Service defines the interface for the backup runner.
type Service interface {
	Run(ctx context.Context, cfg models.Config) error
}

// Impl implements the runner Service interface.
type Impl struct {
	rcloneSvc  rclone.Service
	archiveSvc archive.Service
	dbSvc      db.Service
	dispatcher *notify.Dispatcher
	logger     zerolog.Logger
	dataDir    string
	tempDir    string
}

// New creates a new runner service. The environ slice is passed to the
// services that shell out, so every subprocess observes the resolved
// configuration values.
func New(logger zerolog.Logger, dispatcher *notify.Dispatcher, dataDir string, environ []string) *Impl {
	return &Impl{
		rcloneSvc:  rclone.New(logger, environ),
		archiveSvc: archive.New(logger),
		dbSvc:      db.New(logger, environ),
		dispatcher: dispatcher,
		logger:     logger,
		dataDir:    dataDir,
		tempDir:    os.TempDir(),
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	dispatcher *notify.Dispatcher,
	rcloneSvc rclone.Service,
	archiveSvc archive.Service,
	dbSvc db.Service,
	dataDir string,
	tempDir string,
) *Impl {
	return &Impl{
		rcloneSvc:  rcloneSvc,
		archiveSvc: archiveSvc,
		dbSvc:      dbSvc,
		dispatcher: dispatcher,
		logger:     logger,
		dataDir:    dataDir,
		tempDir:    tempDir,
	}
}

// Run executes the backup workflow: start ping, connectivity preflight,
// database dump, archive, upload to every remote, outcome notification.
func (s *Impl) Run(ctx context.Context, cfg models.Config) error {
	startTime := time.Now().In(cfg.Location)
	host, _ := os.Hostname()

	s.logger.Info().
		Str("host", host).
		Int("remotes", len(cfg.Remotes)).
		Msg("starting backup run")

	s.dispatcher.PingStart(ctx)

	err := s.run(ctx, cfg, startTime)
	duration := time.Since(startTime).Round(time.Second)
	if err != nil {
		s.dispatcher.Notify(ctx, models.DispatchEvent{
			Outcome: models.OutcomeFailure,
			Subject: fmt.Sprintf("vwbackup failed on %s", host),
			Body:    fmt.Sprintf("Backup failed after %s: %v", duration, err),
		})
		return err
	}

	s.dispatcher.Notify(ctx, models.DispatchEvent{
		Outcome: models.OutcomeSuccess,
		Subject: fmt.Sprintf("vwbackup succeeded on %s", host),
		Body:    fmt.Sprintf("Backup of %s finished in %s.", s.dataDir, duration),
	})
	s.logger.Info().Dur("duration", duration).Msg("backup run completed successfully")
	return nil
}

func (s *Impl) run(ctx context.Context, cfg models.Config, startTime time.Time) error {
	if _, err := os.Stat(s.dataDir); err != nil {
		return fmt.Errorf("data directory %s not available: %w", s.dataDir, err)
	}

	if err := s.rcloneSvc.CheckConnectivity(ctx, cfg, cfg.Remotes); err != nil {
		return err
	}

	sources := []string{s.dataDir}
	dumpPath, err := s.dbSvc.Dump(ctx, cfg.Database, s.tempDir)
	if err != nil {
		return err
	}
	if dumpPath != "" {
		defer func() { _ = os.Remove(dumpPath) }()
		sources = append(sources, dumpPath)
	}

	uploadPath := s.dataDir
	if cfg.Archive.Enabled {
		baseName := "backup"
		if stamp := strftime.Format(cfg.BackupFileDate, startTime); stamp != "" {
			baseName = "backup-" + stamp
		}
		archivePath, err := s.archiveSvc.Create(ctx, cfg.Archive, s.tempDir, baseName, sources)
		if err != nil {
			return err
		}
		defer func() { _ = os.Remove(archivePath) }()
		uploadPath = archivePath
	}

	for _, remote := range cfg.Remotes {
		s.logger.Info().Str("remote", remote.String()).Msg("uploading backup")
		if err := s.rcloneSvc.Copy(ctx, cfg, uploadPath, remote); err != nil {
			return err
		}
	}
	return nil
}
