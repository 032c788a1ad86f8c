// Package archive produces the backup archive through the zip and 7z
// binaries.
package archive

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"vwbackup/internal/models"
)

// Service defines the interface for archive creation.
type Service interface {
	Create(ctx context.Context, settings models.ArchiveSettings, destDir, baseName string, sources []string) (string, error)
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// Execute runs a command and returns its combined output.
func (e *DefaultExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Impl implements the Service interface.
type Impl struct {
	executor CommandExecutor
	logger   zerolog.Logger
}

// New creates a new archive service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor: &DefaultExecutor{},
		logger:   logger,
	}
}

// NewWithExecutor creates a new archive service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// Create packs sources into destDir/baseName.{zip,7z} and returns the
// archive path. A non-empty password enables encryption (with header
// encryption for 7z).
func (s *Impl) Create(ctx context.Context, settings models.ArchiveSettings, destDir, baseName string, sources []string) (string, error) {
	var name string
	var args []string
	outputPath := filepath.Join(destDir, baseName+"."+string(settings.Type))

	switch settings.Type {
	case models.ArchiveSevenZip:
		name = "7z"
		args = []string{"a", "-t7z"}
		if settings.Password != "" {
			args = append(args, "-p"+settings.Password, "-mhe=on")
		}
	default:
		name = "zip"
		args = []string{"-r", "-q"}
		if settings.Password != "" {
			args = append(args, "-P", settings.Password)
		}
	}
	args = append(args, outputPath)
	args = append(args, sources...)

	s.logger.Info().
		Str("archive", outputPath).
		Str("type", string(settings.Type)).
		Bool("encrypted", settings.Password != "").
		Msg("creating backup archive")

	output, err := s.executor.Execute(ctx, name, args...)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w, output: %s", err, string(output))
	}
	return outputPath, nil
}
