// Package db dumps an external Vaultwarden database ahead of archiving.
package db

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"vwbackup/internal/models"
)

// Service defines the interface for database dump operations.
type Service interface {
	Dump(ctx context.Context, cfg models.DatabaseConfig, outputDir string) (string, error)
}

// CommandExecutor allows mocking exec.Command in tests. The dump tools
// write to stdout, so the executor streams stdout into outputPath.
type CommandExecutor interface {
	ExecuteToFile(ctx context.Context, env []string, outputPath string, name string, args ...string) error
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct {
	// Env replaces the base subprocess environment when non-nil, so the
	// dump tool observes the canonical resolved values.
	Env []string
}

// ExecuteToFile runs a command with extra environment variables and
// writes its stdout to the specified file.
func (e *DefaultExecutor) ExecuteToFile(ctx context.Context, env []string, outputPath string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	base := e.Env
	if base == nil {
		base = os.Environ()
	}
	cmd.Env = append(append([]string(nil), base...), env...)

	output, err := os.Create(outputPath) //nolint:gosec // outputPath is controlled by caller
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = output.Close() }()

	cmd.Stdout = output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// Impl implements the Service interface.
type Impl struct {
	executor CommandExecutor
	logger   zerolog.Logger
}

// New creates a new database dump service. The environ slice becomes
// the base subprocess environment for the dump tool.
func New(logger zerolog.Logger, environ []string) *Impl {
	return &Impl{
		executor: &DefaultExecutor{Env: environ},
		logger:   logger,
	}
}

// NewWithExecutor creates a new database dump service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// Dump writes a SQL dump of the configured database into outputDir and
// returns its path. A sqlite database lives inside the data directory
// and needs no separate dump; the returned path is empty in that case.
func (s *Impl) Dump(ctx context.Context, cfg models.DatabaseConfig, outputDir string) (string, error) {
	if cfg.Type == "sqlite" {
		return "", nil
	}

	outputPath := filepath.Join(outputDir, cfg.Name+".sql")
	s.logger.Info().
		Str("type", cfg.Type).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Str("output", outputPath).
		Msg("dumping database")

	var name string
	var args, dumpEnv []string
	switch cfg.Type {
	case "postgresql":
		name = "pg_dump"
		args = []string{
			"-h", cfg.Host,
			"-p", fmt.Sprintf("%d", cfg.Port),
			"-U", cfg.Username,
			"-d", cfg.Name,
		}
		if cfg.Password != "" {
			dumpEnv = append(dumpEnv, fmt.Sprintf("PGPASSWORD=%s", cfg.Password))
		}
	case "mysql":
		name = "mysqldump"
		args = []string{
			"-h", cfg.Host,
			"-P", fmt.Sprintf("%d", cfg.Port),
			"-u", cfg.Username,
			cfg.Name,
		}
		if cfg.Password != "" {
			dumpEnv = append(dumpEnv, fmt.Sprintf("MYSQL_PWD=%s", cfg.Password))
		}
	default:
		return "", fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err := s.executor.ExecuteToFile(ctx, dumpEnv, outputPath, name, args...); err != nil {
		_ = os.Remove(outputPath)
		return "", fmt.Errorf("database dump failed: %w", err)
	}
	return outputPath, nil
}
