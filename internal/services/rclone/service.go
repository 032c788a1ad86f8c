// Package rclone drives the rclone binary for remote storage operations.
package rclone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"vwbackup/internal/models"
)

// Service defines the interface for rclone operations.
type Service interface {
	CheckConnectivity(ctx context.Context, cfg models.Config, remotes []models.RemoteTarget) error
	Copy(ctx context.Context, cfg models.Config, source string, remote models.RemoteTarget) error
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct {
	// Env replaces the subprocess environment when non-nil, so rclone
	// observes the canonical values the resolver produced.
	Env []string
}

// Execute runs a command and returns its combined output.
func (e *DefaultExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if e.Env != nil {
		cmd.Env = e.Env
	}
	return cmd.CombinedOutput()
}

// Impl implements the Service interface.
type Impl struct {
	executor CommandExecutor
	logger   zerolog.Logger
}

// New creates a new rclone service. The environ slice becomes the
// subprocess environment, carrying the resolved configuration values to
// rclone.
func New(logger zerolog.Logger, environ []string) *Impl {
	return &Impl{
		executor: &DefaultExecutor{Env: environ},
		logger:   logger,
	}
}

// NewWithExecutor creates a new rclone service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// CheckConnectivity validates the rclone configuration and every remote
// before any backup work starts. The rclone config file must exist;
// after that, each remote gets a create-if-absent mkdir. The per-remote
// loop always runs to completion and failures are aggregated, so one run
// surfaces every unreachable destination instead of just the first.
func (s *Impl) CheckConnectivity(ctx context.Context, cfg models.Config, remotes []models.RemoteTarget) error {
	path, err := s.configFile(ctx)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("rclone config %s not found, configure a remote first: %w", path, err)
	}

	var failures []error
	for _, remote := range remotes {
		s.logger.Info().Str("remote", remote.String()).Msg("checking remote connectivity")

		args := append([]string{"mkdir"}, cfg.RcloneFlags...)
		args = append(args, remote.String())
		output, err := s.executor.Execute(ctx, "rclone", args...)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("remote", remote.String()).
				Str("output", strings.TrimSpace(string(output))).
				Msg("remote unreachable")
			failures = append(failures, fmt.Errorf("remote %s unreachable: %w", remote, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("connectivity check failed for %d of %d remotes: %w",
			len(failures), len(remotes), errors.Join(failures...))
	}
	return nil
}

// configFile asks rclone where its configuration lives. The path is the
// last non-empty output line ("Configuration file is stored at:" comes
// first).
func (s *Impl) configFile(ctx context.Context) (string, error) {
	output, err := s.executor.Execute(ctx, "rclone", "config", "file")
	if err != nil {
		return "", fmt.Errorf("locating rclone config: %w, output: %s", err, string(output))
	}
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1]), nil
}

// Copy uploads a local file or directory to one remote.
func (s *Impl) Copy(ctx context.Context, cfg models.Config, source string, remote models.RemoteTarget) error {
	args := append([]string{"copy"}, cfg.RcloneFlags...)
	args = append(args, source, remote.String())
	output, err := s.executor.Execute(ctx, "rclone", args...)
	if err != nil {
		return fmt.Errorf("upload to %s failed: %w, output: %s", remote, err, string(output))
	}
	return nil
}
