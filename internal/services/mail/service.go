// Package mail sends notification mail through the system mail binary.
package mail

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"vwbackup/internal/models"
)

// Service defines the interface for mail delivery.
type Service interface {
	Send(ctx context.Context, policy models.MailPolicy, subject, body string) error
}

// CommandExecutor allows mocking exec.Command in tests. The message body
// is passed on stdin, matching how the mail binary reads it.
type CommandExecutor interface {
	ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct {
	// Env replaces the subprocess environment when non-nil, so the mail
	// binary observes the canonical resolved values.
	Env []string
}

// ExecuteWithInput runs a command with input on stdin and returns its
// combined output.
func (e *DefaultExecutor) ExecuteWithInput(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(input)
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

// New creates a new mail service. The environ slice becomes the
// subprocess environment for the mail binary.
func New(logger zerolog.Logger, environ []string) *Impl {
	return &Impl{
		executor: &DefaultExecutor{Env: environ},
		logger:   logger,
	}
}

// NewWithExecutor creates a new mail service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// Send composes and delivers one message. The SMTP transport variables
// are passed through verbatim as mail arguments; the debug flag adds
// verbose transport output.
func (s *Impl) Send(ctx context.Context, policy models.MailPolicy, subject, body string) error {
	if policy.To == "" {
		return fmt.Errorf("no mail recipient configured")
	}

	args := strings.Fields(policy.SMTPVariables)
	if policy.Debug {
		args = append(args, "-v")
	}
	args = append(args, "-s", subject, policy.To)

	s.logger.Info().Str("to", policy.To).Str("subject", subject).Msg("sending mail notification")
	output, err := s.executor.ExecuteWithInput(ctx, body, "mail", args...)
	if err != nil {
		return fmt.Errorf("mail delivery failed: %w, output: %s", err, string(output))
	}
	return nil
}
