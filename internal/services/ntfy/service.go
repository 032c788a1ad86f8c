// Package ntfy publishes push notifications to an ntfy server.
package ntfy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vwbackup/internal/models"
)

// Service defines the interface for push notification delivery.
type Service interface {
	Publish(ctx context.Context, policy models.NtfyPolicy, outcome models.Outcome, title, message string) error
}

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Impl implements the Service interface.
type Impl struct {
	httpClient HTTPClient
	logger     zerolog.Logger
}

// New creates a new ntfy service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// NewWithClient creates a new ntfy service with a custom HTTP client (for testing).
func NewWithClient(logger zerolog.Logger, httpClient HTTPClient) *Impl {
	return &Impl{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Publish posts one message to {server}/{topic} with the priority
// configured for the outcome. When both a password and a token are
// present, basic auth wins over bearer. Only HTTP 200 counts as success.
func (s *Impl) Publish(ctx context.Context, policy models.NtfyPolicy, outcome models.Outcome, title, message string) error {
	url := fmt.Sprintf("%s/%s", strings.TrimRight(policy.Server, "/"), policy.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("building ntfy request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", title)
	req.Header.Set("X-Priority", policy.Priority(outcome))

	switch {
	case policy.Password != "":
		req.SetBasicAuth(policy.Username, policy.Password)
	case policy.Token != "":
		req.Header.Set("Authorization", "Bearer "+policy.Token)
	}

	s.logger.Info().
		Str("topic", policy.Topic).
		Str("outcome", string(outcome)).
		Msg("sending push notification")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending push notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
