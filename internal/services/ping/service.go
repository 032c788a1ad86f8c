// Package ping issues healthcheck requests to monitoring endpoints.
package ping

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	requestTimeout    = 15 * time.Second
	maxAttempts       = 10
	defaultRetryDelay = time.Second
)

// Service defines the interface for healthcheck pings.
type Service interface {
	Ping(ctx context.Context, url string) error
}

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Impl implements the Service interface.
type Impl struct {
	httpClient HTTPClient
	logger     zerolog.Logger
	retryDelay time.Duration
}

// New creates a new ping service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

// NewWithClient creates a new ping service with a custom HTTP client and
// retry delay (for testing).
func NewWithClient(logger zerolog.Logger, httpClient HTTPClient, delay time.Duration) *Impl {
	return &Impl{
		httpClient: httpClient,
		logger:     logger,
		retryDelay: delay,
	}
}

// Ping fires a GET at url, retrying up to the attempt bound before
// giving up. An empty url is a silent no-op.
func (s *Impl) Ping(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building ping request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode < 300 {
				return nil
			}
			lastErr = fmt.Errorf("ping returned status %d", resp.StatusCode)
		}

		s.logger.Debug().
			Err(lastErr).
			Int("attempt", attempt).
			Str("url", url).
			Msg("ping attempt failed")

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
	}
	return fmt.Errorf("ping failed after %d attempts: %w", maxAttempts, lastErr)
}
