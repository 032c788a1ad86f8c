package ntfy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vwbackup/internal/models"
)

type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testPolicy() models.NtfyPolicy {
	return models.NtfyPolicy{
		Enabled:         true,
		Server:          "https://ntfy.example.com",
		Topic:           "backups",
		PrioritySuccess: "default",
		PriorityFailure: "high",
		OnSuccess:       true,
		OnFailure:       true,
	}
}

func capture(captured **http.Request) *mockHTTPClient {
	return &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			*captured = req
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("")),
			}, nil
		},
	}
}

func TestPublish_Request(t *testing.T) {
	var captured *http.Request
	svc := NewWithClient(testLogger(), capture(&captured))

	err := svc.Publish(context.Background(), testPolicy(), models.OutcomeSuccess, "Backup done", "all good")

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "https://ntfy.example.com/backups", captured.URL.String())
	assert.Equal(t, "Backup done", captured.Header.Get("Title"))
	assert.Equal(t, "default", captured.Header.Get("X-Priority"))
	assert.Empty(t, captured.Header.Get("Authorization"))

	body, _ := io.ReadAll(captured.Body)
	assert.Equal(t, "all good", string(body))
}

func TestPublish_FailurePriority(t *testing.T) {
	var captured *http.Request
	svc := NewWithClient(testLogger(), capture(&captured))

	err := svc.Publish(context.Background(), testPolicy(), models.OutcomeFailure, "Backup failed", "boom")

	require.NoError(t, err)
	assert.Equal(t, "high", captured.Header.Get("X-Priority"))
}

func TestPublish_PasswordWinsOverToken(t *testing.T) {
	var captured *http.Request
	svc := NewWithClient(testLogger(), capture(&captured))
	policy := testPolicy()
	policy.Username = "backup"
	policy.Password = "secret"
	policy.Token = "tk_abc"

	err := svc.Publish(context.Background(), policy, models.OutcomeSuccess, "t", "m")

	require.NoError(t, err)
	user, pass, ok := captured.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "backup", user)
	assert.Equal(t, "secret", pass)
}

func TestPublish_BearerToken(t *testing.T) {
	var captured *http.Request
	svc := NewWithClient(testLogger(), capture(&captured))
	policy := testPolicy()
	policy.Token = "tk_abc"

	err := svc.Publish(context.Background(), policy, models.OutcomeSuccess, "t", "m")

	require.NoError(t, err)
	assert.Equal(t, "Bearer tk_abc", captured.Header.Get("Authorization"))
}

func TestPublish_NonOKStatus(t *testing.T) {
	svc := NewWithClient(testLogger(), &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusForbidden,
				Body:       io.NopCloser(strings.NewReader("access denied")),
			}, nil
		},
	})

	err := svc.Publish(context.Background(), testPolicy(), models.OutcomeSuccess, "t", "m")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "access denied")
}

func TestPublish_NetworkError(t *testing.T) {
	svc := NewWithClient(testLogger(), &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		},
	})

	err := svc.Publish(context.Background(), testPolicy(), models.OutcomeSuccess, "t", "m")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending push notification")
}
