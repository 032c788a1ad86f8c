// Package notify fans backup outcomes out to the notification channels.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"vwbackup/internal/models"
	"vwbackup/internal/services/mail"
	"vwbackup/internal/services/ntfy"
	"vwbackup/internal/services/ping"
)

// Dispatcher delivers DispatchEvents over the configured channels. The
// channels are independent: a failing transport is logged and never
// stops the other channels or the caller.
type Dispatcher struct {
	mailPolicy models.MailPolicy
	ntfyPolicy models.NtfyPolicy
	pingPolicy models.PingPolicy
	mailSvc    mail.Service
	ntfySvc    ntfy.Service
	pingSvc    ping.Service
	logger     zerolog.Logger
}

// NewDispatcher validates the channel configuration and builds a
// dispatcher. The environ slice is handed to channels that shell out,
// so their subprocesses observe the resolved configuration values.
func NewDispatcher(cfg *models.Config, logger zerolog.Logger, environ []string) (*Dispatcher, error) {
	return NewDispatcherWithServices(cfg, logger, mail.New(logger, environ), ntfy.New(logger), ping.New(logger))
}

// NewDispatcherWithServices builds a dispatcher with custom channel
// services (for testing).
func NewDispatcherWithServices(
	cfg *models.Config,
	logger zerolog.Logger,
	mailSvc mail.Service,
	ntfySvc ntfy.Service,
	pingSvc ping.Service,
) (*Dispatcher, error) {
	d := &Dispatcher{
		mailPolicy: cfg.Mail,
		ntfyPolicy: cfg.Ntfy,
		pingPolicy: cfg.Ping,
		mailSvc:    mailSvc,
		ntfySvc:    ntfySvc,
		pingSvc:    pingSvc,
		logger:     logger,
	}
	return d, d.validate()
}

// validate enforces the channel preconditions. An enabled push channel
// without a server cannot degrade silently once explicitly switched on,
// so it is an error; an enabled mail channel without a recipient only
// disables that channel with a warning.
func (d *Dispatcher) validate() error {
	if d.ntfyPolicy.Enabled && d.ntfyPolicy.Server == "" {
		return fmt.Errorf("NTFY_ENABLE is set but no NTFY_SERVER is configured")
	}
	if d.mailPolicy.Enabled && d.mailPolicy.To == "" {
		d.logger.Warn().Msg("mail notifications enabled but MAIL_TO is empty, disabling channel")
		d.mailPolicy.Enabled = false
	}
	return nil
}

// Notify delivers one event over every channel whose policy allows it.
// Channel errors are absorbed here; callers never see them.
func (d *Dispatcher) Notify(ctx context.Context, event models.DispatchEvent) {
	d.notifyMail(ctx, event)
	d.notifyNtfy(ctx, event)
	d.notifyPing(ctx, event)
}

// PingStart signals the monitoring endpoint that a run has begun.
func (d *Dispatcher) PingStart(ctx context.Context) {
	if err := d.pingSvc.Ping(ctx, d.pingPolicy.StartURL); err != nil {
		d.logger.Error().Err(err).Msg("start ping failed")
	}
}

func (d *Dispatcher) notifyMail(ctx context.Context, event models.DispatchEvent) {
	if !d.mailPolicy.Enabled || !allows(d.mailPolicy.OnSuccess, d.mailPolicy.OnFailure, event.Outcome) {
		return
	}
	if err := d.mailSvc.Send(ctx, d.mailPolicy, event.Subject, event.Body); err != nil {
		d.logger.Error().Err(err).Msg("mail notification failed")
	}
}

func (d *Dispatcher) notifyNtfy(ctx context.Context, event models.DispatchEvent) {
	if !d.ntfyPolicy.Enabled || !allows(d.ntfyPolicy.OnSuccess, d.ntfyPolicy.OnFailure, event.Outcome) {
		return
	}
	if err := d.ntfySvc.Publish(ctx, d.ntfyPolicy, event.Outcome, event.Subject, event.Body); err != nil {
		d.logger.Error().Err(err).Msg("push notification failed")
	}
}

func (d *Dispatcher) notifyPing(ctx context.Context, event models.DispatchEvent) {
	var urls []string
	if event.Outcome == models.OutcomeFailure {
		urls = []string{d.pingPolicy.FailureURL}
	} else {
		urls = []string{d.pingPolicy.SuccessURL, d.pingPolicy.URL}
	}
	for _, url := range urls {
		if err := d.pingSvc.Ping(ctx, url); err != nil {
			d.logger.Error().Err(err).Str("url", url).Msg("healthcheck ping failed")
		}
	}
}

// allows applies the outcome-specific policy flag.
func allows(onSuccess, onFailure bool, outcome models.Outcome) bool {
	if outcome == models.OutcomeFailure {
		return onFailure
	}
	return onSuccess
}
