package models

// Outcome classifies how a backup operation ended.
type Outcome string

// Possible outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// DispatchEvent is one notification request, built by the caller at the
// moment an operation concludes.
type DispatchEvent struct {
	Outcome Outcome
	Subject string
	Body    string
}

// MailPolicy configures the mail notification channel.
type MailPolicy struct {
	Enabled       bool   // master switch, off unless MAIL_SMTP_ENABLE=true
	To            string // recipient address, required for delivery
	SMTPVariables string // passed through verbatim as mail arguments
	OnSuccess     bool
	OnFailure     bool
	Debug         bool // adds verbose transport flags
}

// NtfyPolicy configures the push notification channel.
type NtfyPolicy struct {
	Enabled         bool // master switch, off unless NTFY_ENABLE=true
	Server          string
	Topic           string
	Username        string
	Password        string // basic auth, wins over Token when both are set
	Token           string // bearer auth
	PrioritySuccess string
	PriorityFailure string
	OnSuccess       bool
	OnFailure       bool
}

// Priority returns the message priority configured for an outcome.
func (p NtfyPolicy) Priority(outcome Outcome) string {
	if outcome == OutcomeFailure {
		return p.PriorityFailure
	}
	return p.PrioritySuccess
}

// PingPolicy holds the healthcheck endpoint URLs. An empty URL is a
// silent no-op, never an error.
type PingPolicy struct {
	URL        string // pinged after a successful run
	StartURL   string // pinged before any backup work begins
	SuccessURL string
	FailureURL string
}
