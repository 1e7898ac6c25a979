// Package dispatch implements the two-stage notification pipeline: identity
// resolution, template rendering and localization, envelope assembly,
// interception, and transport delivery.
package dispatch

import "github.com/shaharia-lab/mailroom/internal/transport"

// Correlation carries the identifiers tying a message back to the activity
// that produced it.
type Correlation struct {
	DispatchID   string
	RecipientID  string
	RelatedPost  string
	ActingUserID string
}

// Envelope is the fully assembled outgoing message. The pipeline is the sole
// mutator before interception; after that, registered modifiers own it until
// control returns for final delivery. Text is always derived from HTML at
// construction time; only interceptors may replace either field afterwards.
type Envelope struct {
	To       string
	From     string
	FromName string
	Subject  string
	HTML     string
	Text     string
	Template string

	Correlation Correlation

	// Params is the merged parameter bag: defaults under caller-supplied values.
	Params map[string]any
}

// Message converts the envelope to its wire-ready transport form.
func (e *Envelope) Message() transport.Message {
	return transport.Message{
		To:       e.To,
		From:     e.From,
		FromName: e.FromName,
		Subject:  e.Subject,
		HTML:     e.HTML,
		Text:     e.Text,
	}
}

// Status is the terminal state of a single dispatch attempt.
type Status string

const (
	// StatusDelivered means a transport or delivery override accepted the message.
	StatusDelivered Status = "delivered"
	// StatusSkipped means the recipient had no contact address; not an error.
	StatusSkipped Status = "skipped"
	// StatusFailed means rendering, interception, or delivery failed.
	StatusFailed Status = "failed"
)

// Outcome is the per-attempt result surfaced to callers. Err is non-nil only
// when Status is StatusFailed.
type Outcome struct {
	Status Status
	Err    error
}

func delivered() Outcome { return Outcome{Status: StatusDelivered} }
func skipped() Outcome   { return Outcome{Status: StatusSkipped} }

func failed(err error) Outcome { return Outcome{Status: StatusFailed, Err: err} }
