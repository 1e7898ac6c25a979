// Package transport provides delivery backends for outgoing mail and the
// registry that selects between them. Two backends are built in: the local
// sendmail agent and an authenticated SMTP relay.
package transport

import (
	"context"
	"errors"
)

// ErrAgentUnavailable is returned when the delivery agent binary could not be
// located or invoked. Callers surface it as a distinct, user-facing error kind.
var ErrAgentUnavailable = errors.New("transport: mail agent not available")

// Message is the wire-ready form of an envelope handed to a Transport.
type Message struct {
	To       string
	From     string
	FromName string
	Subject  string
	HTML     string
	Text     string
}

// Transport is a delivery backend.
type Transport interface {
	// Name returns the transport identifier (e.g. "sendmail", "smtp").
	Name() string
	// Send attempts delivery of the message.
	Send(ctx context.Context, msg Message) error
}
