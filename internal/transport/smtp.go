package transport

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// RelayConfig holds connection parameters for the SMTP relay transport.
type RelayConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string // "none", "starttls", "ssl_tls"
}

// SMTPRelay delivers mail through an authenticated SMTP relay using the
// go-mail library.
type SMTPRelay struct {
	config RelayConfig
}

// NewSMTPRelay creates a new SMTPRelay with the given configuration.
func NewSMTPRelay(config RelayConfig) *SMTPRelay {
	return &SMTPRelay{config: config}
}

// Name returns the transport identifier.
func (t *SMTPRelay) Name() string { return "smtp" }

// Send delivers msg through the configured relay.
func (t *SMTPRelay) Send(ctx context.Context, msg Message) error {
	m, err := newMailMsg(msg)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(t.config.Host,
		mail.WithPort(t.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.config.Username),
		mail.WithPassword(t.config.Password),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(t.config.Encryption)),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return c.DialAndSendWithContext(ctx, m)
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
