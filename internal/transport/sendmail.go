package transport

import (
	"context"
	"fmt"
)

// Sendmail delivers mail by piping the composed message to the local mail
// agent binary. Recipients are read from the message headers (-t).
type Sendmail struct {
	path string
}

// NewSendmail creates a Sendmail transport invoking the binary at path.
func NewSendmail(path string) *Sendmail {
	return &Sendmail{path: path}
}

// Name returns the transport identifier.
func (t *Sendmail) Name() string { return "sendmail" }

// Send pipes the message to the agent binary. A missing binary surfaces
// through the wrapped exec error; callers match it with errors.Is against
// exec.ErrNotFound or fs.ErrNotExist.
func (t *Sendmail) Send(ctx context.Context, msg Message) error {
	m, err := newMailMsg(msg)
	if err != nil {
		return err
	}
	if err := m.WriteToSendmailWithContext(ctx, t.path); err != nil {
		return fmt.Errorf("invoking %q: %w", t.path, err)
	}
	return nil
}
