package transport

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailMsg(t *testing.T) {
	msg := Message{
		To:       "a@x.com",
		From:     "noreply@example.com",
		FromName: "Example",
		Subject:  "Welcome",
		HTML:     "<p>Hi</p>",
		Text:     "Hi",
	}

	m, err := newMailMsg(msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	s := buf.String()

	assert.Contains(t, s, "a@x.com")
	assert.Contains(t, s, "noreply@example.com")
	assert.Contains(t, s, "Subject: Welcome")
	assert.Contains(t, s, "multipart/alternative")
	assert.Contains(t, s, "<p>Hi</p>")

	// The plain part precedes the HTML part.
	assert.Less(t, strings.Index(s, "text/plain"), strings.Index(s, "text/html"))
}

func TestNewMailMsg_NoHTMLPart(t *testing.T) {
	m, err := newMailMsg(Message{To: "a@x.com", From: "b@x.com", Subject: "s", Text: "hello"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "text/html")
	assert.Contains(t, buf.String(), "hello")
}

func TestNewMailMsg_InvalidRecipient(t *testing.T) {
	_, err := newMailMsg(Message{To: "not-an-address", From: "b@x.com", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-address")
}

func TestSend_MissingBinary(t *testing.T) {
	sm := NewSendmail(filepath.Join(t.TempDir(), "sendmail"))

	err := sm.Send(context.Background(), Message{To: "a@x.com", From: "b@x.com", Text: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
