package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type recordingSender struct {
	sent []*mail.Msg
	err  error
}

func (r *recordingSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	r.sent = append(r.sent, messages...)
	return r.err
}

var settings = Settings{Host: "smtp.example.com", Port: 587, From: "reports@example.com", To: []string{"ops@example.com", "cto@example.com"}}

func TestSend_AttachesReport(t *testing.T) {
	sender := &recordingSender{}
	m := NewWithSender(settings, sender, nil)

	err := m.Send(context.Background(), Message{
		Subject:        "Patch report",
		Body:           "See attached.",
		AttachmentName: "Neste_events_2025_apr_patch.csv",
		Attachment:     []byte("Customer\nNeste\n"),
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	var buf bytes.Buffer
	_, err = sender.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Patch report")
	assert.Contains(t, raw, "Neste_events_2025_apr_patch.csv")
	assert.Contains(t, raw, "ops@example.com")
}

func TestSend_PropagatesSenderError(t *testing.T) {
	m := NewWithSender(settings, &recordingSender{err: errors.New("connection refused")}, nil)
	err := m.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestCompose_RequiresRecipients(t *testing.T) {
	m := NewWithSender(Settings{From: "reports@example.com"}, &recordingSender{}, nil)
	_, err := m.Compose(Message{Subject: "x"})
	assert.Error(t, err)
}

func TestNew_RequiresHost(t *testing.T) {
	_, err := New(Settings{}, nil)
	assert.Error(t, err)
}
