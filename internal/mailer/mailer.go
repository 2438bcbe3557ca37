// Package mailer delivers finished reports as e-mail attachments.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Settings configures the SMTP connection and envelope.
type Settings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Message is one report mail.
type Message struct {
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Sender delivers a composed message.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends report messages through SMTP.
type Mailer struct {
	settings Settings
	sender   Sender
	logger   *zap.Logger
}

// New dials nothing; the SMTP connection is opened per Send.
func New(settings Settings, logger *zap.Logger) (*Mailer, error) {
	if settings.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	opts := []mail.Option{
		mail.WithPort(settings.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(settings.Username),
			mail.WithPassword(settings.Password),
		)
	}
	client, err := mail.NewClient(settings.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return NewWithSender(settings, client, logger), nil
}

// NewWithSender builds a Mailer around an existing Sender.
func NewWithSender(settings Settings, sender Sender, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{settings: settings, sender: sender, logger: logger}
}

// Compose builds the MIME message for msg.
func (m *Mailer) Compose(msg Message) (*mail.Msg, error) {
	if len(m.settings.To) == 0 {
		return nil, errors.New("no recipients configured")
	}
	out := mail.NewMsg()
	if err := out.From(m.settings.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.settings.From, err)
	}
	if err := out.To(m.settings.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	if msg.AttachmentName != "" {
		if err := out.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return nil, fmt.Errorf("attach %s: %w", msg.AttachmentName, err)
		}
	}
	return out, nil
}

// Send composes and delivers msg.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	composed, err := m.Compose(msg)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSendWithContext(ctx, composed); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Sugar().Infow("Report mailed", "subject", msg.Subject, "recipients", len(m.settings.To), "attachment", msg.AttachmentName)
	return nil
}
