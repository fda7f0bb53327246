package mailer

import (
	"context"
	"io"

	gomail "gopkg.in/gomail.v2"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
)

// SMTPTransport sends the QR image as a binary attachment over an
// authenticated STARTTLS connection to a fixed provider.
type SMTPTransport struct {
	cfg config.SMTPConfig
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Name() string { return "smtp" }

func (t *SMTPTransport) Configured() bool { return t.cfg.Configured() }

func (t *SMTPTransport) Send(ctx context.Context, to string, att Attachment) error {
	m := gomail.NewMessage()
	m.SetHeader("From", t.cfg.FromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", mailSubject)
	m.SetBody("text/html", mailBody)
	m.Attach(att.Name, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(att.Content)
		return err
	}))

	d := gomail.NewDialer(t.cfg.Host, t.cfg.Port, t.cfg.Username, t.cfg.Password)

	// The dialer has no deadline support of its own; run the blocking
	// send in a goroutine and bound it with the caller's context.
	if t.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.DialTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
