// Package mailer delivers the generated QR image to a patient-supplied
// email address. Two interchangeable transports exist: direct SMTP and a
// transactional-email HTTP API. Whichever has credentials wins; with
// neither configured the dispatcher reports that without any network I/O.
package mailer

import (
	"context"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
)

type Status string

const (
	StatusSent          Status = "sent"
	StatusFailed        Status = "failed"
	StatusNotConfigured Status = "not_configured"
)

const (
	mailSubject = "Your Emergency Medical QR Code"
	mailBody    = "<p>Attached is your emergency medical QR code.</p>" +
		"<p>Print it and keep it in your wallet or on your person at all times.</p>"
)

// Attachment is the QR image as raw bytes plus the filename shown to the
// recipient.
type Attachment struct {
	Name    string
	Content []byte
}

// Transport is a single delivery mechanism.
type Transport interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, to string, att Attachment) error
}

// Dispatcher picks the first configured transport and sends through it.
// A failed send is final: no retry, no queue.
type Dispatcher struct {
	transports []Transport
}

func NewDispatcher(smtpCfg config.SMTPConfig, apiCfg config.EmailAPIConfig) *Dispatcher {
	return &Dispatcher{
		transports: []Transport{
			NewSMTPTransport(smtpCfg),
			NewAPITransport(apiCfg),
		},
	}
}

// Send returns the flat delivery status and, on failure, the underlying
// cause so the caller can log it. The error is informational only; the
// user-facing flow treats every outcome the same way.
func (d *Dispatcher) Send(ctx context.Context, to string, att Attachment) (Status, error) {
	for _, t := range d.transports {
		if !t.Configured() {
			continue
		}
		if err := t.Send(ctx, to, att); err != nil {
			return StatusFailed, err
		}
		return StatusSent, nil
	}
	return StatusNotConfigured, nil
}

// ActiveTransport names the transport that would handle a send, or ""
// when none is configured.
func (d *Dispatcher) ActiveTransport() string {
	for _, t := range d.transports {
		if t.Configured() {
			return t.Name()
		}
	}
	return ""
}
