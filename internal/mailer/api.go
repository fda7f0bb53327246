package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
)

// APITransport posts a JSON payload with a base64 attachment to a
// transactional-email endpoint (Brevo-compatible shape). The provider
// answers 201 Created on acceptance; anything else is a failure.
type APITransport struct {
	cfg    config.EmailAPIConfig
	client *http.Client
}

func NewAPITransport(cfg config.EmailAPIConfig) *APITransport {
	return &APITransport{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (t *APITransport) Name() string { return "email-api" }

func (t *APITransport) Configured() bool { return t.cfg.Configured() }

type apiParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type apiAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type apiPayload struct {
	Sender      apiParty        `json:"sender"`
	To          []apiParty      `json:"to"`
	Subject     string          `json:"subject"`
	HTMLContent string          `json:"htmlContent"`
	Attachment  []apiAttachment `json:"attachment"`
}

func (t *APITransport) Send(ctx context.Context, to string, att Attachment) error {
	payload := apiPayload{
		Sender:      apiParty{Name: t.cfg.SenderName, Email: t.cfg.SenderEmail},
		To:          []apiParty{{Email: to}},
		Subject:     mailSubject,
		HTMLContent: mailBody,
		Attachment: []apiAttachment{{
			Name:    att.Name,
			Content: base64.StdEncoding.EncodeToString(att.Content),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", t.cfg.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to email api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email api returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
