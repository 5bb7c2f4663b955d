package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"
	"csvdash/ports"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

// Config holds the email endpoint settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the external /generate-email and /send-email endpoints.
// It satisfies ports.EmailGenerator and ports.EmailSender.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the endpoint at config.BaseURL
func NewClient(config Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type generateRequest struct {
	Prompt string                 `json:"prompt"`
	Row    map[string]interface{} `json:"row"`
}

// GenerateEmail asks the endpoint to fill template from row. Only a 200
// response carrying an "email" string counts as success. A 422 naming a
// missing field maps to MissingFieldError.
func (c *Client) GenerateEmail(ctx context.Context, template string, row dataset.Record) (string, error) {
	fields := make(map[string]interface{}, len(row))
	for k, v := range row {
		fields[k] = v.Interface()
	}

	status, body, err := c.post(ctx, "/generate-email", generateRequest{Prompt: template, Row: fields})
	if err != nil {
		return "", errors.ExternalServiceError("generate-email", err)
	}
	if status == http.StatusUnprocessableEntity && gjson.GetBytes(body, "code").String() == errors.CodeMissingField {
		return "", &errors.MissingFieldError{Field: gjson.GetBytes(body, "field").String()}
	}
	if status != http.StatusOK {
		return "", errors.ExternalServiceError("generate-email", fmt.Errorf("status %d: %s", status, snippet(body)))
	}

	email := gjson.GetBytes(body, "email")
	if !email.Exists() || email.Type != gjson.String {
		return "", errors.ExternalServiceError("generate-email", fmt.Errorf("response has no email field: %s", snippet(body)))
	}
	return email.String(), nil
}

// SendEmail posts one message. Anything but a 200 is a DeliveryError.
func (c *Client) SendEmail(ctx context.Context, email ports.Email) error {
	status, body, err := c.post(ctx, "/send-email", email)
	if err != nil {
		return &errors.DeliveryError{Recipient: email.Recipient, Cause: err}
	}
	if status != http.StatusOK {
		return &errors.DeliveryError{
			Recipient:  email.Recipient,
			StatusCode: status,
			Cause:      fmt.Errorf("endpoint rejected message: %s", snippet(body)),
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
