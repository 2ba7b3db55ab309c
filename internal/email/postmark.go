package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	postmarkURL    = "https://api.postmarkapp.com/email"
	defaultTimeout = 10 * time.Second
)

// ErrNotConfigured is returned by Send when no server token is set.
var ErrNotConfigured = errors.New("email client not configured: missing server token")

// APIError is a non-2xx response from Postmark.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("postmark API error: status %d: %s (code %d)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("postmark API error: status %d", e.Status)
}

type Client struct {
	serverToken string
	fromEmail   string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HtmlBody      string `json:"HtmlBody,omitempty"`
	TextBody      string `json:"TextBody,omitempty"`
	MessageStream string `json:"MessageStream"`
}

type postmarkResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
}

// Send delivers one message. Postmark does not retry on our behalf and
// neither does Send; a failed delivery is reported to the caller.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload := postmarkEmail{
		From:          c.fromEmail,
		To:            to,
		Subject:       subject,
		HtmlBody:      htmlBody,
		TextBody:      textBody,
		MessageStream: "outbound",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postmarkURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var pr postmarkResponse
		if json.NewDecoder(resp.Body).Decode(&pr) == nil {
			apiErr.Code = pr.ErrorCode
			apiErr.Message = pr.Message
		}
		return apiErr
	}

	return nil
}
