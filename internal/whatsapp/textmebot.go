// Package whatsapp sends plain-text messages through the TextMeBot gateway.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultBaseURL  = "http://api.textmebot.com/send.php"
	defaultAttempts = 3
	defaultWait     = time.Second
	defaultTimeout  = 10 * time.Second
)

// ErrNotConfigured is returned by Send when no API key is set.
var ErrNotConfigured = errors.New("whatsapp client not configured: missing API key")

// SendError reports a message that could not be delivered after every attempt.
type SendError struct {
	Attempts int
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send whatsapp message after %d attempts: %v", e.Attempts, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response from the gateway.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("textmebot status %d: %s", e.Status, e.Body)
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	attempts   int
	wait       time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

// WithRetry sets the attempt count and the base wait. The wait before
// attempt n+1 is n times the base.
func WithRetry(attempts int, wait time.Duration) Option {
	return func(cl *Client) {
		if attempts > 0 {
			cl.attempts = attempts
		}
		cl.wait = wait
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		attempts:   defaultAttempts,
		wait:       defaultWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Send delivers text to phone, retrying failed attempts with a linear wait.
func (c *Client) Send(ctx context.Context, phone, text string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if phone == "" {
		return errors.New("whatsapp recipient is empty")
	}

	attempts := 0
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempts++
		if err := c.sendOnce(ctx, phone, text); err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return &SendError{Attempts: attempts, Err: err}
	}
	return nil
}

func (c *Client) backoff() retry.Backoff {
	n := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		if n >= c.attempts {
			return 0, true
		}
		return time.Duration(n) * c.wait, false
	})
}

func (c *Client) sendOnce(ctx context.Context, phone, text string) error {
	q := url.Values{}
	q.Set("recipient", phone)
	q.Set("apikey", c.apiKey)
	q.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.baseURL
		}
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
