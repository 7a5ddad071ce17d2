// Package discord delivers batch reports as rich embeds to Discord
// webhook channels: one channel for exchange flow summaries and one for
// whale alerts.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httptransport "github.com/gabapcia/cexwatch/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

// maxFieldValueLength is Discord's embed field value limit, minus a
// small margin for closing markdown.
const maxFieldValueLength = 1020

type client struct {
	httpClient *retryablehttp.Client

	flowWebhookURL  string
	whaleWebhookURL string

	topFlowEntries int
}

// Option is a function used to customize the Discord notifier.
type Option func(*client)

// WithTopFlowEntries overrides how many exchanges the flow report lists
// before truncating. Non-positive values are ignored.
func WithTopFlowEntries(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.topFlowEntries = n
		}
	}
}

// WithHTTPOptions replaces the underlying retrying HTTP client with one
// built from the given transport options.
func WithHTTPOptions(opts ...httptransport.Option) Option {
	return func(c *client) {
		c.httpClient = httptransport.NewClient(opts...)
	}
}

// NewClient creates a Discord notifier posting flow reports and whale
// alerts to their respective webhook URLs. Either URL may be empty, in
// which case sends to that channel become no-ops.
func NewClient(flowWebhookURL, whaleWebhookURL string, opts ...Option) *client {
	c := &client{
		httpClient:      httptransport.NewClient(),
		flowWebhookURL:  flowWebhookURL,
		whaleWebhookURL: whaleWebhookURL,
		topFlowEntries:  defaultTopFlowEntries,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// webhookMessage is the body posted to a Discord webhook.
type webhookMessage struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// send posts one webhook message, treating any non-2xx response as an
// error so the caller's logging captures delivery failures.
func (c *client) send(ctx context.Context, webhookURL string, message webhookMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}
