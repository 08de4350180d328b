package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// BridgeConfig holds HTTP mail bridge settings.
type BridgeConfig struct {
	URL     string
	Token   string
	From    string
	Timeout time.Duration
}

// BridgeTransport posts messages as JSON to an HTTP mail bridge.
type BridgeTransport struct {
	client *resty.Client
	from   string
}

type bridgeRequest struct {
	From string `json:"from"`
	Message
}

// NewBridgeTransport creates a new bridge transport.
func NewBridgeTransport(config BridgeConfig) *BridgeTransport {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(config.URL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json")
	if config.Token != "" {
		client.SetAuthToken(config.Token)
	}
	return &BridgeTransport{client: client, from: config.From}
}

// Deliver posts msg to the bridge. Non-2xx responses are errors.
func (t *BridgeTransport) Deliver(ctx context.Context, msg Message) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(bridgeRequest{From: t.from, Message: msg}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("mail bridge request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail bridge returned %d", resp.StatusCode())
	}
	return nil
}
