// Package notification renders account notifications and hands them to a
// mail transport.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/contextauth/pkg/auth"
)

// ErrUnknownKind is returned for a notification kind with no template.
var ErrUnknownKind = errors.New("unknown notification kind")

// Message is a rendered email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Transport delivers a rendered message.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// Notifier implements auth.NotificationSender on top of a Transport.
type Notifier struct {
	logger    *slog.Logger
	transport Transport
}

// NewNotifier creates a new notifier.
func NewNotifier(logger *slog.Logger, transport Transport) *Notifier {
	return &Notifier{logger: logger, transport: transport}
}

// Send renders the template for kind and delivers it to address.
func (n *Notifier) Send(ctx context.Context, address string, kind auth.NotificationKind, payload map[string]string) error {
	msg, err := Render(kind, payload)
	if err != nil {
		return err
	}
	msg.To = address

	if err := n.transport.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver %s: %w", kind, err)
	}
	n.logger.Debug("notification delivered", "kind", kind)
	return nil
}
