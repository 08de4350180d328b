package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"github.com/knadh/smtppool"
)

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	FromName    string
	MaxConns    int
	SendTimeout time.Duration
}

// EmailTransport sends messages through a pooled SMTP connection.
type EmailTransport struct {
	config EmailConfig
	pool   *smtppool.Pool
}

// NewEmailTransport creates the SMTP connection pool.
func NewEmailTransport(config EmailConfig) (*EmailTransport, error) {
	if config.MaxConns <= 0 {
		config.MaxConns = 4
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = 10 * time.Second
	}

	var auth smtp.Auth
	if config.User != "" || config.Password != "" {
		auth = smtp.PlainAuth("", config.User, config.Password, config.Host)
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            config.Host,
		Port:            config.Port,
		MaxConns:        config.MaxConns,
		IdleTimeout:     config.SendTimeout,
		PoolWaitTimeout: config.SendTimeout,
		TLSConfig:       &tls.Config{ServerName: config.Host},
		Auth:            auth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp pool: %w", err)
	}
	return &EmailTransport{config: config, pool: pool}, nil
}

// Deliver sends msg. The pool applies its own wait timeout; ctx is checked
// before the message is queued.
func (t *EmailTransport) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.pool.Send(smtppool.Email{
		From:    t.from(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    []byte(msg.Text),
		HTML:    []byte(msg.HTML),
	})
}

// Close closes all pooled connections.
func (t *EmailTransport) Close() {
	t.pool.Close()
}

func (t *EmailTransport) from() string {
	if t.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", t.config.FromName, t.config.From)
	}
	return t.config.From
}
