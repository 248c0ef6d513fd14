package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	domain "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/notify"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	"github.com/knadh/smtppool"
)

type sender interface {
	Send(e smtppool.Email) error
}

type SMTPNotifier struct {
	from string
	pool sender
}

var _ domain.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(c config.SMTPConfig) (*SMTPNotifier, *smtppool.Pool, error) {
	var auth smtp.Auth
	if c.Username != "" || c.Password != "" {
		auth = smtp.PlainAuth("", c.Username, c.Password, c.Host)
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            c.Host,
		Port:            c.Port,
		MaxConns:        c.MaxConns,
		IdleTimeout:     c.Timeout,
		PoolWaitTimeout: c.Timeout,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: c.InsecureSkipVerify,
			ServerName:         c.Host,
		},
		Auth: auth,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("smtp pool: %w", err)
	}
	return &SMTPNotifier{from: c.From, pool: pool}, pool, nil
}

func (n *SMTPNotifier) SendCode(ctx context.Context, msg domain.CodeMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := Render(n.from, msg)
	if err != nil {
		return err
	}
	return n.pool.Send(smtppool.Email{
		From:    e.From,
		To:      e.To,
		Subject: e.Subject,
		HTML:    e.HTML,
		Text:    e.Text,
		Headers: e.Headers,
	})
}
