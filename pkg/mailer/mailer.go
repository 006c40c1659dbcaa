// Package mailer delivers outbound email.
package mailer

import (
	"context"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"gopkg.in/gomail.v2"
)

const notifyTimeout = 30 * time.Second

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// New returns an SMTP sender when SMTP is configured and a LogSender
// otherwise.
func New(cfg *config.Config) Sender {
	if cfg.SMTPEnabled() {
		return NewSMTPSender(cfg)
	}
	return &LogSender{}
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()
	select {
	case err := <-done:
		return errors.Wrapf(err, "failed to send mail to %s", to)
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

func (s *LogSender) Send(ctx context.Context, to, subject, _ string) error {
	logger.FromContext(ctx).Info("mail not delivered, smtp is not configured", logger.Data{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// Notify sends a message in the background. The send outlives the request
// that triggered it and failures are only logged.
func Notify(ctx context.Context, sender Sender, to, subject, htmlBody string) <-chan struct{} {
	done := make(chan struct{})
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := sender.Send(ctx, to, subject, htmlBody); err != nil {
			logger.FromContext(ctx).Warn("failed to send mail", logger.Data{
				"to":      to,
				"subject": subject,
				"error":   err.Error(),
			})
		}
	}()
	return done
}
