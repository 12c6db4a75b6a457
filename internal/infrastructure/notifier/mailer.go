package notifier

import (
	"context"
	"log/slog"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"gopkg.in/gomail.v2"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPMailer delivers mail over SMTP with implicit TLS on 465.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer {
	sender := cfg.Sender
	if sender == "" {
		sender = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		sender: sender,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return err
	}
	slog.Info("email sent", "to", email.To, "subject", email.Subject)
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	m.logger.Info("email (not sent)", "to", email.To, "subject", email.Subject, "body", email.Body)
	return nil
}

// NewMailer picks SMTP when it is enabled in config.
func NewMailer(cfg config.SMTP, logger *slog.Logger) Mailer {
	if cfg.Enabled && cfg.Host != "" {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}
