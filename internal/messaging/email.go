package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/errors"
)

// Defaults used when a command names no subject or body.
const (
	DefaultEmailSubject = "Message from AI Assistant"
	DefaultEmailBody    = "This is an automated message from your AI assistant."
)

const smtpTimeout = 30 * time.Second

// EmailConfig holds SMTP settings. The address doubles as the login.
type EmailConfig struct {
	Address    string
	Password   string
	SMTPServer string
	SMTPPort   int
}

// Configured reports whether every required setting is present.
func (c EmailConfig) Configured() bool {
	return c.Address != "" && c.Password != "" && c.SMTPServer != "" && c.SMTPPort > 0
}

type deliverFunc func(ctx context.Context, cfg EmailConfig, msg *mail.Msg) error

// Email sends plain-text mail over SMTP.
type Email struct {
	cfg     EmailConfig
	deliver deliverFunc
	logger  *zap.Logger
}

// NewEmail creates an SMTP sender.
func NewEmail(cfg EmailConfig, logger *zap.Logger) *Email {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Email{cfg: cfg, deliver: dialAndSend, logger: logger.Named("email")}
}

// SendEmail sends one message. Empty subject and body get defaults.
func (e *Email) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	if !e.cfg.Configured() {
		return "", errors.NotConfigured("Email configuration not set up. Please configure email settings.")
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultEmailSubject
	}
	if strings.TrimSpace(body) == "" {
		body = DefaultEmailBody
	}

	msg := mail.NewMsg()
	if err := msg.From(e.cfg.Address); err != nil {
		return "", errors.NewBuilder(errors.CodeNotConfigured, "invalid sender address").Config().Wrap(err).Build()
	}
	if err := msg.To(to); err != nil {
		return "", errors.NewBuilder(errors.CodeInvalidContact, fmt.Sprintf("Invalid email address: %s", to)).User().Wrap(err).Build()
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	e.logger.Info("sending email", zap.String("to", to), zap.String("server", e.cfg.SMTPServer))
	if err := e.deliver(ctx, e.cfg, msg); err != nil {
		return "", errors.BackendFailure(err, "failed to send email")
	}
	return fmt.Sprintf("Email sent to %s", to), nil
}

func dialAndSend(ctx context.Context, cfg EmailConfig, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Address),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(smtpTimeout),
	}
	if cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.SMTPServer, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
