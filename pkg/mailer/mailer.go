package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/flamingo-app/flamingo-server/config"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"go.uber.org/zap"
)

// Mailer delivers account emails. Delivery failure policy belongs to the
// caller; implementations only report the error.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	clientURL string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:      cfg.Mail.Host,
		port:      cfg.Mail.Port,
		username:  cfg.Mail.Username,
		password:  cfg.Mail.Password,
		from:      cfg.Mail.From,
		clientURL: cfg.App.ClientURL,
	}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	verificationURL := fmt.Sprintf("%s/auth/verify?token=%s", m.clientURL, token)

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Verify your Flamingo account\r\n"+
			"MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n"+
			"<h1>Welcome to Flamingo!</h1>"+
			"<p>Click the link below to verify your email address.</p>"+
			"<p><a href=%q>Verify email</a></p>"+
			"<p>Or paste this link into your browser: %s</p>",
		m.from, to, verificationURL, verificationURL,
	)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	logger.GetLogger().Info("Verification email sent",
		zap.String("to", to))

	return nil
}

// LogMailer writes the verification link to the log instead of sending mail.
// Used in development when no SMTP relay is available.
type LogMailer struct {
	clientURL string
}

func NewLogMailer(clientURL string) *LogMailer {
	return &LogMailer{clientURL: clientURL}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	logger.GetLogger().Info("Verification email (log only)",
		zap.String("to", to),
		zap.String("url", fmt.Sprintf("%s/auth/verify?token=%s", m.clientURL, token)))
	return nil
}
