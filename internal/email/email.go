package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/savethebee/honeyweb/internal/config"
)

// Message is one outbound email. HTML is the only body format we send.
type Message struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Sender delivers a message through some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipients = errors.New("email: message has no recipients")

// LogSender writes the message to the log instead of delivering it.
type LogSender struct {
	From string
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	slog.Info("==========================================")
	slog.Info("📧 EMAIL SENT TO: " + strings.Join(msg.To, ", "))
	slog.Info("Subject: " + msg.Subject)
	slog.Debug("Body", "from", s.From, "html", msg.HTML)
	slog.Info("==========================================")
	return nil
}

// NewSender builds the transport selected by MAIL_PROVIDER.
func NewSender(cfg *config.Config) (Sender, error) {
	switch cfg.MailProvider {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("MAIL_PROVIDER=smtp requires SMTP_HOST")
		}
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("MAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
		return NewResendSender(cfg.ResendAPIKey, cfg.MailFrom), nil
	default:
		return LogSender{From: cfg.MailFrom}, nil
	}
}
