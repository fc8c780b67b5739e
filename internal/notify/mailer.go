package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/zetsuserv/support-portal/internal/config"
)

// AutoReplyMarker prefixes every AI-generated message delivered directly to a
// requester, so recipients can tell it apart from a human reply.
const AutoReplyMarker = "[ZetsuServ AI Assistant]"

// ErrMailerNotConfigured is returned when SMTP settings are missing. Callers
// treat it as a delivery failure, matching the portal's behavior of skipping
// sends without credentials.
var ErrMailerNotConfigured = errors.New("smtp not configured")

// Sender delivers a message to one recipient and reports the immediate
// outcome. Best-effort: no delivery guarantee beyond the returned error.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer is the SMTP-backed Sender.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewMailer builds the mailer. When Host or From is empty the mailer stays in
// unconfigured mode and every Send fails with ErrMailerNotConfigured.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	m := &Mailer{from: cfg.From, logger: logger}
	if cfg.Host == "" || cfg.From == "" {
		logger.Warn("SMTP not configured; outbound email disabled")
		return m
	}
	m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return m
}

// Send delivers one HTML email.
func (m *Mailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.dialer == nil {
		return ErrMailerNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Warn("email send failed", zap.String("to", to), zap.Error(err))
		return err
	}
	m.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
