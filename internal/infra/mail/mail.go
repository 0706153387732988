package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type MailServer struct {
	cfg  *MailConfig
	auth smtp.Auth
}

func NewMailServer(cfg *MailConfig) *MailServer {
	return &MailServer{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost),
	}
}

// SendMail delivers an html body over SMTP. With no host configured the
// delivery is logged and dropped, so local environments never need a relay.
func (m *MailServer) SendMail(to []string, subject, body string) error {
	if !m.cfg.Enabled() {
		slog.Info("mail transport disabled, dropping message", "to", to, "subject", subject)
		return nil
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ",") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n" + body)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	if err := smtp.SendMail(addr, m.auth, m.cfg.From, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
