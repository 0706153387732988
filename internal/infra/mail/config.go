package mail

import (
	"os"

	"github.com/sitehatch/sitehatch-backend/pkg/env"
)

type MailConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
}

func NewMailConfig() *MailConfig {
	cfg := &MailConfig{
		SMTPHost: os.Getenv("MAIL_HOST"),
		SMTPPort: env.GetEnv("MAIL_PORT", "587"),
		Username: os.Getenv("MAIL_USERNAME"),
		Password: os.Getenv("MAIL_PASSWORD"),
		From:     os.Getenv("MAIL_FROM"),
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return cfg
}

// Enabled reports whether an SMTP host is configured. Without one the server
// logs deliveries instead of sending them.
func (c *MailConfig) Enabled() bool {
	return c.SMTPHost != ""
}
