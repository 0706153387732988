package sendmail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/sitehatch/sitehatch-backend/internal/application/events"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
	"github.com/sitehatch/sitehatch-backend/internal/infra/mail"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	shared "github.com/sitehatch/sitehatch-backend/pkg/interfaces"
)

// SendMail delivers queued outbox mail. Customer mail resolves the recipient
// from the user row; sales mail goes to the configured operator address.
type SendMail struct {
	server     *mail.MailServer
	uowFactory *dbs.UOWFactory
	cfg        *config.AppConfig
}

func NewSendMail(server *mail.MailServer, uowFactory *dbs.UOWFactory, cfg *config.AppConfig) *SendMail {
	return &SendMail{server: server, uowFactory: uowFactory, cfg: cfg}
}

func (c *SendMail) Handle(ctx context.Context, event events.SendMail) (shared.UoW, error) {
	mailData, err := mapToMailData(event.Subject, event.Data)
	if err != nil {
		return nil, err
	}
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	var email string
	err = tx.QueryRow(ctx, "SELECT email FROM hatch.users WHERE id = $1", event.UserID).Scan(&email)
	if err != nil {
		return uow, fmt.Errorf("err finding recipient, %v", err)
	}

	return uow, c.deliver(ctx, uow, mailData, []string{email})
}

func (c *SendMail) HandleSales(ctx context.Context, event events.SalesMail) (shared.UoW, error) {
	mailData, err := mapToMailData(event.Subject, event.Data)
	if err != nil {
		return nil, err
	}
	if c.cfg.SalesEmail == "" {
		return nil, fmt.Errorf("no sales address configured")
	}
	uow := c.uowFactory.GetUoW()
	if _, err := uow.Begin(); err != nil {
		return nil, err
	}

	return uow, c.deliver(ctx, uow, mailData, []string{c.cfg.SalesEmail})
}

func (c *SendMail) deliver(ctx context.Context, uow shared.UoW, mailData mail.MailData, recipients []string) error {
	htmlBody, err := renderHTML(mailData.GetTemplate(), mailData)
	if err != nil {
		return fmt.Errorf("error rendering html, %v", err)
	}

	record := db.Mail{
		MailType:   string(mailData.GetMailType()),
		Recipients: strings.Join(recipients, ","),
		Subject:    mailData.GetSubject(),
		Content:    htmlBody,
		SentAt:     time.Now(),
	}
	_, err = uow.GetTx().Exec(ctx, "INSERT INTO hatch.mails(type, recipients, subject, content, sent_at) VALUES ($1,$2,$3,$4,$5)",
		record.MailType, record.Recipients, record.Subject, record.Content, record.SentAt,
	)
	if err != nil {
		return err
	}

	return c.server.SendMail(recipients, record.Subject, record.Content)
}

func renderHTML(tmpl string, data mail.MailData) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func mapToMailData(subject string, data any) (mail.MailData, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error mapping to mailData, %v", err)
	}

	switch subject {
	case mail.CredentialsIssuedData{}.GetSubject():
		var credentials mail.CredentialsIssuedData
		if err := json.Unmarshal(raw, &credentials); err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
		credentials.Year = currentYear()
		return credentials, nil
	case mail.PublishRequestedData{}.GetSubject():
		var requested mail.PublishRequestedData
		if err := json.Unmarshal(raw, &requested); err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
		requested.Year = currentYear()
		return requested, nil
	case mail.SitePublishedData{}.GetSubject():
		var published mail.SitePublishedData
		if err := json.Unmarshal(raw, &published); err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
		published.Year = currentYear()
		return published, nil
	}

	return nil, fmt.Errorf("no such mailData type exists")
}

func currentYear() string {
	return strconv.Itoa(time.Now().Year())
}
