package application

import (
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/auth"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/debug"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/generate"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/payment"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/publish"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/sendmail"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/submission"
	"github.com/sitehatch/sitehatch-backend/internal/application/query"
)

// Collection bundles every command and query the REST layer dispatches to.
type Collection struct {
	*submission.CreateSubmission
	*submission.ResetSubmission
	*generate.Generate
	*publish.Publish
	*publish.ApproveWebsite
	*payment.Payment
	*auth.Login
	*debug.Debug
	*query.GetStatus
	*query.GetPreview
	*query.ListWebsites
	*query.AdminStats
}

// Processors are the outbox event handlers the poller dispatches to.
type Processors struct {
	SendMail *sendmail.SendMail
}
