package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/application/events"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
	"github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	"github.com/sitehatch/sitehatch-backend/internal/infra/mail"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
)

// Publish is the gate in front of deployment. A request either proceeds to
// the hosting provider or parks the website pending human or payment
// approval; the request itself can never grant approval.
type Publish struct {
	cfg        *config.AppConfig
	uowFactory *dbs.UOWFactory
	artifacts  interfaces.ArtifactStore
	deployer   interfaces.Deployer
}

func NewPublish(
	cfg *config.AppConfig, factory *dbs.UOWFactory,
	artifacts interfaces.ArtifactStore, deployer interfaces.Deployer,
) *Publish {
	return &Publish{
		cfg:        cfg,
		uowFactory: factory,
		artifacts:  artifacts,
		deployer:   deployer,
	}
}

func (c *Publish) Execute(ctx context.Context, websiteID uuid.UUID, identity *auth.Identity) (*dto.PublishResponse, error) {
	website, businessName, err := c.loadWebsite(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if identity != nil && website.UserID != identity.UserID {
		return nil, errs.UnauthorizedError{}
	}

	if website.Status == consts.WebsiteStatusPublished {
		return &dto.PublishResponse{
			Status:        consts.WebsiteStatusPublished,
			AlreadyDone:   true,
			DeploymentURL: derefString(website.DeploymentURL),
		}, nil
	}

	if !website.PublishApproved {
		if err := c.parkForApproval(ctx, website, businessName); err != nil {
			return nil, err
		}
		return &dto.PublishResponse{Status: consts.WebsiteStatusPendingApproval}, nil
	}

	return c.deployApproved(ctx, website, businessName)
}

// DeployApproved deploys a website whose approval was already granted, used
// by payment verification for the inline deploy after a paid session.
func (c *Publish) DeployApproved(ctx context.Context, websiteID uuid.UUID) (*dto.PublishResponse, error) {
	website, businessName, err := c.loadWebsite(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if website.Status == consts.WebsiteStatusPublished {
		return &dto.PublishResponse{
			Status:        consts.WebsiteStatusPublished,
			AlreadyDone:   true,
			DeploymentURL: derefString(website.DeploymentURL),
		}, nil
	}
	if !website.PublishApproved {
		return nil, errs.PreconditionError{Msg: "website is not approved for publishing"}
	}
	return c.deployApproved(ctx, website, businessName)
}

func (c *Publish) loadWebsite(ctx context.Context, websiteID uuid.UUID) (*db.Website, string, error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, "", err
	}
	defer uow.Finalize(&err)

	website, err := repo.NewWebsiteRepo(tx).GetByID(ctx, websiteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "website", ID: websiteID.String()}
		}
		return nil, "", err
	}
	sub, err := repo.NewSubmissionRepo(tx).GetByID(ctx, website.SubmissionID)
	if err != nil {
		return nil, "", err
	}
	return website, db.MapSubmissionFields(*sub).BusinessName, nil
}

func (c *Publish) parkForApproval(ctx context.Context, website *db.Website, businessName string) error {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	requestedAt := time.Now()
	if err = repo.NewWebsiteRepo(tx).SetPendingApproval(ctx, website.ID, requestedAt); err != nil {
		return err
	}

	notifyErr := repo.NewEventRepo(tx).InsertEvent(ctx, events.SalesMail{
		Subject: mail.PublishRequestedData{}.GetSubject(),
		Data: mail.PublishRequestedData{
			BusinessName: businessName,
			WebsiteID:    website.ID.String(),
			PreviewURL:   website.PreviewURL,
			RequestedAt:  requestedAt.Format(time.RFC3339),
		},
	})
	if notifyErr != nil {
		slog.Warn("failed to queue approval notification", "websiteID", website.ID, "err", notifyErr)
	}
	return nil
}

func (c *Publish) deployApproved(ctx context.Context, website *db.Website, businessName string) (*dto.PublishResponse, error) {
	files, err := c.readArtifacts(ctx, website.SubmissionID.String())
	if err != nil {
		return nil, err
	}

	liveURL, err := c.deployer.Deploy(ctx, siteNameFor(businessName, website.ID), files)
	if err != nil {
		return nil, errs.UpstreamError{Collaborator: "deployment", Err: err}
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	if err = repo.NewWebsiteRepo(tx).MarkPublished(ctx, website.ID, liveURL, c.deployer.Provider(), time.Now()); err != nil {
		return nil, err
	}

	notifyErr := repo.NewEventRepo(tx).InsertEvent(ctx, events.SendMail{
		UserID:  website.UserID.String(),
		Subject: mail.SitePublishedData{}.GetSubject(),
		Data: mail.SitePublishedData{
			BusinessName:  businessName,
			DeploymentURL: liveURL,
		},
	})
	if notifyErr != nil {
		slog.Warn("failed to queue published notification", "websiteID", website.ID, "err", notifyErr)
	}

	slog.Info("website published", "websiteID", website.ID, "url", liveURL)
	return &dto.PublishResponse{
		Status:        consts.WebsiteStatusPublished,
		DeploymentURL: liveURL,
	}, nil
}

// readArtifacts requires the full fixed file set; anything missing is a
// precondition failure, not a deployment error.
func (c *Publish) readArtifacts(ctx context.Context, submissionID string) (map[string][]byte, error) {
	files := make(map[string][]byte, len(consts.ArtifactFiles))
	for _, name := range consts.ArtifactFiles {
		content, err := c.artifacts.GetArtifact(ctx, submissionID, name)
		if err != nil {
			return nil, errs.PreconditionError{Msg: fmt.Sprintf("stored artifact %v is missing", name)}
		}
		files[name] = content
	}
	return files, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func siteNameFor(businessName string, websiteID uuid.UUID) string {
	slug := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(businessName), "-"), "-")
	if len(slug) > 32 {
		slug = strings.Trim(slug[:32], "-")
	}
	if slug == "" {
		slug = "site"
	}
	return slug + "-" + websiteID.String()[:8]
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
