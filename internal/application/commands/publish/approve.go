package publish

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
)

// ApproveWebsite records an operator's approval. Approval only flips the
// gate; the customer still has to publish.
type ApproveWebsite struct {
	uowFactory *dbs.UOWFactory
}

func NewApproveWebsite(factory *dbs.UOWFactory) *ApproveWebsite {
	return &ApproveWebsite{uowFactory: factory}
}

func (c *ApproveWebsite) Execute(ctx context.Context, websiteID uuid.UUID, approver string) (*dto.PublishResponse, error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	websiteRepo := repo.NewWebsiteRepo(tx)

	website, err := websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "website", ID: websiteID.String()}
		}
		return nil, err
	}

	if website.Status == consts.WebsiteStatusPublished {
		return &dto.PublishResponse{
			Status:        website.Status,
			AlreadyDone:   true,
			DeploymentURL: derefString(website.DeploymentURL),
		}, nil
	}
	if website.PublishApproved {
		return &dto.PublishResponse{Status: website.Status, AlreadyDone: true}, nil
	}

	if err = websiteRepo.Approve(ctx, websiteID, approver, time.Now()); err != nil {
		return nil, err
	}

	slog.Info("website approved for publishing", "websiteID", websiteID, "approver", approver)
	return &dto.PublishResponse{Status: consts.WebsiteStatusReady}, nil
}
