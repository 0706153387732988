package query

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
)

type GetStatus struct {
	uowFactory *dbs.UOWFactory
}

func NewGetStatus(factory *dbs.UOWFactory) *GetStatus {
	return &GetStatus{uowFactory: factory}
}

// Query reports where a submission is in its lifecycle, with the website
// sub-status once one exists.
func (c *GetStatus) Query(ctx context.Context, submissionID uuid.UUID) (*dto.StatusResponse, error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	sub, err := repo.NewSubmissionRepo(tx).GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "submission", ID: submissionID.String()}
		}
		return nil, err
	}

	resp := &dto.StatusResponse{
		SubmissionID:     sub.ID.String(),
		SubmissionStatus: sub.Status,
	}

	website, err := repo.NewWebsiteRepo(tx).GetBySubmissionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return resp, nil
		}
		return nil, err
	}

	resp.WebsiteID = website.ID.String()
	resp.WebsiteStatus = website.Status
	resp.PaymentStatus = website.PaymentStatus
	if website.DeploymentURL != nil {
		resp.DeploymentURL = *website.DeploymentURL
	}
	return resp, nil
}
