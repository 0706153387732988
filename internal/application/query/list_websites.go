package query

import (
	"context"

	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
)

type ListWebsites struct {
	uowFactory *dbs.UOWFactory
}

func NewListWebsites(factory *dbs.UOWFactory) *ListWebsites {
	return &ListWebsites{uowFactory: factory}
}

func (c *ListWebsites) Query(ctx context.Context) ([]dto.WebsiteSummary, error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	rows, err := repo.NewWebsiteRepo(tx).ListSummaries(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.WebsiteSummary, 0, len(rows))
	for _, row := range rows {
		summary := dto.WebsiteSummary{
			WebsiteID:       row.ID.String(),
			SubmissionID:    row.SubmissionID.String(),
			BusinessName:    row.BusinessName,
			Status:          row.Status,
			PaymentStatus:   row.PaymentStatus,
			PublishApproved: row.PublishApproved,
			PreviewURL:      row.PreviewURL,
		}
		if row.DeploymentURL != nil {
			summary.DeploymentURL = *row.DeploymentURL
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

type AdminStats struct {
	uowFactory *dbs.UOWFactory
}

func NewAdminStats(factory *dbs.UOWFactory) *AdminStats {
	return &AdminStats{uowFactory: factory}
}

func (c *AdminStats) Query(ctx context.Context) (*dto.AdminStatsResponse, error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	submissionCounts, err := repo.NewSubmissionRepo(tx).CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	websiteRepo := repo.NewWebsiteRepo(tx)
	websiteCounts, err := websiteRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := websiteRepo.CountPaid(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminStatsResponse{
		Submissions: submissionCounts,
		Websites:    websiteCounts,
		Published:   websiteCounts[string(consts.WebsiteStatusPublished)],
		Paid:        paid,
	}, nil
}
