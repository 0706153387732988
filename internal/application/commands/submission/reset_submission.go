package submission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
)

type ResetSubmission struct {
	uowFactory *dbs.UOWFactory
}

func NewResetSubmission(factory *dbs.UOWFactory) *ResetSubmission {
	return &ResetSubmission{uowFactory: factory}
}

// Execute reverts a stuck Generating submission to Pending. Generation is
// deliberately non-self-healing, this is the operator escape hatch.
func (c *ResetSubmission) Execute(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	submissionRepo := repo.NewSubmissionRepo(tx)
	sub, err := submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NotFoundError{Entity: "submission", ID: id.String()}
		}
		return err
	}

	switch sub.Status {
	case consts.SubmissionStatusPending:
		// already where a reset would put it
		return nil
	case consts.SubmissionStatusGenerated:
		err = errs.InvalidInputError{Msg: "submission is already generated"}
		return err
	}

	slog.Info("resetting stuck submission", "submissionID", id)
	err = submissionRepo.UpdateStatus(ctx, id, consts.SubmissionStatusPending)
	return err
}
