package submission_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/submission"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	"github.com/sitehatch/sitehatch-backend/internal/testinfra"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	"github.com/stretchr/testify/require"
)

var uowFactory *dbs.UOWFactory

func TestMain(m *testing.M) {
	ctx := context.Background()

	uowFactory = dbs.NewUoWFactory(testinfra.Pool)
	code := m.Run()

	cleanup(ctx)

	os.Exit(code)
}

func TestCreateSubmissionSanitizesFields(t *testing.T) {
	ctx := context.Background()
	cmd := submission.NewCreateSubmission(uowFactory)

	subID, err := cmd.Execute(ctx, &dto.CreateSubmissionRequest{
		BusinessName: `Acme <script>alert(1)</script>Plumbing`,
		About:        `<p onclick="x()">Reliable <b>pipes</b></p>`,
		Email:        "owner@acme.test",
		LogoURL:      "javascript:alert(1)",
		HeroImageURL: "acme.test/hero.png",
		SocialLinks:  map[string]string{"facebook": "facebook.com/acme", "badsite": "https://x.test"},
	})
	require.NoError(t, err)

	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	sub, err := repo.NewSubmissionRepo(tx).GetByID(ctx, subID)
	require.NoError(t, err)
	require.Equal(t, consts.SubmissionStatusPending, sub.Status)

	fields := db.MapSubmissionFields(*sub)
	require.Equal(t, "Acme Plumbing", fields.BusinessName)
	require.Equal(t, "<p>Reliable <b>pipes</b></p>", fields.About)
	require.Empty(t, fields.LogoURL, "javascript scheme collapses to empty")
	require.Equal(t, "https://acme.test/hero.png", fields.HeroImageURL)
	require.Equal(t, map[string]string{"facebook": "https://facebook.com/acme"}, fields.SocialLinks)
}

func TestCreateSubmissionRequiresNameAndEmail(t *testing.T) {
	cmd := submission.NewCreateSubmission(uowFactory)

	_, err := cmd.Execute(context.Background(), &dto.CreateSubmissionRequest{Email: "a@b.test"})
	var invalid errs.InvalidInputError
	require.ErrorAs(t, err, &invalid)

	_, err = cmd.Execute(context.Background(), &dto.CreateSubmissionRequest{
		BusinessName: "<script>only markup</script>",
		Email:        "a@b.test",
	})
	require.ErrorAs(t, err, &invalid, "name that sanitizes to empty is rejected")

	_, err = cmd.Execute(context.Background(), &dto.CreateSubmissionRequest{BusinessName: "Acme"})
	require.ErrorAs(t, err, &invalid)
}

func TestResetRevertsOnlyGenerating(t *testing.T) {
	ctx := context.Background()
	createCmd := submission.NewCreateSubmission(uowFactory)
	resetCmd := submission.NewResetSubmission(uowFactory)

	subID, err := createCmd.Execute(ctx, &dto.CreateSubmissionRequest{
		BusinessName: "Acme", Email: "reset@acme.test",
	})
	require.NoError(t, err)

	// Pending reset is a no-op
	require.NoError(t, resetCmd.Execute(ctx, subID))

	setStatus(t, subID, consts.SubmissionStatusGenerating)
	require.NoError(t, resetCmd.Execute(ctx, subID))
	require.Equal(t, consts.SubmissionStatusPending, getStatus(t, subID))

	setStatus(t, subID, consts.SubmissionStatusGenerated)
	err = resetCmd.Execute(ctx, subID)
	var invalid errs.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestResetUnknownSubmission(t *testing.T) {
	err := submission.NewResetSubmission(uowFactory).Execute(context.Background(), uuid.New())

	var notFound errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func setStatus(t *testing.T, id uuid.UUID, status consts.SubmissionStatus) {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.NewSubmissionRepo(tx).UpdateStatus(context.Background(), id, status))
	require.NoError(t, uow.Commit())
}

func getStatus(t *testing.T, id uuid.UUID) consts.SubmissionStatus {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()
	sub, err := repo.NewSubmissionRepo(tx).GetByID(context.Background(), id)
	require.NoError(t, err)
	return sub.Status
}

func cleanup(ctx context.Context) {
	_, err := testinfra.Pool.Exec(ctx, "DELETE FROM hatch.submissions")
	if err != nil {
		log.Panicf("err cleaning up submission test %v", err)
	}
}
