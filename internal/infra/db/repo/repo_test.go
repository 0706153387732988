package repo_test

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
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

func insertSubmission(t *testing.T, tx pgx.Tx, status consts.SubmissionStatus) uuid.UUID {
	t.Helper()
	sub := db.Submission{
		ID:        uuid.New(),
		Status:    status,
		Fields:    json.RawMessage(`{"businessName":"Acme Plumbing","email":"owner@acme.test"}`),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.NewSubmissionRepo(tx).Insert(context.Background(), sub))
	return sub.ID
}

func insertUser(t *testing.T, tx pgx.Tx) uuid.UUID {
	t.Helper()
	user, created, err := repo.NewUserRepo(tx).FindOrCreateUser(
		context.Background(), uuid.NewString()+"@acme.test", "user-"+uuid.NewString()[:8], "$2a$10$hash")
	require.NoError(t, err)
	require.True(t, created)
	return user.ID
}

func insertWebsite(t *testing.T, tx pgx.Tx, submissionID, userID uuid.UUID) uuid.UUID {
	t.Helper()
	website := db.Website{
		ID:             uuid.New(),
		SubmissionID:   submissionID,
		UserID:         userID,
		Status:         consts.WebsiteStatusReady,
		PaymentStatus:  consts.PaymentStatusPending,
		ColorPrimary:   "#1F2937",
		ColorSecondary: "#3B82F6",
		ColorAccent:    "#F59E0B",
		PreviewURL:     "http://localhost:8080/preview/" + submissionID.String(),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, repo.NewWebsiteRepo(tx).Insert(context.Background(), website))
	return website.ID
}

func TestSubmissionStatusRoundTrip(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	ctx := context.Background()
	subID := insertSubmission(t, tx, consts.SubmissionStatusPending)

	submissionRepo := repo.NewSubmissionRepo(tx)
	require.NoError(t, submissionRepo.UpdateStatus(ctx, subID, consts.SubmissionStatusGenerating))

	sub, err := submissionRepo.GetByID(ctx, subID)
	require.NoError(t, err)
	require.Equal(t, consts.SubmissionStatusGenerating, sub.Status)
	require.Nil(t, sub.StagedUsername)
}

func TestStageAndClearCredentials(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	ctx := context.Background()
	subID := insertSubmission(t, tx, consts.SubmissionStatusGenerating)

	submissionRepo := repo.NewSubmissionRepo(tx)
	require.NoError(t, submissionRepo.StageCredentials(ctx, subID, "acme-plumbing", "s3cret"))

	sub, err := submissionRepo.GetByID(ctx, subID)
	require.NoError(t, err)
	require.NotNil(t, sub.StagedUsername)
	require.Equal(t, "acme-plumbing", *sub.StagedUsername)

	require.NoError(t, submissionRepo.ClearStagedCredentials(ctx, subID))
	sub, err = submissionRepo.GetByID(ctx, subID)
	require.NoError(t, err)
	require.Nil(t, sub.StagedUsername)
	require.Nil(t, sub.StagedPassword)
}

func TestDuplicateWebsiteForSubmissionRejected(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	ctx := context.Background()
	subID := insertSubmission(t, tx, consts.SubmissionStatusGenerated)
	userID := insertUser(t, tx)
	insertWebsite(t, tx, subID, userID)

	duplicate := db.Website{
		ID:             uuid.New(),
		SubmissionID:   subID,
		UserID:         userID,
		Status:         consts.WebsiteStatusReady,
		PaymentStatus:  consts.PaymentStatusPending,
		ColorPrimary:   "#111",
		ColorSecondary: "#222",
		ColorAccent:    "#333",
		PreviewURL:     "http://localhost:8080/preview/" + subID.String(),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	err = repo.NewWebsiteRepo(tx).Insert(ctx, duplicate)
	require.ErrorIs(t, err, repo.ErrDuplicateWebsite)
}

func TestApproveThenPublishLifecycle(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	ctx := context.Background()
	subID := insertSubmission(t, tx, consts.SubmissionStatusGenerated)
	userID := insertUser(t, tx)
	websiteID := insertWebsite(t, tx, subID, userID)

	websiteRepo := repo.NewWebsiteRepo(tx)

	requestedAt := time.Now()
	require.NoError(t, websiteRepo.SetPendingApproval(ctx, websiteID, requestedAt))
	website, err := websiteRepo.GetByID(ctx, websiteID)
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusPendingApproval, website.Status)
	require.False(t, website.PublishApproved)

	require.NoError(t, websiteRepo.Approve(ctx, websiteID, "ops@sitehatch.io", time.Now()))
	website, err = websiteRepo.GetByID(ctx, websiteID)
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusReady, website.Status)
	require.True(t, website.PublishApproved)
	require.NotNil(t, website.ApprovedBy)

	require.NoError(t, websiteRepo.MarkPublished(ctx, websiteID, "https://acme.netlify.app", "netlify", time.Now()))
	website, err = websiteRepo.GetByID(ctx, websiteID)
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusPublished, website.Status)
	require.NotNil(t, website.DeploymentURL)
	require.Equal(t, "https://acme.netlify.app", *website.DeploymentURL)
	require.NotNil(t, website.DeployedAt)
}

func TestMarkPaidGrantsApproval(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	ctx := context.Background()
	subID := insertSubmission(t, tx, consts.SubmissionStatusGenerated)
	userID := insertUser(t, tx)
	websiteID := insertWebsite(t, tx, subID, userID)

	websiteRepo := repo.NewWebsiteRepo(tx)
	require.NoError(t, websiteRepo.SetPaymentSession(ctx, websiteID, "cs_test_123", 19900))
	require.NoError(t, websiteRepo.MarkPaid(ctx, websiteID, time.Now()))

	website, err := websiteRepo.GetByPaymentSession(ctx, "cs_test_123")
	require.NoError(t, err)
	require.Equal(t, websiteID, website.ID)
	require.Equal(t, consts.PaymentStatusPaid, website.PaymentStatus)
	require.True(t, website.PublishApproved)
	require.NotNil(t, website.ApprovedBy)
	require.Equal(t, "payment", *website.ApprovedBy)
}

func TestFindOrCreateUserKeepsExistingUsername(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	ctx := context.Background()
	userRepo := repo.NewUserRepo(tx)

	first, created, err := userRepo.FindOrCreateUser(ctx, "repeat@acme.test", "acme", "hash-one")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := userRepo.FindOrCreateUser(ctx, "repeat@acme.test", "acme-other", "hash-two")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "acme", second.Username)
	require.Equal(t, "hash-one", second.PasswordHash)
}

func TestListSummariesJoinsBusinessName(t *testing.T) {
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	ctx := context.Background()
	subID := insertSubmission(t, tx, consts.SubmissionStatusGenerated)
	userID := insertUser(t, tx)
	websiteID := insertWebsite(t, tx, subID, userID)

	summaries, err := repo.NewWebsiteRepo(tx).ListSummaries(ctx)
	require.NoError(t, err)

	var found bool
	for _, s := range summaries {
		if s.ID == websiteID {
			found = true
			require.Equal(t, "Acme Plumbing", s.BusinessName)
			require.Equal(t, subID, s.SubmissionID)
		}
	}
	require.True(t, found)
}

func cleanup(ctx context.Context) {
	_, err := testinfra.Pool.Exec(ctx, "DELETE FROM hatch.websites; DELETE FROM hatch.submissions; DELETE FROM hatch.users; DELETE FROM hatch.outbox")
	if err != nil {
		log.Panicf("err cleaning up repo test %v", err)
	}
}
