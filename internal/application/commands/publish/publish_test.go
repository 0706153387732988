package publish_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitehatch/sitehatch-backend/internal/application/commands/publish"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	"github.com/sitehatch/sitehatch-backend/internal/testinfra"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	"github.com/stretchr/testify/require"
)

var uowFactory *dbs.UOWFactory
var appConfig *config.AppConfig

func TestMain(m *testing.M) {
	ctx := context.Background()

	uowFactory = dbs.NewUoWFactory(testinfra.Pool)
	appConfig = config.NewAppConfig()
	code := m.Run()

	cleanup(ctx)

	os.Exit(code)
}

type fakeStore struct {
	mu    sync.Mutex
	files map[string]map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string]map[string][]byte)}
}

func (f *fakeStore) UploadArtifacts(ctx context.Context, submissionID string, files map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[submissionID] = files
	return nil
}

func (f *fakeStore) GetArtifact(ctx context.Context, submissionID, filename string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[submissionID][filename]
	if !ok {
		return nil, fmt.Errorf("no such artifact %v/%v", submissionID, filename)
	}
	return content, nil
}

func (f *fakeStore) ListArtifacts(ctx context.Context, submissionID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.files[submissionID] {
		names = append(names, name)
	}
	return names, nil
}

type fakeDeployer struct {
	err   error
	calls int
	names []string
}

func (f *fakeDeployer) Deploy(ctx context.Context, siteName string, files map[string][]byte) (string, error) {
	f.calls++
	f.names = append(f.names, siteName)
	if f.err != nil {
		return "", f.err
	}
	return "https://" + siteName + ".netlify.app", nil
}

func (f *fakeDeployer) Provider() string {
	return "netlify"
}

type seeded struct {
	submissionID uuid.UUID
	websiteID    uuid.UUID
	userID       uuid.UUID
}

func seedWebsite(t *testing.T, email string) seeded {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)

	ctx := context.Background()
	sub := db.Submission{
		ID:        uuid.New(),
		Status:    consts.SubmissionStatusGenerated,
		Fields:    json.RawMessage(`{"businessName":"Acme Plumbing","email":"` + email + `"}`),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.NewSubmissionRepo(tx).Insert(ctx, sub))

	user, _, err := repo.NewUserRepo(tx).FindOrCreateUser(ctx, email, "user-"+uuid.NewString()[:8], "$2a$10$hash")
	require.NoError(t, err)

	website := db.Website{
		ID:             uuid.New(),
		SubmissionID:   sub.ID,
		UserID:         user.ID,
		Status:         consts.WebsiteStatusReady,
		PaymentStatus:  consts.PaymentStatusPending,
		ColorPrimary:   "#111",
		ColorSecondary: "#222",
		ColorAccent:    "#333",
		PreviewURL:     "http://localhost:8080/preview/" + sub.ID.String(),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, repo.NewWebsiteRepo(tx).Insert(ctx, website))
	require.NoError(t, uow.Commit())

	return seeded{submissionID: sub.ID, websiteID: website.ID, userID: user.ID}
}

func approve(t *testing.T, websiteID uuid.UUID) {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.NewWebsiteRepo(tx).Approve(context.Background(), websiteID, "ops@sitehatch.io", time.Now()))
	require.NoError(t, uow.Commit())
}

func uploadArtifacts(t *testing.T, store *fakeStore, submissionID uuid.UUID) {
	t.Helper()
	files := make(map[string][]byte)
	for _, name := range consts.ArtifactFiles {
		files[name] = []byte("content of " + name)
	}
	require.NoError(t, store.UploadArtifacts(context.Background(), submissionID.String(), files))
}

func TestPublishParksUnapprovedWebsite(t *testing.T) {
	ctx := context.Background()
	s := seedWebsite(t, "park@acme.test")
	deployer := &fakeDeployer{}

	cmd := publish.NewPublish(appConfig, uowFactory, newFakeStore(), deployer)
	resp, err := cmd.Execute(ctx, s.websiteID, &auth.Identity{UserID: s.userID})
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusPendingApproval, resp.Status)
	require.Empty(t, resp.DeploymentURL)
	require.Zero(t, deployer.calls, "no deploy without approval")

	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	website, err := repo.NewWebsiteRepo(tx).GetByID(ctx, s.websiteID)
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusPendingApproval, website.Status)
	require.NotNil(t, website.PublishRequestedAt)
	require.False(t, website.PublishApproved, "a publish request never grants approval")

	var outboxCount int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM hatch.outbox WHERE event = 'SalesMail' AND payload->'data'->>'WebsiteID' = $1`,
		s.websiteID.String()).Scan(&outboxCount)
	require.NoError(t, err)
	require.Equal(t, 1, outboxCount)
}

func TestPublishDeploysApprovedWebsite(t *testing.T) {
	ctx := context.Background()
	s := seedWebsite(t, "deploy@acme.test")
	approve(t, s.websiteID)

	store := newFakeStore()
	uploadArtifacts(t, store, s.submissionID)
	deployer := &fakeDeployer{}

	cmd := publish.NewPublish(appConfig, uowFactory, store, deployer)
	resp, err := cmd.Execute(ctx, s.websiteID, &auth.Identity{UserID: s.userID})
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusPublished, resp.Status)
	require.NotEmpty(t, resp.DeploymentURL)
	require.Equal(t, 1, deployer.calls)
	require.Contains(t, deployer.names[0], "acme-plumbing")

	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	website, err := repo.NewWebsiteRepo(tx).GetByID(ctx, s.websiteID)
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusPublished, website.Status)
	require.NotNil(t, website.DeploymentProvider)
	require.Equal(t, "netlify", *website.DeploymentProvider)

	var outboxCount int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM hatch.outbox WHERE event = 'SendMail' AND payload->>'userID' = $1`,
		s.userID.String()).Scan(&outboxCount)
	require.NoError(t, err)
	require.Equal(t, 1, outboxCount)
}

func TestPublishIdempotentOncePublished(t *testing.T) {
	ctx := context.Background()
	s := seedWebsite(t, "again@acme.test")
	approve(t, s.websiteID)

	store := newFakeStore()
	uploadArtifacts(t, store, s.submissionID)
	deployer := &fakeDeployer{}

	cmd := publish.NewPublish(appConfig, uowFactory, store, deployer)
	first, err := cmd.Execute(ctx, s.websiteID, &auth.Identity{UserID: s.userID})
	require.NoError(t, err)

	second, err := cmd.Execute(ctx, s.websiteID, &auth.Identity{UserID: s.userID})
	require.NoError(t, err)
	require.True(t, second.AlreadyDone)
	require.Equal(t, first.DeploymentURL, second.DeploymentURL)
	require.Equal(t, 1, deployer.calls, "no second deploy")
}

func TestPublishMissingArtifactsIsPrecondition(t *testing.T) {
	ctx := context.Background()
	s := seedWebsite(t, "noartifacts@acme.test")
	approve(t, s.websiteID)
	deployer := &fakeDeployer{}

	cmd := publish.NewPublish(appConfig, uowFactory, newFakeStore(), deployer)
	_, err := cmd.Execute(ctx, s.websiteID, &auth.Identity{UserID: s.userID})

	var precondition errs.PreconditionError
	require.ErrorAs(t, err, &precondition)
	require.Zero(t, deployer.calls)
}

func TestPublishDeployFailureIsUpstream(t *testing.T) {
	ctx := context.Background()
	s := seedWebsite(t, "deployfail@acme.test")
	approve(t, s.websiteID)

	store := newFakeStore()
	uploadArtifacts(t, store, s.submissionID)

	cmd := publish.NewPublish(appConfig, uowFactory, store, &fakeDeployer{err: errors.New("api down")})
	_, err := cmd.Execute(ctx, s.websiteID, &auth.Identity{UserID: s.userID})

	var upstream errs.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, "deployment", upstream.Collaborator)

	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	defer uow.Rollback()

	website, err := repo.NewWebsiteRepo(tx).GetByID(ctx, s.websiteID)
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusReady, website.Status, "failed deploy leaves the website untouched")
}

func TestPublishRejectsForeignOwner(t *testing.T) {
	ctx := context.Background()
	s := seedWebsite(t, "owner@acme.test")

	cmd := publish.NewPublish(appConfig, uowFactory, newFakeStore(), &fakeDeployer{})
	_, err := cmd.Execute(ctx, s.websiteID, &auth.Identity{UserID: uuid.New()})

	var unauthorized errs.UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
}

func TestApproveWebsiteFlipsGateOnce(t *testing.T) {
	ctx := context.Background()
	s := seedWebsite(t, "approve@acme.test")

	cmd := publish.NewApproveWebsite(uowFactory)
	resp, err := cmd.Execute(ctx, s.websiteID, "ops@sitehatch.io")
	require.NoError(t, err)
	require.Equal(t, consts.WebsiteStatusReady, resp.Status)
	require.False(t, resp.AlreadyDone)

	resp, err = cmd.Execute(ctx, s.websiteID, "ops@sitehatch.io")
	require.NoError(t, err)
	require.True(t, resp.AlreadyDone)
}

func TestApproveUnknownWebsite(t *testing.T) {
	cmd := publish.NewApproveWebsite(uowFactory)
	_, err := cmd.Execute(context.Background(), uuid.New(), "ops@sitehatch.io")

	var notFound errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func cleanup(ctx context.Context) {
	_, err := testinfra.Pool.Exec(ctx,
		"DELETE FROM hatch.outbox; DELETE FROM hatch.websites; DELETE FROM hatch.submissions; DELETE FROM hatch.users")
	if err != nil {
		log.Panicf("err cleaning up publish test %v", err)
	}
}
