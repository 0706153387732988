package generate

import (
	"context"
	"crypto/rand"
	"encoding/base64"
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
	"github.com/sitehatch/sitehatch-backend/internal/infra/client/colors"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	"github.com/sitehatch/sitehatch-backend/internal/infra/mail"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	"golang.org/x/crypto/bcrypt"
)

// Generate drives a submission from Pending through Generating to Generated,
// producing the website record, its artifacts and the owner's credentials.
// A failed run leaves the submission in Generating on purpose; an operator
// reset puts it back to Pending.
type Generate struct {
	cfg        *config.AppConfig
	uowFactory *dbs.UOWFactory
	content    interfaces.ContentGenerator
	colors     interfaces.ColorExtractor
	renderer   interfaces.TemplateRenderer
	artifacts  interfaces.ArtifactStore
}

func NewGenerate(
	cfg *config.AppConfig, factory *dbs.UOWFactory, content interfaces.ContentGenerator,
	extractor interfaces.ColorExtractor, renderer interfaces.TemplateRenderer, artifacts interfaces.ArtifactStore,
) *Generate {
	return &Generate{
		cfg:        cfg,
		uowFactory: factory,
		content:    content,
		colors:     extractor,
		renderer:   renderer,
		artifacts:  artifacts,
	}
}

func (c *Generate) Execute(ctx context.Context, submissionID uuid.UUID) (*dto.GenerateResponse, error) {
	sub, existing, err := c.claimSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// already generated, same websiteID and previewURL every time
		return existing, nil
	}

	fields := db.MapSubmissionFields(*sub)

	siteCopy, err := c.content.GenerateCopy(ctx, dto.ContentFacts{
		BusinessName:   fields.BusinessName,
		Tagline:        fields.Tagline,
		About:          fields.About,
		Industry:       fields.Industry,
		Services:       fields.Services,
		TargetAudience: fields.TargetAudience,
	})
	if err != nil {
		return nil, errs.UpstreamError{Collaborator: "content", Err: err}
	}

	palette := colors.DefaultPalette
	if fields.LogoURL != "" {
		extracted, err := c.colors.ExtractPalette(ctx, fields.LogoURL)
		if err != nil {
			slog.Warn("color extraction failed, using default triad", "submissionID", submissionID, "err", err)
		} else {
			palette = *extracted
		}
	}

	files, err := c.renderer.Render(*siteCopy, palette, dto.ContactInfo{
		Email:       fields.Email,
		Phone:       fields.Phone,
		Address:     fields.Address,
		SocialLinks: fields.SocialLinks,
	})
	if err != nil {
		return nil, errs.UpstreamError{Collaborator: "renderer", Err: err}
	}

	if err = c.artifacts.UploadArtifacts(ctx, submissionID.String(), files); err != nil {
		return nil, errs.UpstreamError{Collaborator: "storage", Err: err}
	}

	creds, err := c.resolveCredentials(ctx, sub, fields.BusinessName)
	if err != nil {
		return nil, err
	}

	return c.commitWebsite(ctx, sub, fields, palette, creds)
}

// claimSubmission moves the submission to Generating in its own transaction.
// When the submission is already Generated it returns the existing website's
// response instead.
func (c *Generate) claimSubmission(ctx context.Context, submissionID uuid.UUID) (*db.Submission, *dto.GenerateResponse, error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer uow.Finalize(&err)

	submissionRepo := repo.NewSubmissionRepo(tx)
	sub, err := submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "submission", ID: submissionID.String()}
		}
		return nil, nil, err
	}

	switch sub.Status {
	case consts.SubmissionStatusGenerated:
		website, wErr := repo.NewWebsiteRepo(tx).GetBySubmissionID(ctx, submissionID)
		if wErr != nil {
			err = fmt.Errorf("submission marked generated but website is missing, %v", wErr)
			return nil, nil, err
		}
		return nil, &dto.GenerateResponse{
			Success:          true,
			AlreadyGenerated: true,
			WebsiteID:        website.ID.String(),
			PreviewURL:       website.PreviewURL,
		}, nil
	case consts.SubmissionStatusGenerating:
		err = errs.PreconditionError{Msg: "generation already in progress; reset the submission if it is stuck"}
		return nil, nil, err
	}

	if err = submissionRepo.UpdateStatus(ctx, submissionID, consts.SubmissionStatusGenerating); err != nil {
		return nil, nil, err
	}
	return sub, nil, nil
}

type credentials struct {
	username string
	password string
}

// resolveCredentials reuses credentials staged by a prior partial run, or
// derives and stages fresh ones. Staging commits before the user upsert so a
// later failure cannot orphan an emailed password.
func (c *Generate) resolveCredentials(ctx context.Context, sub *db.Submission, businessName string) (credentials, error) {
	if sub.StagedUsername != nil && sub.StagedPassword != nil {
		return credentials{username: *sub.StagedUsername, password: *sub.StagedPassword}, nil
	}

	creds := credentials{
		username: usernameSlug(businessName),
		password: randomPassword(),
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return credentials{}, err
	}
	defer uow.Finalize(&err)

	if err = repo.NewSubmissionRepo(tx).StageCredentials(ctx, sub.ID, creds.username, creds.password); err != nil {
		return credentials{}, err
	}
	return creds, nil
}

// commitWebsite performs the final transaction: user upsert, website insert,
// Generated mark and the sales notification, all or nothing. The unique
// constraint on submission_id turns a lost generation race into an idempotent
// success.
func (c *Generate) commitWebsite(
	ctx context.Context, sub *db.Submission, fields dto.CreateSubmissionRequest,
	palette dto.Palette, creds credentials,
) (*dto.GenerateResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("err hashing password, %v", err)
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	websiteRepo := repo.NewWebsiteRepo(tx)
	if existing, gErr := websiteRepo.GetBySubmissionID(ctx, sub.ID); gErr == nil {
		return &dto.GenerateResponse{
			Success:          true,
			AlreadyGenerated: true,
			WebsiteID:        existing.ID.String(),
			PreviewURL:       existing.PreviewURL,
		}, nil
	} else if !errors.Is(gErr, pgx.ErrNoRows) {
		err = gErr
		return nil, err
	}

	userRepo := repo.NewUserRepo(tx)
	user, created, err := userRepo.FindOrCreateUser(ctx, fields.Email, creds.username, string(hash))
	if err != nil {
		return nil, err
	}
	if !created {
		// existing owner gets the freshly staged password
		if err = userRepo.RotatePassword(ctx, user.ID, string(hash)); err != nil {
			return nil, err
		}
		creds.username = user.Username
	}

	previewURL := c.cfg.BaseURL + "/preview/" + sub.ID.String()
	website := db.Website{
		ID:             uuid.New(),
		SubmissionID:   sub.ID,
		UserID:         user.ID,
		Status:         consts.WebsiteStatusReady,
		PaymentStatus:  consts.PaymentStatusPending,
		ColorPrimary:   palette.Primary,
		ColorSecondary: palette.Secondary,
		ColorAccent:    palette.Accent,
		PreviewURL:     previewURL,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err = websiteRepo.Insert(ctx, website); err != nil {
		if errors.Is(err, repo.ErrDuplicateWebsite) {
			// a concurrent run won the race; a retry hits the Generated
			// short-circuit and returns its website
			err = errs.PreconditionError{Msg: "a concurrent generation finished first, retry to fetch it"}
		}
		return nil, err
	}

	submissionRepo := repo.NewSubmissionRepo(tx)
	if err = submissionRepo.UpdateStatus(ctx, sub.ID, consts.SubmissionStatusGenerated); err != nil {
		return nil, err
	}
	if err = submissionRepo.ClearStagedCredentials(ctx, sub.ID); err != nil {
		return nil, err
	}

	loginURL := c.cfg.BaseURL + "/login"
	notifyErr := repo.NewEventRepo(tx).InsertEvent(ctx, events.SalesMail{
		Subject: mail.CredentialsIssuedData{}.GetSubject(),
		Data: mail.CredentialsIssuedData{
			BusinessName: fields.BusinessName,
			PreviewURL:   previewURL,
			Username:     creds.username,
			Password:     creds.password,
			LoginURL:     loginURL,
		},
	})
	if notifyErr != nil {
		// notification failure never fails a finished generation
		slog.Warn("failed to queue sales notification", "submissionID", sub.ID, "err", notifyErr)
	}

	return &dto.GenerateResponse{
		Success:    true,
		WebsiteID:  website.ID.String(),
		PreviewURL: previewURL,
		Credentials: &dto.Credentials{
			Username: creds.username,
			Password: creds.password,
			LoginURL: loginURL,
		},
	}, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// usernameSlug lowercases the business name, collapses non-alphanumeric runs
// to single hyphens and caps the length.
func usernameSlug(businessName string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(businessName), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 24 {
		slug = strings.Trim(slug[:24], "-")
	}
	if slug == "" {
		slug = "site-owner"
	}
	return slug
}

func randomPassword() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in no state to mint
		// credentials at all
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
