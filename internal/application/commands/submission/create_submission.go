package submission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/application/sanitize"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
)

type CreateSubmission struct {
	uowFactory *dbs.UOWFactory
}

func NewCreateSubmission(factory *dbs.UOWFactory) *CreateSubmission {
	return &CreateSubmission{uowFactory: factory}
}

// Execute sanitizes the intake payload and stores it as a Pending submission.
// Nothing from the raw request crosses this boundary unsanitized.
func (c *CreateSubmission) Execute(ctx context.Context, req *dto.CreateSubmissionRequest) (uuid.UUID, error) {
	cleaned := sanitizePayload(req)
	if cleaned.BusinessName == "" {
		return uuid.Nil, errs.InvalidInputError{Msg: "businessName is required"}
	}
	if cleaned.Email == "" {
		return uuid.Nil, errs.InvalidInputError{Msg: "a valid contact email is required"}
	}

	uow := c.uowFactory.GetUoW()
	_, err := uow.Begin()
	if err != nil {
		return uuid.Nil, err
	}
	defer uow.Finalize(&err)

	newSubmission := db.Submission{
		ID:        uuid.New(),
		Status:    consts.SubmissionStatusPending,
		Fields:    db.MapToRawMessage(cleaned),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err = repo.NewSubmissionRepo(uow.GetTx()).Insert(ctx, newSubmission); err != nil {
		return uuid.Nil, err
	}

	return newSubmission.ID, nil
}

func sanitizePayload(req *dto.CreateSubmissionRequest) dto.CreateSubmissionRequest {
	cleaned := dto.CreateSubmissionRequest{
		BusinessName:   sanitize.Text(req.BusinessName),
		Tagline:        sanitize.Text(req.Tagline),
		About:          sanitize.RichText(req.About),
		Industry:       sanitize.Text(req.Industry),
		TargetAudience: sanitize.Text(req.TargetAudience),
		Email:          sanitize.Text(req.Email),
		Phone:          sanitize.Text(req.Phone),
		Address:        sanitize.Text(req.Address),
		LogoURL:        sanitize.URL(req.LogoURL),
		HeroImageURL:   sanitize.URL(req.HeroImageURL),
		SocialLinks:    sanitize.SocialLinks(req.SocialLinks),
		BusinessHours:  sanitize.BusinessHours(req.BusinessHours),
		Testimonials:   sanitize.Testimonials(req.Testimonials),
		Template:       sanitize.Text(req.Template),
	}
	for _, service := range req.Services {
		if s := sanitize.Text(service); s != "" {
			cleaned.Services = append(cleaned.Services, s)
		}
	}
	for _, gallery := range req.GalleryURLs {
		if u := sanitize.URL(gallery); u != "" {
			cleaned.GalleryURLs = append(cleaned.GalleryURLs, u)
		}
	}
	return cleaned
}
