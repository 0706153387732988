package interfaces

import (
	"context"

	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/events"
	"github.com/stripe/stripe-go/v82"
)

// ContentGenerator writes marketing copy from business facts. Fatal to a
// generation run when it fails.
type ContentGenerator interface {
	GenerateCopy(ctx context.Context, facts dto.ContentFacts) (*dto.SiteCopy, error)
}

// ColorExtractor derives a brand palette from a logo. Best-effort, callers
// fall back to a default triad.
type ColorExtractor interface {
	ExtractPalette(ctx context.Context, logoURL string) (*dto.Palette, error)
}

type TemplateRenderer interface {
	Render(copy dto.SiteCopy, palette dto.Palette, contact dto.ContactInfo) (map[string][]byte, error)
}

// ArtifactStore persists the rendered files of one generation run under a
// prefix keyed by submission ID. Uploads are overwrite-safe.
type ArtifactStore interface {
	UploadArtifacts(ctx context.Context, submissionID string, files map[string][]byte) error
	GetArtifact(ctx context.Context, submissionID, filename string) ([]byte, error)
	ListArtifacts(ctx context.Context, submissionID string) ([]string, error)
}

// Deployer pushes a named site to the hosting provider and returns its live
// URL.
type Deployer interface {
	Deploy(ctx context.Context, siteName string, files map[string][]byte) (string, error)
	Provider() string
}

// SessionSource talks to the payment provider's checkout API. Session state
// read through it is the authority on whether money actually moved.
type SessionSource interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

type EventRepo interface {
	InsertEvent(ctx context.Context, event events.Event) error
}
