package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
)

type Submission struct {
	ID             uuid.UUID               `db:"id"`
	Status         consts.SubmissionStatus `db:"status"`
	Fields         json.RawMessage         `db:"fields"`
	StagedUsername *string                 `db:"staged_username"`
	StagedPassword *string                 `db:"staged_password"`
	CreatedAt      time.Time               `db:"created_at"`
	UpdatedAt      time.Time               `db:"updated_at"`
}

type Website struct {
	ID                 uuid.UUID            `db:"id"`
	SubmissionID       uuid.UUID            `db:"submission_id"`
	UserID             uuid.UUID            `db:"user_id"`
	Status             consts.WebsiteStatus `db:"status"`
	PaymentStatus      consts.PaymentStatus `db:"payment_status"`
	ColorPrimary       string               `db:"color_primary"`
	ColorSecondary     string               `db:"color_secondary"`
	ColorAccent        string               `db:"color_accent"`
	PreviewURL         string               `db:"preview_url"`
	PublishApproved    bool                 `db:"publish_approved"`
	ApprovedBy         *string              `db:"approved_by"`
	ApprovedAt         *time.Time           `db:"approved_at"`
	PublishRequestedAt *time.Time           `db:"publish_requested_at"`
	DeploymentURL      *string              `db:"deployment_url"`
	DeploymentProvider *string              `db:"deployment_provider"`
	DeployedAt         *time.Time           `db:"deployed_at"`
	PaymentSessionID   *string              `db:"payment_session_id"`
	AmountCents        *int64               `db:"amount_cents"`
	PaidAt             *time.Time           `db:"paid_at"`
	CreatedAt          time.Time            `db:"created_at"`
	UpdatedAt          time.Time            `db:"updated_at"`
}

// WebsiteSummary is the admin-listing row, joined with the submission's
// business name.
type WebsiteSummary struct {
	ID              uuid.UUID            `db:"id"`
	SubmissionID    uuid.UUID            `db:"submission_id"`
	BusinessName    string               `db:"business_name"`
	Status          consts.WebsiteStatus `db:"status"`
	PaymentStatus   consts.PaymentStatus `db:"payment_status"`
	PublishApproved bool                 `db:"publish_approved"`
	PreviewURL      string               `db:"preview_url"`
	DeploymentURL   *string              `db:"deployment_url"`
}

type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Outbox struct {
	ID        uint64          `db:"id"`
	Event     string          `db:"event"`
	Status    int             `db:"status"`
	Payload   json.RawMessage `db:"payload"`
	CreatedAt time.Time       `db:"created_at"`
}

type Mail struct {
	MailType   string    `db:"type"`
	Recipients string    `db:"recipients"`
	Subject    string    `db:"subject"`
	Content    string    `db:"content"`
	SentAt     time.Time `db:"sent_at"`
}
